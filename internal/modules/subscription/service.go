package subscription

import (
	"context"
	"fmt"
	"time"

	"handyghana/internal/domain"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, s *domain.Subscription) error
	GetByID(ctx context.Context, id int64) (*domain.Subscription, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Subscription, error)
	Update(ctx context.Context, s *domain.Subscription) error
	HasActiveForUserService(ctx context.Context, userID, serviceID int64) (bool, error)
	ListDueForRenewal(ctx context.Context, now time.Time) ([]domain.Subscription, error)
}

type ServiceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

type Service struct {
	subs     SubscriptionRepository
	services ServiceReader
	now      func() time.Time
	loggerf  func(format string, args ...interface{})
}

func NewService(subs SubscriptionRepository, services ServiceReader, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Service{subs: subs, services: services, now: time.Now, loggerf: loggerf}
}

type CreateSubscriptionRequest struct {
	ServiceID int64 `json:"service_id" binding:"required"`
}

// Subscribe opens a subscription to a subscription-priced service. One
// active subscription per user and service.
func (s *Service) Subscribe(ctx context.Context, userID int64, serviceID int64) (*domain.Subscription, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, ErrServiceNotFound
	}
	if svc.PricingModel != domain.PricingSubscription {
		return nil, ErrNotSubscribable
	}
	if !svc.IsActive {
		return nil, fmt.Errorf("%w: service is inactive", ErrValidation)
	}

	active, err := s.subs.HasActiveForUserService(ctx, userID, serviceID)
	if err != nil {
		return nil, fmt.Errorf("check existing subscription: %w", err)
	}
	if active {
		return nil, ErrAlreadyActive
	}

	sub := &domain.Subscription{
		UserID:          userID,
		ServiceID:       serviceID,
		ProviderID:      svc.ProviderID,
		Status:          domain.SubscriptionActive,
		NextBillingDate: domain.NextBilling(svc.BillingCycle, s.now()),
		VisitsRemaining: svc.VisitsPerCycle,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.Subscription, error) {
	return s.subs.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id int64, role string) (*domain.Subscription, error) {
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if sub.UserID != userID && role != string(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	return sub, nil
}

func (s *Service) Pause(ctx context.Context, userID, id int64) (*domain.Subscription, error) {
	sub, err := s.ownedByUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionActive {
		return nil, ErrNotActive
	}
	sub.Status = domain.SubscriptionPaused
	if err := s.subs.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("pause subscription: %w", err)
	}
	return sub, nil
}

func (s *Service) Resume(ctx context.Context, userID, id int64) (*domain.Subscription, error) {
	sub, err := s.ownedByUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionPaused {
		return nil, ErrNotPaused
	}
	sub.Status = domain.SubscriptionActive
	// Billing resumes on a fresh cycle from today, not the date the
	// subscription was paused at.
	if svc, err := s.services.GetByID(ctx, sub.ServiceID); err == nil {
		sub.NextBillingDate = domain.NextBilling(svc.BillingCycle, s.now())
	}
	if err := s.subs.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("resume subscription: %w", err)
	}
	return sub, nil
}

func (s *Service) Cancel(ctx context.Context, userID, id int64) (*domain.Subscription, error) {
	sub, err := s.ownedByUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == domain.SubscriptionCancelled {
		return nil, ErrAlreadyCancelled
	}
	now := s.now()
	sub.Status = domain.SubscriptionCancelled
	sub.CancelledAt = &now
	if err := s.subs.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}
	return sub, nil
}

// UseVisit consumes one visit from the current cycle.
func (s *Service) UseVisit(ctx context.Context, userID, id int64) (*domain.Subscription, error) {
	sub, err := s.ownedByUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionActive {
		return nil, ErrNotActive
	}
	if sub.VisitsRemaining <= 0 {
		return nil, ErrNoVisitsLeft
	}
	sub.VisitsUsed++
	sub.VisitsRemaining--
	if err := s.subs.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("use visit: %w", err)
	}
	return sub, nil
}

// RenewDue rolls every subscription whose billing date has passed into
// its next cycle; the cron scheduler calls this hourly. Paused and
// cancelled subscriptions are never touched. Subscriptions whose
// service has been deleted or deactivated expire instead of renewing.
func (s *Service) RenewDue(ctx context.Context) (int, error) {
	due, err := s.subs.ListDueForRenewal(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list due subscriptions: %w", err)
	}

	renewed := 0
	for i := range due {
		sub := &due[i]
		svc, err := s.services.GetByID(ctx, sub.ServiceID)
		if err != nil || !svc.IsActive {
			// The service is gone or retired; the subscription cannot
			// bill again.
			sub.Status = domain.SubscriptionExpired
			if uerr := s.subs.Update(ctx, sub); uerr != nil {
				s.loggerf("subscription: expire %d: %v", sub.ID, uerr)
			}
			continue
		}
		sub.NextBillingDate = domain.NextBilling(svc.BillingCycle, sub.NextBillingDate)
		sub.VisitsUsed = 0
		sub.VisitsRemaining = svc.VisitsPerCycle
		if err := s.subs.Update(ctx, sub); err != nil {
			s.loggerf("subscription: renew %d: %v", sub.ID, err)
			continue
		}
		renewed++
	}
	return renewed, nil
}

func (s *Service) ownedByUser(ctx context.Context, userID, id int64) (*domain.Subscription, error) {
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if sub.UserID != userID {
		return nil, ErrForbidden
	}
	return sub, nil
}
