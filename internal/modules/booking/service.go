package booking

import (
	"context"
	"strings"
	"time"

	"handyghana/internal/domain"
	"handyghana/internal/pkg/validator"
)

type Service struct {
	bookings  BookingRepository
	providers ProviderReader
	services  ServiceReader
	notifs    NotificationSender
}

func NewService(
	bookings BookingRepository,
	providers ProviderReader,
	services ServiceReader,
	notifs NotificationSender,
) *Service {
	return &Service{
		bookings:  bookings,
		providers: providers,
		services:  services,
		notifs:    notifs,
	}
}

// CreateBooking validates the request against the provider and service
// and creates a pending, unpaid booking. The provider is notified after
// the row exists.
func (s *Service) CreateBooking(ctx context.Context, userID int64, req CreateBookingRequest) (*domain.Booking, error) {
	if req.ScheduledAt.Before(time.Now()) {
		return nil, ErrValidation
	}

	provider, err := s.providers.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, ErrProviderNotFound
	}
	if provider.VerificationStatus != domain.VerificationVerified {
		return nil, ErrProviderNotVerified
	}

	serviceType := strings.TrimSpace(req.ServiceType)
	var amount int64
	if req.ServiceID != nil {
		svc, err := s.services.GetByID(ctx, *req.ServiceID)
		if err != nil || svc.ProviderID != req.ProviderID || !svc.IsActive {
			return nil, ErrValidation
		}
		amount = svc.BasePrice
		if serviceType == "" {
			serviceType = svc.Name
		}
	}
	if serviceType == "" {
		return nil, ErrValidation
	}

	b := &domain.Booking{
		UserID:        userID,
		ProviderID:    req.ProviderID,
		ServiceID:     req.ServiceID,
		ServiceType:   serviceType,
		ScheduledAt:   req.ScheduledAt,
		Address:       req.Address,
		Notes:         req.Notes,
		Amount:        amount,
		Status:        domain.BookingPending,
		PaymentStatus: domain.BookingPaymentUnpaid,
	}

	if errs := validator.Validate(b); errs != nil {
		return nil, ErrValidation
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.BookingCreated(ctx, provider.UserID, b)
	}
	return b, nil
}

// UpdateStatus applies a transition after checking both the actor's
// rights and the transition table. Side effects run after the new
// status is persisted, so a notification failure can never leave the
// booking behind.
func (s *Service) UpdateStatus(ctx context.Context, bookingID, actorUserID int64, actorRole string, newStatus domain.BookingStatus, reason string) (*domain.Booking, error) {
	switch newStatus {
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingCompleted, domain.BookingCancelled:
	default:
		return nil, ErrValidation
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrNotFound
	}

	if err := s.authorizeTransition(ctx, b, actorUserID, actorRole, newStatus); err != nil {
		return nil, err
	}

	if !b.Status.CanTransitionTo(newStatus) {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.bookings.UpdateStatus(ctx, bookingID, newStatus, reason); err != nil {
		return nil, err
	}

	updated, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if s.notifs != nil {
		providerUserID := int64(0)
		if provider, perr := s.providers.GetByID(ctx, updated.ProviderID); perr == nil {
			providerUserID = provider.UserID
		}
		_ = s.notifs.BookingStatusChanged(ctx, providerUserID, updated, reason)
	}
	return updated, nil
}

func (s *Service) authorizeTransition(ctx context.Context, b *domain.Booking, actorUserID int64, actorRole string, newStatus domain.BookingStatus) error {
	if actorRole == string(domain.RoleAdmin) {
		return nil
	}

	isCustomer := b.UserID == actorUserID
	isProvider := false
	if actorRole == string(domain.RoleProvider) {
		if provider, err := s.providers.GetByUserID(ctx, actorUserID); err == nil {
			isProvider = provider.ID == b.ProviderID
		}
	}

	switch newStatus {
	case domain.BookingConfirmed, domain.BookingCompleted:
		if !isProvider {
			return ErrForbidden
		}
	case domain.BookingCancelled:
		if !isCustomer && !isProvider {
			return ErrForbidden
		}
	default:
		return ErrForbidden
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, bookingID, actorUserID int64, actorRole string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrNotFound
	}

	if actorRole == string(domain.RoleAdmin) || b.UserID == actorUserID {
		return b, nil
	}
	if actorRole == string(domain.RoleProvider) {
		if provider, err := s.providers.GetByUserID(ctx, actorUserID); err == nil && provider.ID == b.ProviderID {
			return b, nil
		}
	}
	return nil, ErrForbidden
}

func (s *Service) ListMine(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListForProvider(ctx context.Context, actorUserID int64, limit, offset int) ([]domain.Booking, error) {
	provider, err := s.providers.GetByUserID(ctx, actorUserID)
	if err != nil {
		return nil, ErrForbidden
	}
	return s.bookings.ListByProvider(ctx, provider.ID, limit, offset)
}
