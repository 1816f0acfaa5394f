package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"handyghana/internal/domain"
	"handyghana/internal/integrations/mailer"
	"handyghana/internal/integrations/sms"
	"handyghana/internal/realtime"
	"handyghana/internal/repository"
)

const sideEffectTimeout = 10 * time.Second

// Service persists notifications and fans them out: realtime event to
// the relevant rooms, then best-effort email/SMS. Delivery failures are
// logged, never propagated: a request must not fail because a
// notification could not be sent.
type Service struct {
	repo   *repository.NotificationRepository
	users  *repository.UserRepository
	hub    *realtime.Hub
	mailer mailer.Mailer
	sms    sms.Sender
}

func NewService(
	repo *repository.NotificationRepository,
	users *repository.UserRepository,
	hub *realtime.Hub,
	m mailer.Mailer,
	s sms.Sender,
) *Service {
	return &Service{repo: repo, users: users, hub: hub, mailer: m, sms: s}
}

func (s *Service) Create(ctx context.Context, userID int64, t domain.NotificationType, title, body string, data map[string]any) error {
	n := &domain.Notification{
		UserID: userID,
		Type:   t,
		Title:  title,
		Body:   body,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err == nil {
			n.Data = raw
		}
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.Emit(realtime.UserRoom(userID), realtime.Event{Type: string(t), Data: n})
	}
	return nil
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, int64, error) {
	list, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}
	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// BookingCreated notifies the provider about a new booking request.
func (s *Service) BookingCreated(ctx context.Context, providerUserID int64, b *domain.Booking) error {
	s.emitBookingEvent("booking_created", b)
	return s.Create(
		ctx,
		providerUserID,
		domain.NotifBookingCreated,
		"New booking request",
		fmt.Sprintf("You have a new booking for %s on %s", b.ServiceType, b.ScheduledAt.Format("02 Jan 2006 15:04")),
		bookingData(b),
	)
}

// BookingStatusChanged notifies both parties about a status transition
// and emails the customer when the booking was confirmed.
func (s *Service) BookingStatusChanged(ctx context.Context, providerUserID int64, b *domain.Booking, reason string) error {
	s.emitBookingEvent("booking_"+string(b.Status), b)

	var notifType domain.NotificationType
	var title, body string
	switch b.Status {
	case domain.BookingConfirmed:
		notifType = domain.NotifBookingConfirmed
		title = "Booking confirmed"
		body = "Your booking has been confirmed by the provider"
	case domain.BookingCompleted:
		notifType = domain.NotifBookingCompleted
		title = "Booking completed"
		body = "Your booking has been marked as completed"
	case domain.BookingCancelled:
		notifType = domain.NotifBookingCancelled
		title = "Booking cancelled"
		body = "Your booking has been cancelled"
		if reason != "" {
			body += ". Reason: " + reason
		}
	default:
		return nil
	}

	if err := s.Create(ctx, b.UserID, notifType, title, body, bookingData(b)); err != nil {
		return err
	}
	_ = s.Create(ctx, providerUserID, notifType, title, fmt.Sprintf("Booking #%d is now %s", b.ID, b.Status), bookingData(b))

	if b.Status == domain.BookingConfirmed {
		s.sendBookingConfirmedEmail(b)
	}
	if b.Status == domain.BookingCancelled {
		s.sendSMSToUser(ctx, b.UserID, fmt.Sprintf("Your HandyGhana booking #%d was cancelled.", b.ID))
	}
	return nil
}

// PaymentCompleted notifies the customer that their payment went through.
func (s *Service) PaymentCompleted(ctx context.Context, b *domain.Booking, amount int64) error {
	s.emitBookingEvent("payment_completed", b)
	return s.Create(
		ctx,
		b.UserID,
		domain.NotifPaymentCompleted,
		"Payment received",
		fmt.Sprintf("Your payment of GHS %.2f for booking #%d was received", float64(amount)/100, b.ID),
		bookingData(b),
	)
}

// PaymentFailed notifies the customer that their payment failed.
func (s *Service) PaymentFailed(ctx context.Context, b *domain.Booking) error {
	s.emitBookingEvent("payment_failed", b)
	return s.Create(
		ctx,
		b.UserID,
		domain.NotifPaymentFailed,
		"Payment failed",
		fmt.Sprintf("Your payment for booking #%d failed. Please try again.", b.ID),
		bookingData(b),
	)
}

// PayoutSettled notifies the provider that a payout finished or failed.
func (s *Service) PayoutSettled(ctx context.Context, providerUserID int64, p *domain.Payout) error {
	if s.hub != nil {
		s.hub.Emit(realtime.ProviderRoom(p.ProviderID), realtime.Event{Type: "payout_" + string(p.Status), Data: p})
	}

	if p.Status == domain.PayoutCompleted {
		s.sendPayoutReceiptEmail(providerUserID, p)
		return s.Create(
			ctx,
			providerUserID,
			domain.NotifPayoutCompleted,
			"Payout completed",
			fmt.Sprintf("Your payout of GHS %.2f has been sent", float64(p.Amount)/100),
			map[string]any{"payout_id": p.ID.String()},
		)
	}
	return s.Create(
		ctx,
		providerUserID,
		domain.NotifPayoutFailed,
		"Payout failed",
		fmt.Sprintf("Your payout of GHS %.2f failed and the funds were returned to your balance", float64(p.Amount)/100),
		map[string]any{"payout_id": p.ID.String(), "reason": p.FailureReason},
	)
}

// NewReview notifies the provider about a fresh review.
func (s *Service) NewReview(ctx context.Context, providerUserID int64, rev *domain.Review) error {
	if s.hub != nil {
		s.hub.Emit(realtime.ProviderRoom(rev.ProviderID), realtime.Event{Type: "new_review", Data: rev})
	}
	return s.Create(
		ctx,
		providerUserID,
		domain.NotifNewReview,
		"New review",
		fmt.Sprintf("You received a new %d-star review", rev.Rating),
		map[string]any{"review_id": rev.ID, "rating": rev.Rating},
	)
}

// NewMessage notifies the recipient of a chat message.
func (s *Service) NewMessage(ctx context.Context, recipientID int64, m *domain.ChatMessage) error {
	return s.Create(
		ctx,
		recipientID,
		domain.NotifNewMessage,
		"New message",
		"You have a new message",
		map[string]any{"conversation_id": m.ConversationID, "message_id": m.ID},
	)
}

// ProviderVerification notifies a provider about the admin's decision.
func (s *Service) ProviderVerification(ctx context.Context, providerUserID int64, approved bool, reason string) error {
	if approved {
		return s.Create(ctx, providerUserID, domain.NotifProviderVerified,
			"Verification approved", "Your provider profile has been verified", nil)
	}
	body := "Your provider verification was rejected"
	if reason != "" {
		body += ". Reason: " + reason
	}
	return s.Create(ctx, providerUserID, domain.NotifProviderRejected, "Verification rejected", body, nil)
}

// emitBookingEvent pushes a status event to the three audience rooms:
// the admin feed, the provider channel and the customer channel.
func (s *Service) emitBookingEvent(eventType string, b *domain.Booking) {
	if s.hub == nil {
		return
	}
	event := realtime.Event{Type: eventType, Data: b}
	s.hub.Emit(realtime.AdminRoom, event)
	s.hub.Emit(realtime.ProviderRoom(b.ProviderID), event)
	s.hub.Emit(realtime.UserRoom(b.UserID), event)
}

func (s *Service) sendBookingConfirmedEmail(b *domain.Booking) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		user, err := s.users.GetByID(ctx, b.UserID)
		if err != nil {
			logrus.Errorf("confirmation email: load user %d: %v", b.UserID, err)
			return
		}

		body := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your booking has been confirmed.</p>
			<ul>
				<li><strong>Service:</strong> %s</li>
				<li><strong>Date:</strong> %s</li>
				<li><strong>Amount:</strong> GHS %.2f</li>
			</ul>
			<p>HandyGhana</p>
		`, user.Name, b.ServiceType, b.ScheduledAt.Format("02 Jan 2006 15:04"), float64(b.Amount)/100)

		if err := s.mailer.Send(user.Email, "Your booking is confirmed", body); err != nil {
			logrus.Errorf("confirmation email to %s failed: %v", user.Email, err)
		}
	}()
}

func (s *Service) sendPayoutReceiptEmail(providerUserID int64, p *domain.Payout) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		user, err := s.users.GetByID(ctx, providerUserID)
		if err != nil {
			logrus.Errorf("payout receipt: load user %d: %v", providerUserID, err)
			return
		}

		body := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your payout of <strong>GHS %.2f</strong> has been processed.</p>
			<p>Reference: %s</p>
			<p>HandyGhana</p>
		`, user.Name, float64(p.Amount)/100, p.ID.String())

		if err := s.mailer.Send(user.Email, "Payout processed", body); err != nil {
			logrus.Errorf("payout receipt email to %s failed: %v", user.Email, err)
		}
	}()
}

func (s *Service) sendSMSToUser(ctx context.Context, userID int64, message string) {
	go func() {
		smsCtx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		user, err := s.users.GetByID(smsCtx, userID)
		if err != nil || user.Phone == "" {
			return
		}
		if err := s.sms.Send(smsCtx, user.Phone, message); err != nil {
			logrus.Errorf("sms to %s failed: %v", user.Phone, err)
		}
	}()
}

func bookingData(b *domain.Booking) map[string]any {
	return map[string]any{
		"booking_id":  b.ID,
		"provider_id": b.ProviderID,
		"status":      string(b.Status),
	}
}
