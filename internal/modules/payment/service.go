package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"handyghana/internal/domain"
	"handyghana/internal/integrations/paystack"
)

type Service struct {
	payments PaymentRepository
	bookings BookingReader
	users    UserReader
	settings SettingsReader
	earnings EarningsCreditor
	gateway  Gateway
	notifs   Notifier

	webhookSecret string
	loggerf       func(format string, args ...interface{})
}

func NewService(
	payments PaymentRepository,
	bookings BookingReader,
	users UserReader,
	settings SettingsReader,
	earnings EarningsCreditor,
	gateway Gateway,
	notifs Notifier,
	webhookSecret string,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Service{
		payments:      payments,
		bookings:      bookings,
		users:         users,
		settings:      settings,
		earnings:      earnings,
		gateway:       gateway,
		notifs:        notifs,
		webhookSecret: webhookSecret,
		loggerf:       loggerf,
	}
}

// momoChannel maps a mobile-money method to the gateway's channel code.
func momoChannel(m domain.PaymentMethod) string {
	switch m {
	case domain.MethodMTNMomo:
		return "mtn"
	case domain.MethodVodafoneCash:
		return "vod"
	case domain.MethodAirtelTigoMoney:
		return "atl"
	default:
		return ""
	}
}

// newReference builds the idempotent payment reference. The nanosecond
// component keeps retried initializations distinct.
func newReference(bookingID int64) string {
	return fmt.Sprintf("booking-%d-%d", bookingID, time.Now().UnixNano())
}

// Initialize starts a payment for a booking. The charge branches on
// method: card goes through hosted checkout, mobile money is charged
// directly, bank transfer returns manual instructions. Without gateway
// credentials card payments fall back to a mock checkout URL.
func (s *Service) Initialize(ctx context.Context, userID int64, req InitializePaymentRequest) (*InitializeResult, error) {
	method := domain.PaymentMethod(req.Method)
	switch method {
	case domain.MethodCard, domain.MethodBankTransfer, domain.MethodWallet:
	default:
		if !method.IsMobileMoney() {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, req.Method)
		}
		if req.Phone == "" {
			return nil, fmt.Errorf("%w: phone is required for mobile money", ErrValidation)
		}
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if b.PaymentStatus == domain.BookingPaymentCompleted {
		return nil, ErrAlreadyPaid
	}
	if b.Status == domain.BookingCancelled {
		return nil, fmt.Errorf("%w: booking is cancelled", ErrValidation)
	}

	p := &domain.Payment{
		BookingID: b.ID,
		Reference: newReference(b.ID),
		Amount:    b.Amount,
		Method:    method,
		Status:    domain.PaymentPending,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, b.ID, domain.BookingPaymentPending, method); err != nil {
		s.loggerf("payment: update booking %d payment status: %v", b.ID, err)
	}

	switch {
	case method == domain.MethodCard:
		return s.initializeCard(ctx, p, b)
	case method.IsMobileMoney():
		return s.chargeMobileMoney(ctx, p, b, req.Phone)
	case method == domain.MethodBankTransfer:
		return s.bankTransferDetails(p), nil
	default: // wallet
		if err := s.payments.SetProcessing(ctx, p.Reference); err != nil {
			return nil, err
		}
		_ = s.bookings.UpdatePaymentStatus(ctx, b.ID, domain.BookingPaymentProcessing, method)
		return &InitializeResult{
			Reference:   p.Reference,
			Status:      string(domain.PaymentProcessing),
			DisplayText: "Confirm the payment in your HandyGhana wallet",
		}, nil
	}
}

func (s *Service) initializeCard(ctx context.Context, p *domain.Payment, b *domain.Booking) (*InitializeResult, error) {
	u, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}

	resp, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:     u.Email,
		Amount:    p.Amount,
		Reference: p.Reference,
	})
	if errors.Is(err, paystack.ErrNotConfigured) {
		s.loggerf("payment: gateway not configured, returning mock checkout for %s", p.Reference)
		return &InitializeResult{
			Reference:        p.Reference,
			Status:           string(domain.PaymentPending),
			AuthorizationURL: "https://checkout.handyghana.local/mock/" + p.Reference,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return &InitializeResult{
		Reference:        p.Reference,
		Status:           string(domain.PaymentPending),
		AuthorizationURL: resp.AuthorizationURL,
	}, nil
}

func (s *Service) chargeMobileMoney(ctx context.Context, p *domain.Payment, b *domain.Booking, phone string) (*InitializeResult, error) {
	u, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}

	req := paystack.ChargeRequest{
		Email:     u.Email,
		Amount:    p.Amount,
		Reference: p.Reference,
	}
	req.MobileMoney.Phone = phone
	req.MobileMoney.Provider = momoChannel(p.Method)

	resp, err := s.gateway.ChargeMobileMoney(ctx, req)
	if errors.Is(err, paystack.ErrNotConfigured) {
		s.loggerf("payment: gateway not configured, simulating momo charge for %s", p.Reference)
		resp = &paystack.ChargeResponse{
			Reference:   p.Reference,
			Status:      "pay_offline",
			DisplayText: "Approve the payment prompt on your phone",
		}
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if err := s.payments.SetProcessing(ctx, p.Reference); err != nil {
		return nil, err
	}
	_ = s.bookings.UpdatePaymentStatus(ctx, b.ID, domain.BookingPaymentProcessing, p.Method)

	return &InitializeResult{
		Reference:   p.Reference,
		Status:      string(domain.PaymentProcessing),
		DisplayText: resp.DisplayText,
	}, nil
}

func (s *Service) bankTransferDetails(p *domain.Payment) *InitializeResult {
	return &InitializeResult{
		Reference: p.Reference,
		Status:    string(domain.PaymentPending),
		BankDetails: &BankDetails{
			BankName:      "GCB Bank",
			AccountName:   "HandyGhana Ltd",
			AccountNumber: "1041000123456",
			Reference:     p.Reference,
		},
	}
}

// Verify re-checks a payment against the gateway. It never marks a
// payment completed unless the gateway confirms success; if the gateway
// cannot be reached the stored state is returned with an error, except
// when the payment already completed.
func (s *Service) Verify(ctx context.Context, userID int64, reference string) (*domain.Payment, error) {
	p, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		return nil, ErrNotFound
	}
	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if p.Status == domain.PaymentCompleted {
		return p, nil
	}

	resp, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	switch resp.Status {
	case "success":
		if err := s.completePayment(ctx, reference, fmt.Sprintf("%d", resp.ID), "", time.Now()); err != nil {
			return nil, err
		}
	case "failed", "abandoned":
		if err := s.failPayment(ctx, reference, "verification returned "+resp.Status, ""); err != nil {
			return nil, err
		}
	}
	return s.payments.GetByReference(ctx, reference)
}

func (s *Service) GetByReference(ctx context.Context, userID int64, reference string) (*domain.Payment, error) {
	p, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		return nil, ErrNotFound
	}
	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *Service) ListForBooking(ctx context.Context, userID int64, role string, bookingID int64) ([]domain.Payment, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if b.UserID != userID && role != string(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	return s.payments.ListByBooking(ctx, bookingID)
}

// ErrBadSignature is returned by HandleWebhook when the HMAC check fails.
var ErrBadSignature = errors.New("invalid webhook signature")

// HandleWebhook processes a gateway callback. The signature is an
// HMAC-SHA512 of the raw body; requests that fail the check are
// rejected before any lookup. Events for unknown references are
// acknowledged and dropped.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !paystack.ValidSignature(body, signature, s.webhookSecret) {
		s.loggerf("payment: webhook rejected, bad signature")
		return ErrBadSignature
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		s.loggerf("payment: webhook body unreadable: %v", err)
		return nil
	}
	if ev.Data.Reference == "" {
		return nil
	}

	switch ev.Event {
	case "charge.success":
		if err := s.completePayment(ctx, ev.Data.Reference, fmt.Sprintf("%d", ev.Data.ID), string(body), time.Now()); err != nil {
			if errors.Is(err, ErrNotFound) {
				s.loggerf("payment: webhook for unknown reference %s", ev.Data.Reference)
				return nil
			}
			return err
		}
	case "charge.failed":
		reason := ev.Data.GatewayResponse
		if reason == "" {
			reason = "charge failed"
		}
		if err := s.failPayment(ctx, ev.Data.Reference, reason, string(body)); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	default:
		s.loggerf("payment: ignoring webhook event %s", ev.Event)
	}
	return nil
}

// completePayment moves a payment to completed exactly once. The first
// completion updates the booking, credits the provider wallet with the
// net amount and notifies both parties; replays are no-ops.
func (s *Service) completePayment(ctx context.Context, reference, transactionID, raw string, paidAt time.Time) error {
	changed, err := s.payments.MarkCompletedIdempotent(ctx, reference, transactionID, raw, paidAt)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	p, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		return ErrNotFound
	}
	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return fmt.Errorf("load booking %d: %w", p.BookingID, err)
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, b.ID, domain.BookingPaymentCompleted, p.Method); err != nil {
		s.loggerf("payment: update booking %d payment status: %v", b.ID, err)
	}

	rate := domain.DefaultSettings().CommissionRate
	if cfg, err := s.settings.Get(ctx); err == nil {
		rate = cfg.CommissionRate
	} else {
		s.loggerf("payment: load settings, using default commission: %v", err)
	}

	if _, err := s.earnings.AddEarnings(ctx, b.ProviderID, p.Amount, rate, reference); err != nil {
		// The payment itself succeeded; the credit failure must not
		// bounce the webhook and trigger endless retries.
		s.loggerf("payment: credit earnings for provider %d ref %s: %v", b.ProviderID, reference, err)
	}

	if err := s.notifs.PaymentCompleted(ctx, b, p.Amount); err != nil {
		s.loggerf("payment: notify completed %s: %v", reference, err)
	}
	return nil
}

func (s *Service) failPayment(ctx context.Context, reference, reason, raw string) error {
	changed, err := s.payments.MarkFailed(ctx, reference, reason, raw)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	p, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		return ErrNotFound
	}
	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return fmt.Errorf("load booking %d: %w", p.BookingID, err)
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, b.ID, domain.BookingPaymentFailed, p.Method); err != nil {
		s.loggerf("payment: update booking %d payment status: %v", b.ID, err)
	}
	if err := s.notifs.PaymentFailed(ctx, b); err != nil {
		s.loggerf("payment: notify failed %s: %v", reference, err)
	}
	return nil
}
