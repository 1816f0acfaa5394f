package payment

import (
	"context"
	"time"

	"handyghana/internal/domain"
	"handyghana/internal/integrations/paystack"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
	MarkCompletedIdempotent(ctx context.Context, reference, transactionID, rawWebhook string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, reference, reason, rawWebhook string) (bool, error)
	SetProcessing(ctx context.Context, reference string) error
}

type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.BookingPaymentStatus, method domain.PaymentMethod) error
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type SettingsReader interface {
	Get(ctx context.Context) (*domain.Settings, error)
}

// EarningsCreditor credits a provider wallet with the net amount of a
// completed payment.
type EarningsCreditor interface {
	AddEarnings(ctx context.Context, providerID, amount int64, commissionRate float64, reference string) (*domain.Wallet, error)
}

type Gateway interface {
	Live() bool
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error)
	ChargeMobileMoney(ctx context.Context, req paystack.ChargeRequest) (*paystack.ChargeResponse, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.VerifyResponse, error)
}

type Notifier interface {
	PaymentCompleted(ctx context.Context, b *domain.Booking, amount int64) error
	PaymentFailed(ctx context.Context, b *domain.Booking) error
}
