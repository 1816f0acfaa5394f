package booking

import (
	"context"
	"time"

	"handyghana/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error)
	ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, reason string) error
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.BookingPaymentStatus, method domain.PaymentMethod) error
	ListConfirmedBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

type ProviderReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Provider, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Provider, error)
}

type ServiceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// NotificationSender fans booking events out to realtime channels and
// best-effort email/SMS. Implementations must never block the caller on
// delivery.
type NotificationSender interface {
	BookingCreated(ctx context.Context, providerUserID int64, b *domain.Booking) error
	BookingStatusChanged(ctx context.Context, providerUserID int64, b *domain.Booking, reason string) error
}
