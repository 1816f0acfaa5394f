package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"handyghana/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).Preload("User").Preload("Provider").First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_at desc").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("scheduled_at desc").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, reason string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == domain.BookingCancelled {
		now := time.Now()
		updates["cancellation_reason"] = reason
		updates["cancelled_at"] = &now
	}
	return r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.BookingPaymentStatus, method domain.PaymentMethod) error {
	updates := map[string]interface{}{
		"payment_status": status,
		"updated_at":     time.Now(),
	}
	if method != "" {
		updates["payment_method"] = method
	}
	return r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListConfirmedBetween returns confirmed bookings scheduled inside the
// window; used by the reminder job.
func (r *BookingRepository) ListConfirmedBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).Preload("User").Preload("Provider").
		Where("status = ? AND scheduled_at BETWEEN ? AND ?", domain.BookingConfirmed, from, to).
		Find(&out).Error
	return out, err
}
