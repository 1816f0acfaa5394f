package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"handyghana/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// MarkCompletedIdempotent transitions a payment to completed unless it
// already is. Returns whether this call changed the row. Status is
// monotonic: a completed payment is never moved back.
func (r *PaymentRepository) MarkCompletedIdempotent(ctx context.Context, reference, transactionID, rawWebhook string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("reference = ? AND status <> ?", reference, domain.PaymentCompleted).
		Updates(map[string]interface{}{
			"status":         domain.PaymentCompleted,
			"transaction_id": transactionID,
			"raw_webhook":    rawWebhook,
			"paid_at":        &paidAt,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkFailed records a failure. Completed payments are left untouched.
func (r *PaymentRepository) MarkFailed(ctx context.Context, reference, reason, rawWebhook string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("reference = ? AND status <> ?", reference, domain.PaymentCompleted).
		Updates(map[string]interface{}{
			"status":         domain.PaymentFailed,
			"failure_reason": reason,
			"raw_webhook":    rawWebhook,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetProcessing moves a pending payment to processing; completed and
// failed rows are not regressed.
func (r *PaymentRepository) SetProcessing(ctx context.Context, reference string) error {
	return r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("reference = ? AND status = ?", reference, domain.PaymentPending).
		Update("status", domain.PaymentProcessing).Error
}
