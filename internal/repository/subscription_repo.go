package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"handyghana/internal/domain"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*domain.Subscription, error) {
	var s domain.Subscription
	if err := r.db.WithContext(ctx).Preload("Service").First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Subscription, error) {
	var out []domain.Subscription
	err := r.db.WithContext(ctx).Preload("Service").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (r *SubscriptionRepository) Update(ctx context.Context, s *domain.Subscription) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SubscriptionRepository) CountActiveByService(ctx context.Context, serviceID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("service_id = ? AND status = ?", serviceID, domain.SubscriptionActive).
		Count(&count).Error
	return count, err
}

func (r *SubscriptionRepository) HasActiveForUserService(ctx context.Context, userID, serviceID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("user_id = ? AND service_id = ? AND status = ?", userID, serviceID, domain.SubscriptionActive).
		Count(&count).Error
	return count > 0, err
}

// ListDueForRenewal returns active subscriptions whose billing date has
// passed; used by the renewal job.
func (r *SubscriptionRepository) ListDueForRenewal(ctx context.Context, now time.Time) ([]domain.Subscription, error) {
	var out []domain.Subscription
	err := r.db.WithContext(ctx).Preload("Service").
		Where("status = ? AND next_billing_date <= ?", domain.SubscriptionActive, now).
		Find(&out).Error
	return out, err
}
