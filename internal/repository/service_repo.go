package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"handyghana/internal/domain"
)

// ErrHasActiveSubscriptions is returned when deleting a service that
// active subscriptions still reference.
var ErrHasActiveSubscriptions = errors.New("service has active subscriptions")

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var s domain.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *ServiceRepository) ListByProvider(ctx context.Context, providerID int64) ([]domain.Service, error) {
	var out []domain.Service
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// Delete removes the service unless any active subscription references
// it. The count and the delete run in one transaction so a concurrent
// subscribe cannot slip between them.
func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&domain.Subscription{}).
			Where("service_id = ? AND status = ?", id, domain.SubscriptionActive).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrHasActiveSubscriptions
		}
		return tx.Delete(&domain.Service{}, id).Error
	})
}
