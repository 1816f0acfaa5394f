package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"handyghana/internal/domain"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) Create(ctx context.Context, p *domain.Provider) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProviderRepository) GetByID(ctx context.Context, id int64) (*domain.Provider, error) {
	var p domain.Provider
	if err := r.db.WithContext(ctx).Preload("User").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProviderRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Provider, error) {
	var p domain.Provider
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProviderRepository) Update(ctx context.Context, p *domain.Provider) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// ListFilter narrows the public provider search.
type ListFilter struct {
	Category string
	Location string
	Limit    int
	Offset   int
}

// List returns verified providers matching the filter.
func (r *ProviderRepository) List(ctx context.Context, f ListFilter) ([]domain.Provider, error) {
	q := r.db.WithContext(ctx).Preload("User").
		Where("verification_status = ?", domain.VerificationVerified)

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Location != "" {
		q = q.Where("location LIKE ?", "%"+f.Location+"%")
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	var out []domain.Provider
	err := q.Order("rating desc, review_count desc").
		Limit(f.Limit).Offset(f.Offset).
		Find(&out).Error
	return out, err
}

// ListByStatus is the admin view; unlike List it does not restrict to
// verified providers.
func (r *ProviderRepository) ListByStatus(ctx context.Context, status domain.VerificationStatus, limit, offset int) ([]domain.Provider, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []domain.Provider
	err := r.db.WithContext(ctx).Preload("User").
		Where("verification_status = ?", status).
		Order("created_at asc").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

func (r *ProviderRepository) UpdateVerification(ctx context.Context, id int64, status domain.VerificationStatus, adminID int64, reason string) error {
	updates := map[string]interface{}{
		"verification_status": status,
		"rejected_reason":     reason,
	}
	if status == domain.VerificationVerified {
		now := time.Now()
		updates["verified_at"] = &now
		updates["verified_by"] = adminID
	}
	return r.db.WithContext(ctx).Model(&domain.Provider{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *ProviderRepository) UpdateRating(ctx context.Context, id int64, rating float64, reviewCount int) error {
	return r.db.WithContext(ctx).Model(&domain.Provider{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"rating": rating, "review_count": reviewCount}).Error
}
