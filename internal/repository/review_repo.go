package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"handyghana/internal/domain"
)

// ErrAlreadyResponded is returned when a provider tries to respond to a
// review twice.
var ErrAlreadyResponded = errors.New("review already has a response")

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	return r.db.WithContext(ctx).Create(rev).Error
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	var rev domain.Review
	if err := r.db.WithContext(ctx).First(&rev, id).Error; err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *ReviewRepository) ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []domain.Review
	err := r.db.WithContext(ctx).Preload("User").
		Where("provider_id = ?", providerID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// SetResponse stores the provider's single response. A second attempt
// is rejected without touching the row.
func (r *ReviewRepository) SetResponse(ctx context.Context, id int64, response string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("id = ? AND provider_response IS NULL", id).
		Updates(map[string]interface{}{
			"provider_response": response,
			"responded_at":      &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyResponded
	}
	return nil
}

// Aggregate recomputes the provider's average rating and review count.
func (r *ReviewRepository) Aggregate(ctx context.Context, providerID int64) (float64, int, error) {
	var row struct {
		Avg   float64
		Count int
	}
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Where("provider_id = ?", providerID).
		Scan(&row).Error
	return row.Avg, row.Count, err
}

// HasForBooking reports whether the user already reviewed this booking.
func (r *ReviewRepository) HasForBooking(ctx context.Context, userID, bookingID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("user_id = ? AND booking_id = ?", userID, bookingID).
		Count(&count).Error
	return count > 0, err
}
