package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"handyghana/internal/domain"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the platform settings row, creating the default one on
// first access.
func (r *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	var s domain.Settings
	err := r.db.WithContext(ctx).First(&s, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := domain.DefaultSettings()
		if err := r.db.WithContext(ctx).Create(def).Error; err != nil {
			return nil, err
		}
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) Update(ctx context.Context, s *domain.Settings) error {
	s.ID = 1
	return r.db.WithContext(ctx).Save(s).Error
}
