package catalog

import (
	"context"
	"errors"
	"fmt"

	"handyghana/internal/domain"
	"handyghana/internal/repository"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	Update(ctx context.Context, s *domain.Service) error
	ListByProvider(ctx context.Context, providerID int64) ([]domain.Service, error)
	Delete(ctx context.Context, id int64) error
}

type ProviderReader interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Provider, error)
	GetByID(ctx context.Context, id int64) (*domain.Provider, error)
}

type Service struct {
	services  ServiceRepository
	providers ProviderReader
}

func NewService(services ServiceRepository, providers ProviderReader) *Service {
	return &Service{services: services, providers: providers}
}

func (s *Service) resolveProvider(ctx context.Context, userID int64) (*domain.Provider, error) {
	p, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, ErrProviderNotFound
	}
	return p, nil
}

func validatePricing(model domain.PricingModel, basePrice, monthlyPrice int64, cycle domain.BillingCycle) error {
	switch model {
	case domain.PricingPayAsYouGo:
		if basePrice <= 0 {
			return fmt.Errorf("%w: base_price must be positive", ErrValidation)
		}
	case domain.PricingSubscription:
		if monthlyPrice <= 0 {
			return fmt.Errorf("%w: monthly_price must be positive", ErrValidation)
		}
		switch cycle {
		case domain.BillingWeekly, domain.BillingMonthly, domain.BillingQuarterly:
		default:
			return fmt.Errorf("%w: invalid billing_cycle %q", ErrValidation, cycle)
		}
	default:
		return fmt.Errorf("%w: invalid pricing_model %q", ErrValidation, model)
	}
	return nil
}

func (s *Service) CreateService(ctx context.Context, userID int64, req CreateServiceRequest) (*domain.Service, error) {
	p, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return nil, err
	}

	model := domain.PricingModel(req.PricingModel)
	cycle := domain.BillingCycle(req.BillingCycle)
	if err := validatePricing(model, req.BasePrice, req.MonthlyPrice, cycle); err != nil {
		return nil, err
	}

	svc := &domain.Service{
		ProviderID:     p.ID,
		Name:           req.Name,
		Description:    req.Description,
		PricingModel:   model,
		BasePrice:      req.BasePrice,
		MonthlyPrice:   req.MonthlyPrice,
		BillingCycle:   cycle,
		VisitsPerCycle: req.VisitsPerCycle,
		IsActive:       true,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, userID, serviceID int64, req UpdateServiceRequest) (*domain.Service, error) {
	p, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return nil, err
	}
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, ErrNotFound
	}
	if svc.ProviderID != p.ID {
		return nil, ErrForbidden
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.BasePrice != nil {
		svc.BasePrice = *req.BasePrice
	}
	if req.MonthlyPrice != nil {
		svc.MonthlyPrice = *req.MonthlyPrice
	}
	if req.VisitsPerCycle != nil {
		svc.VisitsPerCycle = *req.VisitsPerCycle
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := validatePricing(svc.PricingModel, svc.BasePrice, svc.MonthlyPrice, svc.BillingCycle); err != nil {
		return nil, err
	}
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return svc, nil
}

// DeleteService removes a service unless subscriptions are still
// running against it.
func (s *Service) DeleteService(ctx context.Context, userID, serviceID int64) error {
	p, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return err
	}
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return ErrNotFound
	}
	if svc.ProviderID != p.ID {
		return ErrForbidden
	}

	if err := s.services.Delete(ctx, serviceID); err != nil {
		if errors.Is(err, repository.ErrHasActiveSubscriptions) {
			return ErrActiveSubscriptions
		}
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}

func (s *Service) GetService(ctx context.Context, serviceID int64) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, ErrNotFound
	}
	return svc, nil
}

// ListByProvider returns a provider's catalog; used both by the public
// provider page and the provider dashboard.
func (s *Service) ListByProvider(ctx context.Context, providerID int64) ([]domain.Service, error) {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return nil, ErrProviderNotFound
	}
	return s.services.ListByProvider(ctx, providerID)
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.Service, error) {
	p, err := s.resolveProvider(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.services.ListByProvider(ctx, p.ID)
}
