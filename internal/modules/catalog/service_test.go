package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"handyghana/internal/database"
	"handyghana/internal/domain"
	"handyghana/internal/repository"
)

type catalogFixture struct {
	service  *Service
	db       *gorm.DB
	provider *domain.Provider
	owner    *domain.User
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:catalog_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	owner := &domain.User{Email: "owner@test.com", Role: domain.RoleProvider}
	if err := users.Create(ctx, owner); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	providers := repository.NewProviderRepository(db)
	p := &domain.Provider{UserID: owner.ID, Category: "cleaning", VerificationStatus: domain.VerificationVerified}
	if err := providers.Create(ctx, p); err != nil {
		t.Fatalf("seed provider: %v", err)
	}

	return &catalogFixture{
		service:  NewService(repository.NewServiceRepository(db), providers),
		db:       db,
		provider: p,
		owner:    owner,
	}
}

func TestCreateServiceValidatesPricing(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateServiceRequest
	}{
		{"pay as you go needs base price", CreateServiceRequest{Name: "x", PricingModel: "pay_as_you_go"}},
		{"subscription needs monthly price", CreateServiceRequest{Name: "x", PricingModel: "subscription", BillingCycle: "monthly"}},
		{"subscription needs valid cycle", CreateServiceRequest{Name: "x", PricingModel: "subscription", MonthlyPrice: 100, BillingCycle: "fortnightly"}},
		{"unknown pricing model", CreateServiceRequest{Name: "x", PricingModel: "barter", BasePrice: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.service.CreateService(ctx, f.owner.ID, tc.req); !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestDeleteServiceBlockedByActiveSubscriptions(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	svc, err := f.service.CreateService(ctx, f.owner.ID, CreateServiceRequest{
		Name:           "Weekly cleaning",
		PricingModel:   "subscription",
		MonthlyPrice:   60000,
		BillingCycle:   "weekly",
		VisitsPerCycle: 1,
	})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}

	sub := &domain.Subscription{
		UserID:          999,
		ServiceID:       svc.ID,
		ProviderID:      f.provider.ID,
		Status:          domain.SubscriptionActive,
		NextBillingDate: time.Now().AddDate(0, 0, 7),
	}
	if err := f.db.Create(sub).Error; err != nil {
		t.Fatalf("seed subscription: %v", err)
	}

	if err := f.service.DeleteService(ctx, f.owner.ID, svc.ID); !errors.Is(err, ErrActiveSubscriptions) {
		t.Fatalf("got %v, want ErrActiveSubscriptions", err)
	}

	// Cancelling the subscription unblocks deletion.
	if err := f.db.Model(sub).Update("status", domain.SubscriptionCancelled).Error; err != nil {
		t.Fatalf("cancel subscription: %v", err)
	}
	if err := f.service.DeleteService(ctx, f.owner.ID, svc.ID); err != nil {
		t.Fatalf("delete after cancel: %v", err)
	}
	if _, err := f.service.GetService(ctx, svc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("service still readable after delete: %v", err)
	}
}

func TestUpdateServiceOwnershipCheck(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	svc, err := f.service.CreateService(ctx, f.owner.ID, CreateServiceRequest{
		Name:         "Repair",
		PricingModel: "pay_as_you_go",
		BasePrice:    5000,
	})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}

	// A second provider must not be able to touch it.
	users := repository.NewUserRepository(f.db)
	other := &domain.User{Email: "other@test.com", Role: domain.RoleProvider}
	if err := users.Create(ctx, other); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	providers := repository.NewProviderRepository(f.db)
	if err := providers.Create(ctx, &domain.Provider{UserID: other.ID}); err != nil {
		t.Fatalf("seed provider: %v", err)
	}

	newName := "Hijacked"
	if _, err := f.service.UpdateService(ctx, other.ID, svc.ID, UpdateServiceRequest{Name: &newName}); !errors.Is(err, ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
	if err := f.service.DeleteService(ctx, other.ID, svc.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
}
