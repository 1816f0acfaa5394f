package subscription

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

type subFixture struct {
	service *Service
	db      *gorm.DB
	svc     *domain.Service
	paygo   *domain.Service
}

func newSubFixture(t *testing.T) *subFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:subscription_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	services := repository.NewServiceRepository(db)

	svc := &domain.Service{
		ProviderID:     10,
		Name:           "Monthly checkup",
		PricingModel:   domain.PricingSubscription,
		MonthlyPrice:   8000,
		BillingCycle:   domain.BillingMonthly,
		VisitsPerCycle: 2,
		IsActive:       true,
	}
	if err := services.Create(ctx, svc); err != nil {
		t.Fatalf("seed service: %v", err)
	}

	paygo := &domain.Service{
		ProviderID:   10,
		Name:         "One-off repair",
		PricingModel: domain.PricingPayAsYouGo,
		BasePrice:    5000,
		IsActive:     true,
	}
	if err := services.Create(ctx, paygo); err != nil {
		t.Fatalf("seed service: %v", err)
	}

	return &subFixture{
		service: NewService(repository.NewSubscriptionRepository(db), services, nil),
		db:      db,
		svc:     svc,
		paygo:   paygo,
	}
}

func TestNextBillingPerCycle(t *testing.T) {
	from := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		cycle domain.BillingCycle
		want  time.Time
	}{
		{domain.BillingWeekly, from.AddDate(0, 0, 7)},
		{domain.BillingMonthly, from.AddDate(0, 1, 0)},
		{domain.BillingQuarterly, from.AddDate(0, 3, 0)},
	}
	for _, tc := range cases {
		if got := domain.NextBilling(tc.cycle, from); !got.Equal(tc.want) {
			t.Errorf("%s: got %v, want %v", tc.cycle, got, tc.want)
		}
	}
}

func TestSubscribeSetsBillingAndVisits(t *testing.T) {
	f := newSubFixture(t)
	ctx := context.Background()

	sub, err := f.service.Subscribe(ctx, 1, f.svc.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.Status != domain.SubscriptionActive {
		t.Errorf("status = %s, want active", sub.Status)
	}
	if sub.VisitsRemaining != 2 {
		t.Errorf("visits remaining = %d, want 2", sub.VisitsRemaining)
	}

	wantBilling := domain.NextBilling(domain.BillingMonthly, time.Now())
	if d := sub.NextBillingDate.Sub(wantBilling); d < -time.Minute || d > time.Minute {
		t.Errorf("next billing %v, want around %v", sub.NextBillingDate, wantBilling)
	}
}

func TestSubscribeRejectsPayAsYouGoService(t *testing.T) {
	f := newSubFixture(t)

	if _, err := f.service.Subscribe(context.Background(), 1, f.paygo.ID); !errors.Is(err, ErrNotSubscribable) {
		t.Errorf("got %v, want ErrNotSubscribable", err)
	}
}

func TestSubscribeRejectsDuplicate(t *testing.T) {
	f := newSubFixture(t)
	ctx := context.Background()

	if _, err := f.service.Subscribe(ctx, 1, f.svc.ID); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	if _, err := f.service.Subscribe(ctx, 1, f.svc.ID); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("got %v, want ErrAlreadyActive", err)
	}
}

func TestPauseResumeCancelLifecycle(t *testing.T) {
	f := newSubFixture(t)
	ctx := context.Background()

	sub, err := f.service.Subscribe(ctx, 1, f.svc.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := f.service.Resume(ctx, 1, sub.ID); !errors.Is(err, ErrNotPaused) {
		t.Errorf("resume active: got %v, want ErrNotPaused", err)
	}

	if _, err := f.service.Pause(ctx, 1, sub.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := f.service.UseVisit(ctx, 1, sub.ID); !errors.Is(err, ErrNotActive) {
		t.Errorf("use visit while paused: got %v, want ErrNotActive", err)
	}

	if _, err := f.service.Resume(ctx, 1, sub.ID); err != nil {
		t.Fatalf("resume: %v", err)
	}

	got, err := f.service.Cancel(ctx, 1, sub.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.CancelledAt == nil {
		t.Error("cancelled_at not set")
	}
	if _, err := f.service.Cancel(ctx, 1, sub.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("second cancel: got %v, want ErrAlreadyCancelled", err)
	}
}

func TestUseVisitDecrements(t *testing.T) {
	f := newSubFixture(t)
	ctx := context.Background()

	sub, err := f.service.Subscribe(ctx, 1, f.svc.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	for i := 0; i < 2; i++ {
		if sub, err = f.service.UseVisit(ctx, 1, sub.ID); err != nil {
			t.Fatalf("use visit %d: %v", i, err)
		}
	}
	if sub.VisitsUsed != 2 || sub.VisitsRemaining != 0 {
		t.Errorf("visits = %d used / %d left, want 2/0", sub.VisitsUsed, sub.VisitsRemaining)
	}
	if _, err := f.service.UseVisit(ctx, 1, sub.ID); !errors.Is(err, ErrNoVisitsLeft) {
		t.Errorf("got %v, want ErrNoVisitsLeft", err)
	}
}

func TestRenewDueRollsCycleAndResetsVisits(t *testing.T) {
	f := newSubFixture(t)
	ctx := context.Background()

	sub, err := f.service.Subscribe(ctx, 1, f.svc.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := f.service.UseVisit(ctx, 1, sub.ID); err != nil {
		t.Fatalf("use visit: %v", err)
	}

	// Force the billing date into the past.
	overdue := time.Now().AddDate(0, 0, -1)
	if err := f.db.Model(&domain.Subscription{}).Where("id = ?", sub.ID).
		Update("next_billing_date", overdue).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	n, err := f.service.RenewDue(ctx)
	if err != nil {
		t.Fatalf("renew due: %v", err)
	}
	if n != 1 {
		t.Fatalf("renewed %d, want 1", n)
	}

	got, err := f.service.Get(ctx, 1, sub.ID, "")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.NextBillingDate.After(time.Now()) {
		t.Errorf("next billing %v still in the past", got.NextBillingDate)
	}
	if got.VisitsUsed != 0 || got.VisitsRemaining != 2 {
		t.Errorf("visits = %d used / %d left after renewal, want 0/2", got.VisitsUsed, got.VisitsRemaining)
	}

	// Nothing due on the second pass.
	if n, err := f.service.RenewDue(ctx); err != nil || n != 0 {
		t.Errorf("second pass renewed %d (err %v), want 0", n, err)
	}
}

func TestRenewDueExpiresWhenServiceRetired(t *testing.T) {
	f := newSubFixture(t)
	ctx := context.Background()

	sub, err := f.service.Subscribe(ctx, 1, f.svc.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	overdue := time.Now().AddDate(0, 0, -1)
	if err := f.db.Model(&domain.Subscription{}).Where("id = ?", sub.ID).
		Update("next_billing_date", overdue).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	if err := f.db.Model(&domain.Service{}).Where("id = ?", f.svc.ID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("retire service: %v", err)
	}

	n, err := f.service.RenewDue(ctx)
	if err != nil {
		t.Fatalf("renew due: %v", err)
	}
	if n != 0 {
		t.Errorf("renewed %d, want 0", n)
	}

	got, err := f.service.Get(ctx, 1, sub.ID, "")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.SubscriptionExpired {
		t.Errorf("status = %q, want expired", got.Status)
	}
}
