package payout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"handyghana/internal/database"
	"handyghana/internal/domain"
)

type noopNotifier struct{}

func (noopNotifier) PayoutSettled(context.Context, int64, *domain.Payout) error { return nil }

type staticProviders struct{}

func (staticProviders) GetByID(_ context.Context, id int64) (*domain.Provider, error) {
	return &domain.Provider{ID: id, UserID: id + 1000}, nil
}

type failingDisburser struct{}

func (failingDisburser) Disburse(context.Context, *domain.Payout) error {
	return errors.New("momo rail rejected the transfer")
}

func newTestService(t *testing.T, d Disburser) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payout_%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", t.Name())
	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, staticProviders{}, noopNotifier{}, d, 0, nil), db
}

func waitForTerminal(t *testing.T, s *Service, id uuid.UUID) *domain.Payout {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		p, err := s.GetPayout(context.Background(), id)
		if err != nil {
			t.Fatalf("get payout: %v", err)
		}
		if p.Status == domain.PayoutCompleted || p.Status == domain.PayoutFailed {
			return p
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("payout never reached a terminal state")
	return nil
}

func TestAddEarningsAppliesCommission(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()

	w, err := s.AddEarnings(ctx, 1, 10000, 0.15, "ref-1")
	if err != nil {
		t.Fatalf("add earnings: %v", err)
	}
	if w.Balance != 8500 {
		t.Errorf("balance = %d, want 8500", w.Balance)
	}
	if w.TotalEarned != 8500 {
		t.Errorf("total earned = %d, want 8500", w.TotalEarned)
	}

	entries, err := s.ListEntries(ctx, 1)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != domain.EntryTypeEarning || entries[0].Amount != 8500 {
		t.Errorf("unexpected ledger entries: %+v", entries)
	}
}

func TestAddEarningsRejectsBadInput(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()

	if _, err := s.AddEarnings(ctx, 1, 0, 0.15, "r"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := s.AddEarnings(ctx, 1, 100, 1.5, "r"); !errors.Is(err, ErrInvalidCommission) {
		t.Errorf("rate > 1: got %v, want ErrInvalidCommission", err)
	}
}

func TestPayoutLifecycleCompletes(t *testing.T) {
	s, _ := newTestService(t, SimulatedDisburser{})
	ctx := context.Background()

	if _, err := s.AddEarnings(ctx, 7, 20000, 0, "booking-1"); err != nil {
		t.Fatalf("seed earnings: %v", err)
	}

	p, err := s.RequestPayout(ctx, 7, PayoutRequest{
		Amount:         12000,
		Method:         domain.MethodMTNMomo,
		RecipientPhone: "+233240000000",
	})
	if err != nil {
		t.Fatalf("request payout: %v", err)
	}

	p = waitForTerminal(t, s, p.ID)
	if p.Status != domain.PayoutCompleted {
		t.Fatalf("status = %s, want completed", p.Status)
	}

	w, err := s.GetOrCreateWallet(ctx, 7)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if w.Balance != 8000 {
		t.Errorf("balance = %d, want 8000", w.Balance)
	}
	if w.PendingBalance != 0 {
		t.Errorf("pending = %d, want 0", w.PendingBalance)
	}
	if w.TotalWithdrawn != 12000 {
		t.Errorf("withdrawn = %d, want 12000", w.TotalWithdrawn)
	}
}

// A failed disbursement must return the held amount to the balance
// instead of stranding it in pending.
func TestFailedPayoutReleasesFunds(t *testing.T) {
	s, _ := newTestService(t, failingDisburser{})
	ctx := context.Background()

	if _, err := s.AddEarnings(ctx, 3, 50000, 0, "booking-9"); err != nil {
		t.Fatalf("seed earnings: %v", err)
	}

	p, err := s.RequestPayout(ctx, 3, PayoutRequest{
		Amount:           30000,
		Method:           domain.MethodBankTransfer,
		RecipientBank:    "GCB",
		RecipientAccount: "12345",
	})
	if err != nil {
		t.Fatalf("request payout: %v", err)
	}

	p = waitForTerminal(t, s, p.ID)
	if p.Status != domain.PayoutFailed {
		t.Fatalf("status = %s, want failed", p.Status)
	}
	if p.FailureReason == "" {
		t.Error("failure reason is empty")
	}

	w, err := s.GetOrCreateWallet(ctx, 3)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if w.Balance != 50000 {
		t.Errorf("balance = %d, want full 50000 restored", w.Balance)
	}
	if w.PendingBalance != 0 {
		t.Errorf("pending = %d, want 0", w.PendingBalance)
	}
	if w.TotalWithdrawn != 0 {
		t.Errorf("withdrawn = %d, want 0", w.TotalWithdrawn)
	}

	entries, err := s.ListEntries(ctx, 3)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	var release bool
	for _, e := range entries {
		if e.Type == domain.EntryTypePayoutRelease && e.Amount == 30000 {
			release = true
		}
	}
	if !release {
		t.Errorf("no PAYOUT_RELEASE entry recorded: %+v", entries)
	}
}

func TestRequestPayoutValidation(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()

	if _, err := s.AddEarnings(ctx, 5, 10000, 0, "x"); err != nil {
		t.Fatalf("seed earnings: %v", err)
	}

	cases := []struct {
		name string
		req  PayoutRequest
		want error
	}{
		{"zero amount", PayoutRequest{Amount: 0, Method: domain.MethodMTNMomo, RecipientPhone: "p"}, ErrInvalidAmount},
		{"momo without phone", PayoutRequest{Amount: 100, Method: domain.MethodMTNMomo}, ErrMissingRecipient},
		{"bank without account", PayoutRequest{Amount: 100, Method: domain.MethodBankTransfer, RecipientBank: "GCB"}, ErrMissingRecipient},
		{"card payouts unsupported", PayoutRequest{Amount: 100, Method: domain.MethodCard}, ErrUnsupportedMethod},
		{"over balance", PayoutRequest{Amount: 99999, Method: domain.MethodMTNMomo, RecipientPhone: "p"}, ErrInsufficientFunds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.RequestPayout(ctx, 5, tc.req); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

// Conservation: concurrent credits and payout requests must not lose
// updates; the final balances have to add up.
func TestConcurrentLedgerConservation(t *testing.T) {
	s, _ := newTestService(t, SimulatedDisburser{})
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := s.AddEarnings(ctx, 42, 1000, 0, fmt.Sprintf("ref-%d", n)); err != nil {
				t.Errorf("add earnings: %v", err)
			}
		}(i)
	}
	wg.Wait()

	w, err := s.GetOrCreateWallet(ctx, 42)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if w.Balance != workers*1000 {
		t.Errorf("balance = %d, want %d", w.Balance, workers*1000)
	}
	if w.Balance+w.PendingBalance+w.TotalWithdrawn != w.TotalEarned {
		t.Errorf("conservation broken: balance=%d pending=%d withdrawn=%d earned=%d",
			w.Balance, w.PendingBalance, w.TotalWithdrawn, w.TotalEarned)
	}
}
