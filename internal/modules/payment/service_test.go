package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"handyghana/internal/database"
	"handyghana/internal/domain"
	"handyghana/internal/integrations/paystack"
	"handyghana/internal/repository"
)

const testSecret = "sk_test_secret"

type stubGateway struct {
	verifyStatus string
	verifyErr    error
}

func (g *stubGateway) Live() bool { return true }

func (g *stubGateway) InitializeTransaction(_ context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error) {
	return &paystack.InitializeResponse{AuthorizationURL: "https://checkout.test/" + req.Reference, Reference: req.Reference}, nil
}

func (g *stubGateway) ChargeMobileMoney(_ context.Context, req paystack.ChargeRequest) (*paystack.ChargeResponse, error) {
	return &paystack.ChargeResponse{Reference: req.Reference, Status: "pay_offline", DisplayText: "approve on phone"}, nil
}

func (g *stubGateway) VerifyTransaction(_ context.Context, reference string) (*paystack.VerifyResponse, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &paystack.VerifyResponse{Reference: reference, Status: g.verifyStatus, ID: 555}, nil
}

type recordingEarnings struct {
	mu      sync.Mutex
	credits []int64
}

func (r *recordingEarnings) AddEarnings(_ context.Context, _ int64, amount int64, rate float64, _ string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credits = append(r.credits, amount)
	return &domain.Wallet{}, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed int
	failed    int
}

func (r *recordingNotifier) PaymentCompleted(context.Context, *domain.Booking, int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
	return nil
}

func (r *recordingNotifier) PaymentFailed(context.Context, *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
	return nil
}

type staticSettings struct{}

func (staticSettings) Get(context.Context) (*domain.Settings, error) {
	return &domain.Settings{CommissionRate: 0.15}, nil
}

type paymentFixture struct {
	service  *Service
	db       *gorm.DB
	earnings *recordingEarnings
	notifier *recordingNotifier
	gateway  *stubGateway
	booking  *domain.Booking
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", t.Name())
	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	u := &domain.User{Email: "customer@test.com", Name: "Customer", Role: domain.RoleCustomer}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	bookings := repository.NewBookingRepository(db)
	b := &domain.Booking{
		UserID:        u.ID,
		ProviderID:    10,
		ServiceType:   "cleaning",
		ScheduledAt:   time.Now().Add(time.Hour),
		Amount:        25000,
		Status:        domain.BookingPending,
		PaymentStatus: domain.BookingPaymentUnpaid,
	}
	if err := bookings.Create(ctx, b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	f := &paymentFixture{
		db:       db,
		earnings: &recordingEarnings{},
		notifier: &recordingNotifier{},
		gateway:  &stubGateway{verifyStatus: "success"},
		booking:  b,
	}
	f.service = NewService(
		repository.NewPaymentRepository(db),
		bookings,
		users,
		staticSettings{},
		f.earnings,
		f.gateway,
		f.notifier,
		testSecret,
		nil,
	)
	return f
}

func (f *paymentFixture) initialize(t *testing.T, method string) *InitializeResult {
	t.Helper()
	res, err := f.service.Initialize(context.Background(), f.booking.UserID, InitializePaymentRequest{
		BookingID: f.booking.ID,
		Method:    method,
		Phone:     "+233240000000",
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return res
}

func successEvent(reference string) []byte {
	body, _ := json.Marshal(map[string]any{
		"event": "charge.success",
		"data":  map[string]any{"id": 555, "reference": reference, "status": "success"},
	})
	return body
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture(t)
	res := f.initialize(t, string(domain.MethodCard))

	body := successEvent(res.Reference)
	err := f.service.HandleWebhook(context.Background(), body, "deadbeef")
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("got %v, want ErrBadSignature", err)
	}

	p, err := f.service.GetByReference(context.Background(), f.booking.UserID, res.Reference)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if p.Status == domain.PaymentCompleted {
		t.Error("payment completed despite invalid signature")
	}
	if f.earnings.credits != nil {
		t.Error("earnings credited despite invalid signature")
	}
}

func TestWebhookCompletesPaymentOnce(t *testing.T) {
	f := newPaymentFixture(t)
	res := f.initialize(t, string(domain.MethodMTNMomo))

	// A sibling booking with its own pending payment must stay out of
	// the webhook's reach.
	ctx := context.Background()
	other := &domain.Booking{
		UserID:        f.booking.UserID,
		ProviderID:    11,
		ServiceType:   "plumbing",
		ScheduledAt:   time.Now().Add(2 * time.Hour),
		Amount:        40000,
		Status:        domain.BookingPending,
		PaymentStatus: domain.BookingPaymentUnpaid,
	}
	if err := repository.NewBookingRepository(f.db).Create(ctx, other); err != nil {
		t.Fatalf("seed sibling booking: %v", err)
	}
	otherRes, err := f.service.Initialize(ctx, other.UserID, InitializePaymentRequest{
		BookingID: other.ID,
		Method:    string(domain.MethodCard),
	})
	if err != nil {
		t.Fatalf("initialize sibling payment: %v", err)
	}

	body := successEvent(res.Reference)
	sig := paystack.Sign(body, testSecret)

	// Paystack retries webhooks; replays must be no-ops.
	for i := 0; i < 3; i++ {
		if err := f.service.HandleWebhook(context.Background(), body, sig); err != nil {
			t.Fatalf("webhook attempt %d: %v", i, err)
		}
	}

	p, err := f.service.GetByReference(context.Background(), f.booking.UserID, res.Reference)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if p.Status != domain.PaymentCompleted {
		t.Fatalf("status = %s, want completed", p.Status)
	}
	if p.PaidAt == nil {
		t.Error("paid_at not set")
	}

	if len(f.earnings.credits) != 1 {
		t.Fatalf("earnings credited %d times, want exactly once", len(f.earnings.credits))
	}
	if f.earnings.credits[0] != 25000 {
		t.Errorf("credited gross = %d, want 25000", f.earnings.credits[0])
	}
	if f.notifier.completed != 1 {
		t.Errorf("completion notified %d times, want once", f.notifier.completed)
	}

	var b domain.Booking
	if err := f.db.First(&b, f.booking.ID).Error; err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if b.PaymentStatus != domain.BookingPaymentCompleted {
		t.Errorf("booking payment status = %s, want completed", b.PaymentStatus)
	}

	op, err := f.service.GetByReference(ctx, other.UserID, otherRes.Reference)
	if err != nil {
		t.Fatalf("get sibling payment: %v", err)
	}
	if op.Status != domain.PaymentPending {
		t.Errorf("sibling payment status = %s, want pending", op.Status)
	}
	var ob domain.Booking
	if err := f.db.First(&ob, other.ID).Error; err != nil {
		t.Fatalf("reload sibling booking: %v", err)
	}
	if ob.PaymentStatus != domain.BookingPaymentPending {
		t.Errorf("sibling booking payment status = %s, want pending", ob.PaymentStatus)
	}
}

// A completed payment never regresses, even if a failure event arrives
// after the success.
func TestCompletedPaymentIsMonotonic(t *testing.T) {
	f := newPaymentFixture(t)
	res := f.initialize(t, string(domain.MethodCard))

	success := successEvent(res.Reference)
	if err := f.service.HandleWebhook(context.Background(), success, paystack.Sign(success, testSecret)); err != nil {
		t.Fatalf("success webhook: %v", err)
	}

	failure, _ := json.Marshal(map[string]any{
		"event": "charge.failed",
		"data":  map[string]any{"reference": res.Reference, "status": "failed", "gateway_response": "declined"},
	})
	if err := f.service.HandleWebhook(context.Background(), failure, paystack.Sign(failure, testSecret)); err != nil {
		t.Fatalf("failure webhook: %v", err)
	}

	p, err := f.service.GetByReference(context.Background(), f.booking.UserID, res.Reference)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if p.Status != domain.PaymentCompleted {
		t.Errorf("status = %s, completed must not regress", p.Status)
	}
	if f.notifier.failed != 0 {
		t.Errorf("failure notified %d times after completion, want 0", f.notifier.failed)
	}
}

func TestWebhookIgnoresUnknownReference(t *testing.T) {
	f := newPaymentFixture(t)

	body := successEvent("HG-does-not-exist")
	if err := f.service.HandleWebhook(context.Background(), body, paystack.Sign(body, testSecret)); err != nil {
		t.Fatalf("unknown reference should be acknowledged, got %v", err)
	}
}

func TestVerifyFailsClosedWhenGatewayDown(t *testing.T) {
	f := newPaymentFixture(t)
	res := f.initialize(t, string(domain.MethodCard))

	f.gateway.verifyErr = paystack.ErrUnavailable

	p, err := f.service.Verify(context.Background(), f.booking.UserID, res.Reference)
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("got %v, want ErrGatewayUnavailable", err)
	}
	if p == nil || p.Status == domain.PaymentCompleted {
		t.Error("verification must not complete a payment without gateway confirmation")
	}
}

func TestVerifyCompletesOnGatewaySuccess(t *testing.T) {
	f := newPaymentFixture(t)
	res := f.initialize(t, string(domain.MethodCard))

	p, err := f.service.Verify(context.Background(), f.booking.UserID, res.Reference)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Status != domain.PaymentCompleted {
		t.Errorf("status = %s, want completed", p.Status)
	}
	if len(f.earnings.credits) != 1 {
		t.Errorf("earnings credited %d times, want once", len(f.earnings.credits))
	}
}

func TestInitializeRejectsForeignBooking(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.service.Initialize(context.Background(), f.booking.UserID+99, InitializePaymentRequest{
		BookingID: f.booking.ID,
		Method:    string(domain.MethodCard),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
}

func TestInitializeRejectsUnknownMethod(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.service.Initialize(context.Background(), f.booking.UserID, InitializePaymentRequest{
		BookingID: f.booking.ID,
		Method:    "cowries",
	})
	if !errors.Is(err, ErrUnsupportedMethod) {
		t.Errorf("got %v, want ErrUnsupportedMethod", err)
	}
}
