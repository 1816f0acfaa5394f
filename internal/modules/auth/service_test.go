package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"handyghana/internal/domain"
	"handyghana/internal/integrations/sms"
	"handyghana/internal/pkg/jwt"
	"handyghana/internal/repository"
)

// recordingSender captures outgoing SMS messages.
type recordingSender struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingSender) Send(_ context.Context, _ string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func newTestService(t *testing.T) (*Service, *recordingSender, sms.OTPStore, *repository.UserRepository) {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepository(db)
	sender := &recordingSender{}
	otps := sms.NewMemoryOTPStore()
	tokens := jwt.New("test_secret_key_32_characters_min", time.Hour)

	return NewService(users, tokens, sender, otps, nil), sender, otps, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterRequest{
		Email:    "  Kofi@Example.COM ",
		Password: "Password123!",
		Name:     "Kofi Boateng",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Token == "" {
		t.Error("register returned empty token")
	}
	if res.User.Email != "kofi@example.com" {
		t.Errorf("email = %q, want normalized lowercase", res.User.Email)
	}
	if res.User.Role != domain.RoleCustomer {
		t.Errorf("role = %q, want customer", res.User.Role)
	}

	if _, err := svc.Register(ctx, RegisterRequest{
		Email:    "kofi@example.com",
		Password: "Password123!",
		Name:     "Kofi Again",
	}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate register: got %v, want ErrEmailTaken", err)
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "kofi@example.com", Password: "Password123!"}); err != nil {
		t.Errorf("login: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "kofi@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "Password123!"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestOAuthLoginLinksAndReuses(t *testing.T) {
	svc, _, _, users := newTestService(t)
	ctx := context.Background()

	// First social login creates the account.
	first, err := svc.OAuthLogin(ctx, OAuthRequest{
		Provider: "Google",
		Token:    "social-token-1",
		Email:    "ama@example.com",
		Name:     "Ama Mensah",
	})
	if err != nil {
		t.Fatalf("oauth login: %v", err)
	}

	// Same token maps to the same account.
	again, err := svc.OAuthLogin(ctx, OAuthRequest{
		Provider: "google",
		Token:    "social-token-1",
		Email:    "ama@example.com",
	})
	if err != nil {
		t.Fatalf("oauth relogin: %v", err)
	}
	if again.User.ID != first.User.ID {
		t.Errorf("relogin created a new account: %d vs %d", again.User.ID, first.User.ID)
	}

	// An existing password account with the same email gets linked.
	reg, err := svc.Register(ctx, RegisterRequest{
		Email:    "yaw@example.com",
		Password: "Password123!",
		Name:     "Yaw Owusu",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	linked, err := svc.OAuthLogin(ctx, OAuthRequest{
		Provider: "apple",
		Token:    "social-token-2",
		Email:    "yaw@example.com",
	})
	if err != nil {
		t.Fatalf("oauth link: %v", err)
	}
	if linked.User.ID != reg.User.ID {
		t.Errorf("linking created a new account: %d vs %d", linked.User.ID, reg.User.ID)
	}
	stored, err := users.GetByID(ctx, reg.User.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.OAuthProvider != "apple" || stored.OAuthID == "" {
		t.Errorf("oauth linkage not persisted: provider=%q id=%q", stored.OAuthProvider, stored.OAuthID)
	}

	if _, err := svc.OAuthLogin(ctx, OAuthRequest{
		Provider: "myspace",
		Token:    "social-token-3",
		Email:    "x@example.com",
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("unsupported provider: got %v, want ErrValidation", err)
	}
}

func TestOTPFlow(t *testing.T) {
	svc, sender, otps, users := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterRequest{
		Email:    "esi@example.com",
		Password: "Password123!",
		Name:     "Esi Appiah",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	userID := res.User.ID
	phone := "+233244000010"

	if err := svc.RequestOTP(ctx, userID, phone); err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if sender.count() != 1 {
		t.Fatalf("sms sent = %d, want 1", sender.count())
	}

	if err := svc.VerifyOTP(ctx, userID, phone, "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("wrong code: got %v, want ErrInvalidCode", err)
	}

	code, err := otps.Get(ctx, phone)
	if err != nil {
		t.Fatalf("read stored code: %v", err)
	}
	if err := svc.VerifyOTP(ctx, userID, phone, code); err != nil {
		t.Fatalf("verify otp: %v", err)
	}

	u, err := users.GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !u.PhoneVerified {
		t.Error("phone not marked verified")
	}
	if u.Phone != phone {
		t.Errorf("phone = %q, want %q", u.Phone, phone)
	}

	// The code is single-use.
	if err := svc.VerifyOTP(ctx, userID, phone, code); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("code reuse: got %v, want ErrInvalidCode", err)
	}
}
