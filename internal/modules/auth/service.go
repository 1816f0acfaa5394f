package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"handyghana/internal/domain"
	"handyghana/internal/integrations/sms"
	"handyghana/internal/pkg/jwt"
)

const otpTTL = 10 * time.Minute

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByOAuth(ctx context.Context, provider, oauthID string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
	SetPhoneVerified(ctx context.Context, id int64) error
}

type Service struct {
	users   UserRepository
	tokens  *jwt.Service
	smsOut  sms.Sender
	otps    sms.OTPStore
	loggerf func(format string, args ...interface{})
}

func NewService(users UserRepository, tokens *jwt.Service, smsOut sms.Sender, otps sms.OTPStore, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Service{users: users, tokens: tokens, smsOut: smsOut, otps: otps, loggerf: loggerf}
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issueToken(u)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(u)
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// OAuthLogin signs a user in from a social token. The token is not
// exchanged with the real identity provider here; the subject is
// derived from it deterministically so repeated logins map to the same
// account. Accounts are linked by email when one already exists.
func (s *Service) OAuthLogin(ctx context.Context, req OAuthRequest) (*AuthResult, error) {
	provider := strings.ToLower(req.Provider)
	switch provider {
	case "google", "apple", "facebook":
	default:
		return nil, fmt.Errorf("%w: unsupported oauth provider %q", ErrValidation, req.Provider)
	}

	sum := sha256.Sum256([]byte(provider + ":" + req.Token))
	oauthID := hex.EncodeToString(sum[:16])

	if u, err := s.users.GetByOAuth(ctx, provider, oauthID); err == nil {
		return s.issueToken(u)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if u, err := s.users.GetByEmail(ctx, email); err == nil {
		u.OAuthProvider = provider
		u.OAuthID = oauthID
		if err := s.users.Update(ctx, u); err != nil {
			return nil, fmt.Errorf("link oauth account: %w", err)
		}
		return s.issueToken(u)
	}

	u := &domain.User{
		Email:         email,
		Name:          req.Name,
		Role:          domain.RoleCustomer,
		OAuthProvider: provider,
		OAuthID:       oauthID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create oauth user: %w", err)
	}
	return s.issueToken(u)
}

// RequestOTP sends a verification code to the user's phone. The code is
// stored with a short TTL; requesting again replaces it.
func (s *Service) RequestOTP(ctx context.Context, userID int64, phone string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	code, err := sms.GenerateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := s.otps.Set(ctx, phone, code, otpTTL); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	msg := fmt.Sprintf("Your HandyGhana verification code is %s. It expires in 10 minutes.", code)
	if err := s.smsOut.Send(ctx, phone, msg); err != nil {
		return fmt.Errorf("send code: %w", err)
	}

	if u.Phone != phone {
		u.Phone = phone
		u.PhoneVerified = false
		if err := s.users.Update(ctx, u); err != nil {
			s.loggerf("auth: save phone for user %d: %v", userID, err)
		}
	}
	return nil
}

func (s *Service) VerifyOTP(ctx context.Context, userID int64, phone, code string) error {
	stored, err := s.otps.Get(ctx, phone)
	if err != nil || stored != code {
		return ErrInvalidCode
	}
	if err := s.otps.Delete(ctx, phone); err != nil {
		s.loggerf("auth: delete otp for %s: %v", phone, err)
	}
	return s.users.SetPhoneVerified(ctx, userID)
}

func (s *Service) issueToken(u *domain.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}
