package provider

import (
	"context"
	"fmt"
	"mime/multipart"

	"handyghana/internal/domain"
	"handyghana/internal/integrations/storage"
	"handyghana/internal/repository"
)

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// WalletCreator opens the provider's wallet on onboarding so earnings
// can be credited from the first completed payment.
type WalletCreator interface {
	GetOrCreateWallet(ctx context.Context, providerID int64) (*domain.Wallet, error)
}

type VerificationNotifier interface {
	ProviderVerification(ctx context.Context, providerUserID int64, approved bool, reason string) error
}

type Service struct {
	providers *repository.ProviderRepository
	users     UserStore
	wallets   WalletCreator
	uploader  storage.Uploader
	notifs    VerificationNotifier
	loggerf   func(format string, args ...interface{})
}

func NewService(
	providers *repository.ProviderRepository,
	users UserStore,
	wallets WalletCreator,
	uploader storage.Uploader,
	notifs VerificationNotifier,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Service{
		providers: providers,
		users:     users,
		wallets:   wallets,
		uploader:  uploader,
		notifs:    notifs,
		loggerf:   loggerf,
	}
}

// Onboard creates a provider profile for the user, flips the account
// role and opens the wallet. The profile starts unverified.
func (s *Service) Onboard(ctx context.Context, userID int64, req OnboardRequest) (*domain.Provider, error) {
	if _, err := s.providers.GetByUserID(ctx, userID); err == nil {
		return nil, ErrAlreadyExists
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	p := &domain.Provider{
		UserID:             userID,
		Category:           req.Category,
		Location:           req.Location,
		Bio:                req.Bio,
		ServiceAreas:       req.ServiceAreas,
		Skills:             req.Skills,
		VerificationStatus: domain.VerificationPending,
	}
	if err := s.providers.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	if u.Role != domain.RoleAdmin {
		u.Role = domain.RoleProvider
		if err := s.users.Update(ctx, u); err != nil {
			s.loggerf("provider: promote user %d to provider role: %v", userID, err)
		}
	}

	if _, err := s.wallets.GetOrCreateWallet(ctx, p.ID); err != nil {
		s.loggerf("provider: open wallet for provider %d: %v", p.ID, err)
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Provider, error) {
	p, err := s.providers.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID int64) (*domain.Provider, error) {
	p, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, ErrMissingProfile
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f repository.ListFilter) ([]domain.Provider, error) {
	return s.providers.List(ctx, f)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.VerificationStatus, limit, offset int) ([]domain.Provider, error) {
	switch status {
	case domain.VerificationPending, domain.VerificationVerified, domain.VerificationRejected:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.providers.ListByStatus(ctx, status, limit, offset)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.Provider, error) {
	p, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, ErrMissingProfile
	}

	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.ServiceAreas != nil {
		p.ServiceAreas = *req.ServiceAreas
	}
	if req.Skills != nil {
		p.Skills = *req.Skills
	}

	if err := s.providers.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update provider: %w", err)
	}
	return p, nil
}

// UploadDocument stores a verification document and records its URL on
// the profile.
func (s *Service) UploadDocument(ctx context.Context, userID int64, file multipart.File, filename string) (*domain.Provider, error) {
	p, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, ErrMissingProfile
	}

	publicID := fmt.Sprintf("provider-%d-%s", p.ID, filename)
	url, err := s.uploader.Upload(ctx, file, publicID, "verification-docs")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	p.VerificationDocs = append(p.VerificationDocs, url)
	if err := s.providers.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("save document url: %w", err)
	}
	return p, nil
}

// SetVerification approves or rejects a provider and notifies them.
func (s *Service) SetVerification(ctx context.Context, providerID, adminID int64, approve bool, reason string) (*domain.Provider, error) {
	p, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, ErrNotFound
	}

	status := domain.VerificationRejected
	if approve {
		status = domain.VerificationVerified
		reason = ""
	} else if reason == "" {
		return nil, fmt.Errorf("%w: rejection requires a reason", ErrValidation)
	}

	if err := s.providers.UpdateVerification(ctx, p.ID, status, adminID, reason); err != nil {
		return nil, fmt.Errorf("update verification: %w", err)
	}
	if err := s.notifs.ProviderVerification(ctx, p.UserID, approve, reason); err != nil {
		s.loggerf("provider: notify verification for %d: %v", p.ID, err)
	}
	return s.providers.GetByID(ctx, p.ID)
}
