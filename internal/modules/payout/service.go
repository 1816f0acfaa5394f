package payout

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"handyghana/internal/domain"
)

// Notifier is implemented by the notification service.
type Notifier interface {
	PayoutSettled(ctx context.Context, providerUserID int64, p *domain.Payout) error
}

// ProviderUserResolver maps a provider ID to its user account.
type ProviderUserResolver interface {
	GetByID(ctx context.Context, id int64) (*domain.Provider, error)
}

// Disburser sends an approved payout to the external rail. The default
// implementation simulates the transfer; a gateway-backed one can be
// swapped in without touching the ledger logic.
type Disburser interface {
	Disburse(ctx context.Context, p *domain.Payout) error
}

// SimulatedDisburser always succeeds after the configured delay.
type SimulatedDisburser struct {
	Delay time.Duration
}

func (d SimulatedDisburser) Disburse(_ context.Context, _ *domain.Payout) error {
	time.Sleep(d.Delay)
	return nil
}

// Service owns the provider wallet ledger. Every mutation locks the
// wallet row inside a transaction, so concurrent earnings credits and
// payout requests on the same wallet serialize instead of losing
// updates. Conservation holds across every operation: funds only move
// between balance, pending_balance and total_withdrawn.
type Service struct {
	db           *gorm.DB
	providers    ProviderUserResolver
	notifs       Notifier
	disburser    Disburser
	processDelay time.Duration
	loggerf      func(format string, args ...interface{})
}

func NewService(
	db *gorm.DB,
	providers ProviderUserResolver,
	notifs Notifier,
	disburser Disburser,
	processDelay time.Duration,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	if disburser == nil {
		disburser = SimulatedDisburser{}
	}
	return &Service{
		db:           db,
		providers:    providers,
		notifs:       notifs,
		disburser:    disburser,
		processDelay: processDelay,
		loggerf:      loggerf,
	}
}

func (s *Service) GetOrCreateWallet(ctx context.Context, providerID int64) (*domain.Wallet, error) {
	wallet, err := s.getWalletByProviderID(ctx, providerID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = &domain.Wallet{ProviderID: providerID}
	if err := s.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if isUniqueConstraintError(err) {
			return s.getWalletByProviderID(ctx, providerID)
		}
		return nil, err
	}
	return wallet, nil
}

// AddEarnings credits amount*(1-commissionRate) to the provider's
// balance and total earned.
func (s *Service) AddEarnings(ctx context.Context, providerID, amount int64, commissionRate float64, reference string) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if commissionRate < 0 || commissionRate > 1 {
		return nil, ErrInvalidCommission
	}

	net := int64(math.Round(float64(amount) * (1 - commissionRate)))

	var wallet domain.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockWallet(tx, providerID, &wallet); err != nil {
			return err
		}

		wallet.Balance += net
		wallet.TotalEarned += net
		if err := tx.Model(&domain.Wallet{}).Where("id = ?", wallet.ID).Updates(map[string]interface{}{
			"balance":      wallet.Balance,
			"total_earned": wallet.TotalEarned,
		}).Error; err != nil {
			return err
		}

		entry := domain.WalletEntry{
			WalletID:  wallet.ID,
			Amount:    net,
			Type:      domain.EntryTypeEarning,
			Reference: reference,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=earnings credited provider_id=%d gross=%d net=%d rate=%.2f", providerID, amount, net, commissionRate)
	return &wallet, nil
}

type PayoutRequest struct {
	Amount           int64
	Method           domain.PaymentMethod
	RecipientPhone   string
	RecipientAccount string
	RecipientBank    string
}

func (r PayoutRequest) validate() error {
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch {
	case r.Method.IsMobileMoney():
		if strings.TrimSpace(r.RecipientPhone) == "" {
			return ErrMissingRecipient
		}
	case r.Method == domain.MethodBankTransfer:
		if strings.TrimSpace(r.RecipientAccount) == "" || strings.TrimSpace(r.RecipientBank) == "" {
			return ErrMissingRecipient
		}
	default:
		return ErrUnsupportedMethod
	}
	return nil
}

// RequestPayout holds the amount: balance decreases, pending balance
// increases by the same amount, and a pending payout row is created,
// all in one locked transaction.
func (s *Service) RequestPayout(ctx context.Context, providerID int64, req PayoutRequest) (*domain.Payout, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var wallet domain.Wallet
	var p domain.Payout

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockWallet(tx, providerID, &wallet); err != nil {
			return err
		}

		if wallet.Balance < req.Amount {
			return ErrInsufficientFunds
		}

		wallet.Balance -= req.Amount
		wallet.PendingBalance += req.Amount
		if err := tx.Model(&domain.Wallet{}).Where("id = ?", wallet.ID).Updates(map[string]interface{}{
			"balance":         wallet.Balance,
			"pending_balance": wallet.PendingBalance,
		}).Error; err != nil {
			return err
		}

		p = domain.Payout{
			ProviderID:       providerID,
			Amount:           req.Amount,
			Method:           req.Method,
			RecipientPhone:   req.RecipientPhone,
			RecipientAccount: req.RecipientAccount,
			RecipientBank:    req.RecipientBank,
			Status:           domain.PayoutPending,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}

		entry := domain.WalletEntry{
			WalletID:  wallet.ID,
			Amount:    -req.Amount,
			Type:      domain.EntryTypePayoutHold,
			Reference: p.ID.String(),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	go func() {
		if err := s.ProcessPayout(context.Background(), p.ID); err != nil {
			s.loggerf("level=error msg=payout processing failed payout_id=%s err=%v", p.ID, err)
		}
	}()

	return &p, nil
}

// ProcessPayout drives a pending payout to its terminal state:
// pending -> processing -> completed, settling pending balance into
// total withdrawn. A disbursement failure marks the payout failed and
// returns the held amount to the wallet balance.
func (s *Service) ProcessPayout(ctx context.Context, payoutID uuid.UUID) error {
	var p domain.Payout
	if err := s.db.WithContext(ctx).First(&p, "id = ?", payoutID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if p.Status != domain.PayoutPending {
		return nil
	}

	time.Sleep(s.processDelay)
	res := s.db.WithContext(ctx).Model(&domain.Payout{}).
		Where("id = ? AND status = ?", p.ID, domain.PayoutPending).
		Update("status", domain.PayoutProcessing)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Another worker claimed it first.
		return nil
	}

	if err := s.disburser.Disburse(ctx, &p); err != nil {
		return s.failPayout(ctx, &p, err.Error())
	}
	return s.settlePayout(ctx, &p)
}

func (s *Service) settlePayout(ctx context.Context, p *domain.Payout) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet domain.Wallet
		if err := lockWallet(tx, p.ProviderID, &wallet); err != nil {
			return err
		}

		wallet.PendingBalance -= p.Amount
		wallet.TotalWithdrawn += p.Amount
		if err := tx.Model(&domain.Wallet{}).Where("id = ?", wallet.ID).Updates(map[string]interface{}{
			"pending_balance": wallet.PendingBalance,
			"total_withdrawn": wallet.TotalWithdrawn,
		}).Error; err != nil {
			return err
		}

		entry := domain.WalletEntry{
			WalletID:  wallet.ID,
			Amount:    p.Amount,
			Type:      domain.EntryTypePayoutSettle,
			Reference: p.ID.String(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		now := time.Now()
		p.Status = domain.PayoutCompleted
		p.CompletedAt = &now
		return tx.Model(&domain.Payout{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"status":       domain.PayoutCompleted,
			"completed_at": &now,
		}).Error
	})
	if err != nil {
		return err
	}

	s.loggerf("level=info msg=payout completed payout_id=%s provider_id=%d amount=%d", p.ID, p.ProviderID, p.Amount)
	s.notifySettled(ctx, p)
	return nil
}

// failPayout releases the held amount back to the balance. Without this
// a failed payout would strand funds in pending forever.
func (s *Service) failPayout(ctx context.Context, p *domain.Payout, reason string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet domain.Wallet
		if err := lockWallet(tx, p.ProviderID, &wallet); err != nil {
			return err
		}

		wallet.PendingBalance -= p.Amount
		wallet.Balance += p.Amount
		if err := tx.Model(&domain.Wallet{}).Where("id = ?", wallet.ID).Updates(map[string]interface{}{
			"pending_balance": wallet.PendingBalance,
			"balance":         wallet.Balance,
		}).Error; err != nil {
			return err
		}

		entry := domain.WalletEntry{
			WalletID:  wallet.ID,
			Amount:    p.Amount,
			Type:      domain.EntryTypePayoutRelease,
			Reference: p.ID.String(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		p.Status = domain.PayoutFailed
		p.FailureReason = reason
		return tx.Model(&domain.Payout{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"status":         domain.PayoutFailed,
			"failure_reason": reason,
		}).Error
	})
	if err != nil {
		return err
	}

	s.loggerf("level=warn msg=payout failed, funds released payout_id=%s provider_id=%d amount=%d reason=%q", p.ID, p.ProviderID, p.Amount, reason)
	s.notifySettled(ctx, p)
	return nil
}

func (s *Service) notifySettled(ctx context.Context, p *domain.Payout) {
	if s.notifs == nil || s.providers == nil {
		return
	}
	provider, err := s.providers.GetByID(ctx, p.ProviderID)
	if err != nil {
		s.loggerf("level=error msg=payout notification: provider lookup failed provider_id=%d err=%v", p.ProviderID, err)
		return
	}
	_ = s.notifs.PayoutSettled(ctx, provider.UserID, p)
}

func (s *Service) GetPayout(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	var p domain.Payout
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) ListPayouts(ctx context.Context, providerID int64) ([]domain.Payout, error) {
	var out []domain.Payout
	err := s.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (s *Service) ListEntries(ctx context.Context, providerID int64) ([]domain.WalletEntry, error) {
	wallet, err := s.GetOrCreateWallet(ctx, providerID)
	if err != nil {
		return nil, err
	}

	var entries []domain.WalletEntry
	err = s.db.WithContext(ctx).
		Where("wallet_id = ?", wallet.ID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

func (s *Service) getWalletByProviderID(ctx context.Context, providerID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := s.db.WithContext(ctx).Where("provider_id = ?", providerID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func lockWallet(tx *gorm.DB, providerID int64, wallet *domain.Wallet) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("provider_id = ?", providerID).
		First(wallet).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		*wallet = domain.Wallet{ProviderID: providerID}
		if err := tx.Create(wallet).Error; err != nil {
			if isUniqueConstraintError(err) {
				return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("provider_id = ?", providerID).
					First(wallet).Error
			}
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
