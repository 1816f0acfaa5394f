package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EntryTypeEarning       = "EARNING"
	EntryTypePayoutHold    = "PAYOUT_HOLD"
	EntryTypePayoutSettle  = "PAYOUT_SETTLE"
	EntryTypePayoutRelease = "PAYOUT_RELEASE"
)

// Wallet is the per-provider ledger. All amounts are in pesewas.
// Invariant: every mutation keeps balance, pending_balance and
// total_withdrawn consistent; funds only move between the three.
type Wallet struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProviderID     int64     `json:"provider_id" gorm:"not null;uniqueIndex"`
	Balance        int64     `json:"balance" gorm:"not null;default:0"`
	PendingBalance int64     `json:"pending_balance" gorm:"not null;default:0"`
	TotalEarned    int64     `json:"total_earned" gorm:"not null;default:0"`
	TotalWithdrawn int64     `json:"total_withdrawn" gorm:"not null;default:0"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Wallet) TableName() string { return "wallets" }

func (w *Wallet) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// WalletEntry records a single wallet mutation for audit.
type WalletEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	WalletID  uuid.UUID `json:"wallet_id" gorm:"type:uuid;not null;index"`
	Amount    int64     `json:"amount" gorm:"not null"`
	Type      string    `json:"type" gorm:"type:varchar(16);not null;index"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (WalletEntry) TableName() string { return "wallet_entries" }

func (e *WalletEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "pending"
	PayoutProcessing PayoutStatus = "processing"
	PayoutCompleted  PayoutStatus = "completed"
	PayoutFailed     PayoutStatus = "failed"
)

// Payout is a provider withdrawal request. While pending/processing the
// amount is held in the wallet's pending balance; completion moves it to
// total_withdrawn, failure returns it to balance.
type Payout struct {
	ID               uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	ProviderID       int64         `json:"provider_id" gorm:"not null;index"`
	Amount           int64         `json:"amount" gorm:"not null"`
	Method           PaymentMethod `json:"method"`
	RecipientPhone   string        `json:"recipient_phone,omitempty"`
	RecipientAccount string        `json:"recipient_account,omitempty"`
	RecipientBank    string        `json:"recipient_bank,omitempty"`
	Status           PayoutStatus  `json:"status" gorm:"index"`
	FailureReason    string        `json:"failure_reason,omitempty"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (Payout) TableName() string { return "payouts" }

func (p *Payout) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
