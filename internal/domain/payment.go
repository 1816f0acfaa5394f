package domain

import "time"

type PaymentMethod string

const (
	MethodCard            PaymentMethod = "card"
	MethodWallet          PaymentMethod = "wallet"
	MethodBankTransfer    PaymentMethod = "bank_transfer"
	MethodMTNMomo         PaymentMethod = "mtn_momo"
	MethodVodafoneCash    PaymentMethod = "vodafone_cash"
	MethodAirtelTigoMoney PaymentMethod = "airteltigo_money"
)

func (m PaymentMethod) IsMobileMoney() bool {
	return m == MethodMTNMomo || m == MethodVodafoneCash || m == MethodAirtelTigoMoney
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
)

// Payment tracks a single charge attempt against a booking.
// Status is monotonic: once completed it never regresses.
// Amount is in pesewas.
type Payment struct {
	ID               int64         `json:"id"`
	BookingID        int64         `json:"booking_id" gorm:"index"`
	Reference        string        `json:"reference" gorm:"uniqueIndex"`
	Amount           int64         `json:"amount"`
	Method           PaymentMethod `json:"method"`
	Status           PaymentStatus `json:"status"`
	TransactionID    string        `json:"transaction_id,omitempty" gorm:"index"`
	AuthorizationURL string        `json:"authorization_url,omitempty"`
	FailureReason    string        `json:"failure_reason,omitempty"`
	RawWebhook       string        `json:"-" gorm:"type:text"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	Booking *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}
