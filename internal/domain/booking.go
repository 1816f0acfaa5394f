package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// CanTransitionTo enforces the booking state machine:
// pending -> confirmed|cancelled, confirmed -> completed|cancelled.
// Completed and cancelled are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCompleted || next == BookingCancelled
	default:
		return false
	}
}

type BookingPaymentStatus string

const (
	BookingPaymentUnpaid     BookingPaymentStatus = "unpaid"
	BookingPaymentPending    BookingPaymentStatus = "pending"
	BookingPaymentProcessing BookingPaymentStatus = "processing"
	BookingPaymentCompleted  BookingPaymentStatus = "completed"
	BookingPaymentFailed     BookingPaymentStatus = "failed"
)

// Booking links a customer and a provider for a scheduled service visit.
// Amount is in pesewas. PaymentStatus tracks the payment lifecycle
// independently of the booking status.
type Booking struct {
	ID                 int64                `json:"id"`
	UserID             int64                `json:"user_id" validate:"required"`
	ProviderID         int64                `json:"provider_id" validate:"required"`
	ServiceID          *int64               `json:"service_id,omitempty"`
	ServiceType        string               `json:"service_type"`
	ScheduledAt        time.Time            `json:"scheduled_at" validate:"required"`
	Address            string               `json:"address,omitempty"`
	Notes              string               `json:"notes,omitempty" gorm:"type:text"`
	Amount             int64                `json:"amount"`
	Status             BookingStatus        `json:"status"`
	PaymentStatus      BookingPaymentStatus `json:"payment_status"`
	PaymentMethod      string               `json:"payment_method,omitempty"`
	CancellationReason string               `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CancelledAt        *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`

	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Provider *Provider `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
}
