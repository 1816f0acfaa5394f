package domain

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Subscription is a recurring-billing relationship between a customer and
// a provider's subscription-priced service. NextBillingDate is always
// derived from the service's billing cycle, at creation and on renewal.
type Subscription struct {
	ID              int64              `json:"id"`
	UserID          int64              `json:"user_id" gorm:"index"`
	ServiceID       int64              `json:"service_id" gorm:"index"`
	ProviderID      int64              `json:"provider_id" gorm:"index"`
	Status          SubscriptionStatus `json:"status"`
	NextBillingDate time.Time          `json:"next_billing_date"`
	VisitsUsed      int                `json:"visits_used"`
	VisitsRemaining int                `json:"visits_remaining"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`

	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

// NextBilling returns now advanced by one billing cycle.
func NextBilling(cycle BillingCycle, from time.Time) time.Time {
	switch cycle {
	case BillingWeekly:
		return from.AddDate(0, 0, 7)
	case BillingQuarterly:
		return from.AddDate(0, 3, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}
