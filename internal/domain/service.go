package domain

import "time"

type PricingModel string

const (
	PricingPayAsYouGo   PricingModel = "pay_as_you_go"
	PricingSubscription PricingModel = "subscription"
)

type BillingCycle string

const (
	BillingWeekly    BillingCycle = "weekly"
	BillingMonthly   BillingCycle = "monthly"
	BillingQuarterly BillingCycle = "quarterly"
)

// Service is offered by a Provider. All money amounts are in pesewas.
// A service with active subscriptions cannot be deleted.
type Service struct {
	ID             int64        `json:"id"`
	ProviderID     int64        `json:"provider_id" validate:"required"`
	Name           string       `json:"name" validate:"required"`
	Description    string       `json:"description,omitempty" gorm:"type:text"`
	PricingModel   PricingModel `json:"pricing_model"`
	BasePrice      int64        `json:"base_price"`
	MonthlyPrice   int64        `json:"monthly_price,omitempty"`
	BillingCycle   BillingCycle `json:"billing_cycle,omitempty"`
	VisitsPerCycle int          `json:"visits_per_cycle,omitempty"`
	IsActive       bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	Provider *Provider `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
}
