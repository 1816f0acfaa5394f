package catalog

type CreateServiceRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	PricingModel   string `json:"pricing_model" binding:"required"`
	BasePrice      int64  `json:"base_price"`
	MonthlyPrice   int64  `json:"monthly_price"`
	BillingCycle   string `json:"billing_cycle"`
	VisitsPerCycle int    `json:"visits_per_cycle"`
}

type UpdateServiceRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	BasePrice      *int64  `json:"base_price"`
	MonthlyPrice   *int64  `json:"monthly_price"`
	VisitsPerCycle *int    `json:"visits_per_cycle"`
	IsActive       *bool   `json:"is_active"`
}
