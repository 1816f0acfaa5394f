package domain

import "time"

// Settings is the single-row platform configuration. CommissionRate is a
// fraction in [0,1] taken from each completed payment before crediting
// the provider wallet.
type Settings struct {
	ID             int64     `json:"id"`
	CommissionRate float64   `json:"commission_rate" gorm:"not null;default:0.15"`
	SupportEmail   string    `json:"support_email,omitempty"`
	SupportPhone   string    `json:"support_phone,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Settings) TableName() string { return "settings" }

func DefaultSettings() *Settings {
	return &Settings{ID: 1, CommissionRate: 0.15}
}
