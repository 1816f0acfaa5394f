package domain

import "time"

// Review belongs to a provider and a user. When tied to a completed
// booking of the same user it is marked verified. A provider may leave
// at most one response.
type Review struct {
	ID               int64      `json:"id"`
	ProviderID       int64      `json:"provider_id" gorm:"index"`
	UserID           int64      `json:"user_id"`
	BookingID        *int64     `json:"booking_id,omitempty"`
	Rating           int        `json:"rating" validate:"required,gte=1,lte=5"`
	Comment          string     `json:"comment,omitempty" gorm:"type:text"`
	ProviderResponse *string    `json:"provider_response,omitempty"`
	RespondedAt      *time.Time `json:"responded_at,omitempty"`
	IsVerified       bool       `json:"is_verified"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
