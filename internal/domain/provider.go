package domain

import "time"

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Provider extends a User with role=provider. Verification status is
// mutated only through admin actions.
type Provider struct {
	ID                 int64              `json:"id"`
	UserID             int64              `json:"user_id" gorm:"uniqueIndex"`
	Category           string             `json:"category"`
	Location           string             `json:"location"`
	Bio                string             `json:"bio,omitempty" gorm:"type:text"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	Rating             float64            `json:"rating"`
	ReviewCount        int                `json:"review_count"`
	ServiceAreas       []string           `json:"service_areas,omitempty" gorm:"serializer:json"`
	Skills             []string           `json:"skills,omitempty" gorm:"serializer:json"`
	VerificationDocs   []string           `json:"verification_docs,omitempty" gorm:"serializer:json"`
	RejectedReason     string             `json:"rejected_reason,omitempty"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`
	VerifiedBy         *int64             `json:"verified_by,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
