package domain

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleProvider UserRole = "provider"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email" validate:"required,email"`
	PasswordHash  string    `json:"-"`
	Role          UserRole  `json:"role"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	PhoneVerified bool      `json:"phone_verified"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	OAuthProvider string    `json:"-" gorm:"column:oauth_provider"`
	OAuthID       string    `json:"-" gorm:"column:oauth_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
