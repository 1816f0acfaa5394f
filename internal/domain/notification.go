package domain

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotifBookingCreated    NotificationType = "booking_created"
	NotifBookingConfirmed  NotificationType = "booking_confirmed"
	NotifBookingCompleted  NotificationType = "booking_completed"
	NotifBookingCancelled  NotificationType = "booking_cancelled"
	NotifBookingReminder   NotificationType = "booking_reminder"
	NotifPaymentCompleted  NotificationType = "payment_completed"
	NotifPaymentFailed     NotificationType = "payment_failed"
	NotifPayoutCompleted   NotificationType = "payout_completed"
	NotifPayoutFailed      NotificationType = "payout_failed"
	NotifNewReview         NotificationType = "new_review"
	NotifNewMessage        NotificationType = "new_message"
	NotifProviderVerified  NotificationType = "provider_verified"
	NotifProviderRejected  NotificationType = "provider_rejected"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id" gorm:"index:idx_notifications_user_unread"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body,omitempty"`
	Data      json.RawMessage  `json:"data,omitempty" gorm:"type:text"`
	IsRead    bool             `json:"is_read" gorm:"index:idx_notifications_user_unread"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
