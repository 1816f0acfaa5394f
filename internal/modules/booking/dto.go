package booking

import "time"

type CreateBookingRequest struct {
	ProviderID  int64     `json:"provider_id" binding:"required"`
	ServiceID   *int64    `json:"service_id"`
	ServiceType string    `json:"service_type"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Address     string    `json:"address"`
	Notes       string    `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}
