package catalog

import "errors"

var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("service not found")
	ErrForbidden           = errors.New("access denied")
	ErrProviderNotFound    = errors.New("provider profile not found")
	ErrActiveSubscriptions = errors.New("service has active subscriptions")
)
