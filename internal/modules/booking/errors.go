package booking

import "errors"

var (
	ErrValidation              = errors.New("validation error")
	ErrNotFound                = errors.New("booking not found")
	ErrForbidden               = errors.New("forbidden")
	ErrProviderNotFound        = errors.New("provider not found")
	ErrProviderNotVerified     = errors.New("provider is not verified")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
