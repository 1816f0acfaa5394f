package payment

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("payment not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrForbidden          = errors.New("access denied")
	ErrAlreadyPaid        = errors.New("booking is already paid")
	ErrUnsupportedMethod  = errors.New("unsupported payment method")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)
