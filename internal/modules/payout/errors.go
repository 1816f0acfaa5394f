package payout

import "errors"

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrInvalidCommission = errors.New("commission rate must be between 0 and 1")
	ErrMissingRecipient  = errors.New("missing recipient details for payout method")
	ErrUnsupportedMethod = errors.New("unsupported payout method")
	ErrNotFound          = errors.New("payout not found")
)
