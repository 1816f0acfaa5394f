package chat

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("conversation not found")
	ErrForbidden        = errors.New("access denied")
	ErrProviderNotFound = errors.New("provider not found")
)
