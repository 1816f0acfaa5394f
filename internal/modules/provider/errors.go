package provider

import "errors"

var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("provider not found")
	ErrAlreadyExists  = errors.New("provider profile already exists")
	ErrUploadFailed   = errors.New("document upload failed")
	ErrInvalidStatus  = errors.New("invalid verification status")
	ErrMissingProfile = errors.New("provider profile not found")
)
