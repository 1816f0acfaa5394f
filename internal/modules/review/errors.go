package review

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("review not found")
	ErrForbidden          = errors.New("access denied")
	ErrProviderNotFound   = errors.New("provider not found")
	ErrBookingNotEligible = errors.New("booking is not eligible for review")
	ErrAlreadyReviewed    = errors.New("booking has already been reviewed")
	ErrAlreadyResponded   = errors.New("review already has a response")
)
