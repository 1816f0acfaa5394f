package subscription

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("subscription not found")
	ErrForbidden        = errors.New("access denied")
	ErrServiceNotFound  = errors.New("service not found")
	ErrNotSubscribable  = errors.New("service is not subscription-priced")
	ErrAlreadyActive    = errors.New("an active subscription for this service already exists")
	ErrNotActive        = errors.New("subscription is not active")
	ErrNotPaused        = errors.New("subscription is not paused")
	ErrNoVisitsLeft     = errors.New("no visits remaining in this cycle")
	ErrAlreadyCancelled = errors.New("subscription is already cancelled")
)
