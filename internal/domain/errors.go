package domain

import "errors"

var (
	// ErrValidation - missing or malformed input, caller must re-prompt
	ErrValidation = errors.New("validation failed")
	// ErrNotFound - referenced entity is absent
	ErrNotFound = errors.New("not found")
	// ErrAuth - identity verification failed, no session is created
	ErrAuth = errors.New("authentication failed")
	// ErrTransientStore - persistence operation failed, safe to retry by hand
	ErrTransientStore = errors.New("store operation failed")
	// ErrConfirmationRequired - transition into Paid was not confirmed
	ErrConfirmationRequired = errors.New("confirmation required")
)
