package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers translate these into HTTP
// status codes in one place instead of string-matching error text.
var (
	// ErrNotFound means the requested resource does not exist or does not
	// belong to the requesting user.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyProcessed means a state transition was attempted on a
	// verification that is no longer pending.
	ErrAlreadyProcessed = errors.New("verification already processed")

	// ErrLockedField means a write was attempted against an SOP whose
	// payment-sensitive fields are locked.
	ErrLockedField = errors.New("field is locked after payment")

	// ErrPromoExhausted means a promo code hit its usage cap between
	// validation and redemption.
	ErrPromoExhausted = errors.New("promo code usage limit reached")

	// ErrExternalService means an upstream dependency (LLM gateway, object
	// storage) failed; the caller's state was left untouched.
	ErrExternalService = errors.New("external service unavailable")
)

// ValidationError carries a user-facing message for a rejected input. The
// message is safe to return verbatim in API responses.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is a ValidationError and returns it
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
