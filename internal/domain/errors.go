package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNoSession      = errors.New("no session")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrCheckout       = errors.New("checkout failed")
	ErrBadSignature   = errors.New("invalid webhook signature")
	ErrUnhandledEvent = errors.New("event type known but not handled")
)

// ValidationError reports bad member or plan input. It is surfaced to the
// user inline, unlike external failures which stay server-side.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
