package types

import (
	"errors"
	"fmt"

	"github.com/blockberries/bulk-keychain/crypto"
)

var (
	// ErrDecode indicates malformed base58, a bad byte length, or a keypair
	// whose embedded public key does not match its seed
	ErrDecode = crypto.ErrDecode

	// ErrValidation indicates a missing required field or an invalid value
	ErrValidation = errors.New("validation error")

	// ErrEncoding indicates the canonical encoder was handed something it cannot encode.
	// It is unreachable for validated actions.
	ErrEncoding = errors.New("encoding error")

	// ErrSigning indicates the signing primitive or an external signer failed
	ErrSigning = crypto.ErrSigning
)

// ValidationError names the offending input field. It satisfies
// errors.Is(err, ErrValidation).
type ValidationError struct {
	// Field is the field path in input vocabulary, e.g. "order.price".
	Field string

	// Reason describes what is wrong with the field.
	Reason string
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// requiredError is the error for a missing required field.
func requiredError(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
