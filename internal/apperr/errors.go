// Package apperr defines the domain error kinds the service surfaces to
// clients. Handlers map each kind to a stable HTTP status; anything that
// does not match one of these is an internal failure and must stay a 500.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers malformed or unknown input, e.g. an unknown
	// catalog item or a non-positive quantity.
	ErrValidation = errors.New("validation failed")

	// ErrAuthorization means the requester lacks permission for the
	// resource or operation.
	ErrAuthorization = errors.New("not authorized")

	// ErrNotFound means the referenced order or resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means an illegal state transition, including losing a
	// concurrent update race. The caller may re-read and retry; the
	// service never retries on its own.
	ErrConflict = errors.New("conflict")

	// ErrSignature means a payment confirmation failed verification.
	// Always fails closed: order state is never advanced.
	ErrSignature = errors.New("invalid signature")
)

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
