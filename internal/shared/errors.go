package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when the CSRF token is missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrValidation marks input the domain layer rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden marks an operation the current user may not perform.
	ErrForbidden = errors.New("forbidden")
)

// Validation wraps msg with ErrValidation so callers can match it
// with errors.Is.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// UserSafeMessage converts an error into text safe to show a client.
// Wrapped validation and not-found errors keep their message; anything
// else collapses to a generic one.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrForbidden):
		return err.Error()
	default:
		return "something went wrong, please try again"
	}
}
