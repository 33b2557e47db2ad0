package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing hotels, bookings, users and profiles.
	ErrNotFound = errors.New("not found")

	// ErrAuthRequired marks operations that need an authenticated session.
	// The HTTP layer maps it to 401 so clients can redirect to sign-in.
	ErrAuthRequired = errors.New("authentication required")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError is blocked client-side of the backend: it never reaches
// the records store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func Validation(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FetchError reports an unreachable catalog backend or a non-success status.
// A zero-result listing is a valid empty list, never a FetchError.
type FetchError struct {
	Status int // 0 when the backend was unreachable
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog fetch failed: status %d", e.Status)
	}
	return fmt.Sprintf("catalog fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
