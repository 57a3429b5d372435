package sessions

import "errors"

var (
	// ErrNotFound indicates a missing or expired session.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidInput indicates rejected login or signup input.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError carries the message shown next to the login/signup form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
