package resumes

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates access is not allowed.
	ErrForbidden = errors.New("forbidden")
)

// MissingFieldError names the first required field left empty.
type MissingFieldError struct {
	Key   string
	Label string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Please enter your %s", lowerLabel(e.Label))
}

func (e *MissingFieldError) Unwrap() error { return ErrInvalidInput }

// PhotoError rejects an uploaded photo.
type PhotoError struct {
	Message string
}

func (e *PhotoError) Error() string { return e.Message }

func (e *PhotoError) Unwrap() error { return ErrInvalidInput }
