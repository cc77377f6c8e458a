package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the request/response taxonomy. Services return these
// (possibly wrapped); handlers map them to HTTP statuses.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrDuplicate    = errors.New("duplicate value")
)

// Error pairs one of the sentinel kinds with the human-readable message the
// handler returns to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// E builds a sentinel-kinded error with a client-facing message.
func E(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// DuplicateError reports a unique-constraint violation with the conflicting
// field name extracted from the storage layer's duplicate-key signal.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// Is makes DuplicateError match ErrDuplicate under errors.Is.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
