package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation error")

	// ErrInvalidState is returned when an operation does not fit the
	// lifecycle state of its target (cancelling a used check, authorising
	// an expense without an amount).
	ErrInvalidState = errors.New("invalid state")

	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrStorage wraps failures of the underlying store.
	ErrStorage = errors.New("storage failure")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func invalidState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
}

func storageError(action string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", action, ErrStorage, err)
}
