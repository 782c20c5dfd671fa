package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrRateLimited            = errors.New("rate limit exceeded")

	// ErrConcurrencyConflict is returned by optimistic writes whose version check matched no row.
	ErrConcurrencyConflict = errors.New("concurrency error, no rows were affected")
)

// ToolError ties an error to the tool that caused it.
type ToolError struct {
	ToolID int32
	Err    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %d: %v", e.ToolID, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps ErrValidation with a message.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewNotFoundError wraps ErrNotFound with the kind and id of the missing entity.
func NewNotFoundError(kind string, id int32) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}

// NewConflictError wraps ErrConflict with a message.
func NewConflictError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
