package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitquest/internal/logger"
)

var (
	// ErrValidation is matched by every ValidationError
	ErrValidation = stderrors.New("validation failed")
	// ErrNotFound is returned when a habit or badge id is unknown
	ErrNotFound = stderrors.New("not found")
	// ErrPersistence is matched by every PersistenceError
	ErrPersistence = stderrors.New("persistence failed")
)

// ValidationError reports invalid caller input. The operation is aborted with no state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidation builds a ValidationError
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError reports a snapshot that could not be read or written.
type PersistenceError struct {
	Op  string // "load" or "save"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s snapshot %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// NotFoundf wraps ErrNotFound with a formatted message
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
