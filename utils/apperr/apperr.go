package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the scoring engine. Services wrap them with
// context; handlers map them onto HTTP responses with errors.Is.
var (
	// ErrValidation marks malformed input rejected before any remote call.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence marks a failed remote write. Multi-step operations
	// do not compensate earlier writes when a later one fails.
	ErrPersistence = errors.New("persistence failed")
	// ErrFetch marks a failed remote read.
	ErrFetch = errors.New("fetch failed")
	// ErrNotFound marks an absent record. The summary flow uses it to
	// trigger creation rather than treating it as fatal.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write that would violate a uniqueness
	// invariant, like a second evaluation for an already-evaluated
	// (classroom, cycle, area) scope.
	ErrConflict = errors.New("conflict")
)

// Validation wraps a message as a validation error.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Persistence wraps err as a persistence error.
func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// Fetch wraps err as a fetch error.
func Fetch(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrFetch, op, err)
}

// NotFound wraps a message as a not-found error.
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflict wraps a message as a conflict error.
func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
