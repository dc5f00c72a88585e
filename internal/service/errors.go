package service

import (
	"errors"
	"fmt"
	"strings"
)

// --- Error Definitions ---
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	// ErrConflict is reserved for uniqueness violations; completions are
	// upserts and never conflict.
	ErrConflict          = errors.New("conflict")
	ErrPersistence       = errors.New("persistence failure")
	ErrExportUnavailable = errors.New("program export is not configured")
)

// ValidationError lists every problem found in a request. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(problems ...string) error {
	return &ValidationError{Problems: problems}
}

var errNoProgram = fmt.Errorf("%w: no active program", ErrNotFound)

// persistenceError hides the storage failure behind ErrPersistence while
// keeping it in the chain for logging.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
