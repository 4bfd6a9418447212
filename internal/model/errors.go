package model

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidTransitionError is returned when an operation is attempted from a
// status that does not permit it. It carries enough context for the caller
// to decide on a retry or escalation.
type InvalidTransitionError struct {
	Source    SourceType
	Current   string
	Operation Operation
	Allowed   []string
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s: operation %q not permitted in status %q", e.Source, e.Operation, e.Current)
	}
	return fmt.Sprintf("%s: operation %q not permitted in status %q (requires %s)",
		e.Source, e.Operation, e.Current, strings.Join(e.Allowed, "|"))
}

// IsInvalidTransition reports whether err is an InvalidTransitionError
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// ValidationError collects all input violations before failing
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// Violation appends a violation and returns the error for chaining
func (e *ValidationError) Violation(format string, args ...interface{}) *ValidationError {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
	return e
}

// HasViolations reports whether any violations were collected
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// NewValidationError creates an empty violation collector
func NewValidationError() *ValidationError {
	return &ValidationError{}
}
