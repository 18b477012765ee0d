package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed or forbidden input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a domain or record missing from the tenant scope.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a record type exclusivity or uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized marks a missing or unverifiable credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks a credential lacking the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrUpstreamResolution marks a failed DNS lookup.
	ErrUpstreamResolution = errors.New("upstream resolution failed")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError returns a *ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports a record that cannot coexist with the records already
// stored under the same owner name.
type ConflictError struct {
	Name     string
	Type     RecordType
	Existing []RecordType
	Reason   string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	existing := make([]string, 0, len(e.Existing))
	for _, t := range e.Existing {
		existing = append(existing, string(t))
	}
	return fmt.Sprintf("%s record %q conflicts with existing %s record(s)",
		e.Type, e.Name, strings.Join(existing, ", "))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
