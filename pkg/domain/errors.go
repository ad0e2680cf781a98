package domain

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrBackendUnavailable is reported by a remote probe that failed
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrRecordNotFound is returned by lookups whose target does not exist
	ErrRecordNotFound = errors.New("record not found")
	// ErrValidation marks malformed input rejected at the boundary
	ErrValidation = errors.New("validation failed")
	// ErrSerialization marks a persisted blob that could not be decoded
	ErrSerialization = errors.New("corrupt persisted blob")
	// ErrInvalidCollection marks a collection name that cannot be used as a key or table
	ErrInvalidCollection = errors.New("invalid collection name")
)

// ValidationError describes a single rejected field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a ValidationError
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

var collectionNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateCollectionName checks that name is usable as a storage key and a table name
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidCollection)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q must contain only letters, digits and underscores", ErrInvalidCollection, name)
	}
	return nil
}
