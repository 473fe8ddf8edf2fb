package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("authentication required")

	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrPostNotFound    = fmt.Errorf("post %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)

	ErrAlreadyFollowing = fmt.Errorf("%w: already following", ErrConflict)
	ErrNotFollowing     = fmt.Errorf("%w: not following", ErrConflict)
)

// Field error codes reported in a ValidationError.
const (
	CodeRequired         = "required"
	CodeTooLong          = "too_long"
	CodeInvalid          = "invalid"
	CodeUsernameTaken    = "username_taken"
	CodeEmailTaken       = "email_taken"
	CodePasswordMismatch = "password_mismatch"
)

// ValidationError collects field-level input errors. Fields maps a field
// name to one of the Code* constants.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, code string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = code
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns nil when no field errors were added.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// FieldError is a shortcut for a ValidationError with a single field.
func FieldError(field, code string) *ValidationError {
	e := NewValidationError()
	e.Add(field, code)
	return e
}
