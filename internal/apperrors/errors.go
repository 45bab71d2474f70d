package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// Parse error kinds.
var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMalformedCommand = errors.New("malformed command")
)

// ErrNonPositiveAmount is the validation kind raised when an amount is zero or negative.
var ErrNonPositiveAmount = errors.New("amount must be greater than zero")

// ErrStorage indicates that the backing store failed to complete an operation.
var ErrStorage = errors.New("storage failure")

// ParseError reports user input that could not be mapped to a command.
type ParseError struct {
	Kind  error // ErrInvalidAmount or ErrMalformedCommand
	Input string
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("parse error: %v", e.Kind)
	}
	return fmt.Sprintf("parse error: %v: %q", e.Kind, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Kind }

// NewParseError builds a ParseError of the given kind.
func NewParseError(kind error, input string) *ParseError {
	return &ParseError{Kind: kind, Input: input}
}

// ValidationError reports a recognized command carrying an invalid business value.
type ValidationError struct {
	Kind  error
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %v", e.Field, e.Kind)
}

// Unwrap exposes both the kind and the generic ErrValidation sentinel.
func (e *ValidationError) Unwrap() []error { return []error{e.Kind, ErrValidation} }

// NewValidationError builds a ValidationError for field.
func NewValidationError(kind error, field string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field}
}

// StorageError wraps a failure of the backing store. It is never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// NewStorageError wraps err as a StorageError for op.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
