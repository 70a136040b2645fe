package utils

import (
	"errors"
	"fmt"
)

// ValidationError represents an error occurring during data validation.
type ValidationError struct {
	Message string
}

// Error returns the error message string.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with a specific message.
func NewValidationError(message string) error {
	return &ValidationError{
		Message: message,
	}
}

// NewValidationErrorf creates a new ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFoundError indicates a requested entity does not exist. Callers use it
// to distinguish a missing row from a row with empty values.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error returns the error message string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a new NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// MissingPrerequisiteError indicates a required upstream artifact does not
// exist yet (financial data, a score, a feature set, a selectable model).
// It is surfaced to the caller and never retried automatically.
type MissingPrerequisiteError struct {
	Message string
}

// Error returns the error message string.
func (e *MissingPrerequisiteError) Error() string {
	return e.Message
}

// NewMissingPrerequisiteErrorf creates a new MissingPrerequisiteError with a formatted message.
func NewMissingPrerequisiteErrorf(format string, args ...interface{}) error {
	return &MissingPrerequisiteError{
		Message: fmt.Sprintf(format, args...),
	}
}

// IsMissingPrerequisite reports whether err is (or wraps) a MissingPrerequisiteError.
func IsMissingPrerequisite(err error) bool {
	var mp *MissingPrerequisiteError
	return errors.As(err, &mp)
}

// ConflictError indicates an operation was rejected because of the current
// state of the entity, such as resolving an alert that is already resolved.
type ConflictError struct {
	Message string
}

// Error returns the error message string.
func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictErrorf creates a new ConflictError with a formatted message.
func NewConflictErrorf(format string, args ...interface{}) error {
	return &ConflictError{
		Message: fmt.Sprintf(format, args...),
	}
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
