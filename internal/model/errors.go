package model

import "errors"

// ErrUserNotFound is returned when a user is not found in the store.
var ErrUserNotFound = errors.New("user not found")

// ValidationError reports invalid input for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
