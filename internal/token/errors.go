package token

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a token, theme or collection id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation wraps every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateTheme is returned when a theme name is already in use.
	ErrDuplicateTheme = errors.New("duplicate theme name")

	// ErrSystemTheme is returned when deleting the system theme.
	ErrSystemTheme = errors.New("system theme cannot be deleted")
)

// ValidationError describes a rejected field. Nothing is mutated when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
