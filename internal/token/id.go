package token

import "github.com/google/uuid"

// NewID returns a process-unique token identifier.
func NewID() string {
	return uuid.NewString()
}
