package types

import "github.com/google/uuid"

// NewID generates a UUID v7 string for entities whose identifier is not
// supplied by the caller.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
