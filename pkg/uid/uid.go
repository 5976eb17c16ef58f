package uid

import (
	"strings"

	"github.com/google/uuid"
)

// tempPrefix marks identifiers generated locally while the backend is
// unreachable. The backend replaces them with authoritative ids.
const tempPrefix = "temp_"

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// NewTemp generates a temporary identifier for records created offline.
func NewTemp() string {
	return tempPrefix + uuid.New().String()
}

// IsTemp reports whether id is a locally-generated temporary identifier.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, tempPrefix)
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(strings.TrimPrefix(id, tempPrefix))
	return err == nil
}
