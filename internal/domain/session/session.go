package session

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var idPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// GenerateSessionID creates a random (v4) session ID.
func GenerateSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return id.String(), nil
}

// ValidID reports whether id has the shape produced by GenerateSessionID.
// Cookies carrying anything else are ignored.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
