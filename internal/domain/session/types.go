// Package session models browser session scopes: the client-side execution
// environment whose durable storage survives page reloads.
package session

import "time"

// Durable storage keys. Absent means "not set".
const (
	// KeySelectedStore holds the JSON-encoded selected store.
	KeySelectedStore = "selectedStore"
	// KeyEndpoint holds the last endpoint the query client was bound to.
	KeyEndpoint = "graphql_endpoint"
	// KeyPinnedEndpoint holds a manual endpoint override.
	KeyPinnedEndpoint = "graphql_endpoint_pinned"
)

// DefaultTimeout is the default idle timeout of an in-memory scope.
const DefaultTimeout = 30 * time.Minute

// Session tracks one browser's scope.
type Session struct {
	// ID is the value of the session cookie.
	ID string
	// CreatedAt is when the scope was first seen (UTC).
	CreatedAt time.Time
	// ExpiresAt is when the in-memory scope is evicted (UTC).
	ExpiresAt time.Time
	// LastAccess is the last time the scope was used (UTC).
	LastAccess time.Time
}

// IsExpired checks if the session has exceeded its timeout.
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// Refresh updates LastAccess and extends ExpiresAt by the given duration.
func (s *Session) Refresh(timeout time.Duration) {
	now := time.Now().UTC()
	s.LastAccess = now
	s.ExpiresAt = now.Add(timeout)
}
