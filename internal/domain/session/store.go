package session

import (
	"context"
	"errors"
)

// Storage is the durable key/value storage of session scopes. Values written
// by one scope are never visible to another.
// Implementations: in-memory, sqlite, JSON file.
type Storage interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, sessionID, key string) (value string, ok bool, err error)

	// Set writes key. The write is durable when Set returns.
	Set(ctx context.Context, sessionID, key, value string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, sessionID string, keys ...string) error

	// Close releases the storage.
	Close() error
}

// ErrSessionNotFound is returned when a session doesn't exist or is expired.
var ErrSessionNotFound = errors.New("session not found")
