// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"sync"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/session"
)

// SessionStorage implements session.Storage with nested maps.
// Thread-safe for concurrent access. Contents are lost on restart.
type SessionStorage struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
}

// NewSessionStorage creates an empty in-memory storage.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		scopes: make(map[string]map[string]string),
	}
}

// Get returns the value for key in the session's scope.
func (s *SessionStorage) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.scopes[sessionID][key]
	return v, ok, nil
}

// Set writes key in the session's scope.
func (s *SessionStorage) Set(ctx context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope, ok := s.scopes[sessionID]
	if !ok {
		scope = make(map[string]string, 3)
		s.scopes[sessionID] = scope
	}
	scope[key] = value
	return nil
}

// Delete removes keys from the session's scope. An emptied scope is dropped.
func (s *SessionStorage) Delete(ctx context.Context, sessionID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope, ok := s.scopes[sessionID]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(scope, k)
	}
	if len(scope) == 0 {
		delete(s.scopes, sessionID)
	}
	return nil
}

// Close is a no-op.
func (s *SessionStorage) Close() error {
	return nil
}

// Size returns the number of sessions with at least one key.
func (s *SessionStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scopes)
}

// Compile-time interface verification.
var _ session.Storage = (*SessionStorage)(nil)
