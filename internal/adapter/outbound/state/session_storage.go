package state

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/session"
)

// SessionStorage implements session.Storage on top of a SessionsFile.
// The document is held in memory and rewritten on every change.
type SessionStorage struct {
	mu    sync.RWMutex
	file  *SessionsFile
	state *SessionsDocument
}

// OpenSessionStorage loads the sessions file at path, or starts empty when
// it does not exist yet.
func OpenSessionStorage(path string, logger *slog.Logger) (*SessionStorage, error) {
	file := NewSessionsFile(path, logger)
	if !file.Exists() {
		logger.Info("starting new sessions file", "path", path)
	}
	st, err := file.Read()
	if err != nil {
		return nil, fmt.Errorf("load sessions file: %w", err)
	}
	return &SessionStorage{file: file, state: st}, nil
}

// Get returns the value for key in the session's scope.
func (s *SessionStorage) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.state.Sessions[sessionID].Values[key]
	return v, ok, nil
}

// Set writes key and persists the document before returning.
func (s *SessionStorage) Set(ctx context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.state.Sessions[sessionID]
	values := maps.Clone(entry.Values)
	if values == nil {
		values = make(map[string]string, 3)
	}
	values[key] = value
	return s.commit(sessionID, SessionEntry{Values: values, UpdatedAt: time.Now().UTC()})
}

// Delete removes keys and persists the document before returning.
func (s *SessionStorage) Delete(ctx context.Context, sessionID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.state.Sessions[sessionID]
	if !ok {
		return nil
	}
	values := maps.Clone(entry.Values)
	for _, k := range keys {
		delete(values, k)
	}
	return s.commit(sessionID, SessionEntry{Values: values, UpdatedAt: time.Now().UTC()})
}

// PurgeBefore drops sessions not written since cutoff.
func (s *SessionStorage) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]SessionEntry, len(s.state.Sessions))
	var purged int64
	for id, e := range s.state.Sessions {
		if e.UpdatedAt.Before(cutoff) {
			purged++
			continue
		}
		next[id] = e
	}
	if purged == 0 {
		return 0, nil
	}
	prev := s.state.Sessions
	s.state.Sessions = next
	if err := s.file.Write(s.state); err != nil {
		s.state.Sessions = prev
		return 0, err
	}
	return purged, nil
}

// commit installs entry and saves. On failure the previous entry is restored
// so memory never runs ahead of disk. Caller must hold s.mu.
func (s *SessionStorage) commit(sessionID string, entry SessionEntry) error {
	prev, had := s.state.Sessions[sessionID]
	if len(entry.Values) == 0 {
		delete(s.state.Sessions, sessionID)
	} else {
		s.state.Sessions[sessionID] = entry
	}

	if err := s.file.Write(s.state); err != nil {
		if had {
			s.state.Sessions[sessionID] = prev
		} else {
			delete(s.state.Sessions, sessionID)
		}
		return fmt.Errorf("save sessions file: %w", err)
	}
	return nil
}

// Close is a no-op; every change is already on disk.
func (s *SessionStorage) Close() error {
	return nil
}

// Compile-time interface verification.
var _ session.Storage = (*SessionStorage)(nil)
