package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/gql"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/session"
)

// DefaultCleanupInterval is how often expired scopes are evicted.
const DefaultCleanupInterval = 1 * time.Minute

// storagePurger is implemented by durable drivers that can drop old sessions.
type storagePurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionManagerConfig configures a SessionManager.
type SessionManagerConfig struct {
	// Timeout is the idle time before an in-memory scope is evicted.
	// Its durable storage is kept and restored on the next request.
	Timeout time.Duration
	// Retention is how long untouched durable storage is kept. Zero keeps it
	// forever.
	Retention time.Duration
	// CleanupInterval defaults to DefaultCleanupInterval.
	CleanupInterval time.Duration
}

// SessionManager holds the live client scopes keyed by session ID.
type SessionManager struct {
	storage   session.Storage
	directory *DirectoryService
	factory   gql.ClientFactory
	policy    BindingPolicy
	events    *EventHub
	logger    *slog.Logger
	cfg       SessionManagerConfig

	mu     sync.Mutex
	scopes map[string]*Scope

	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(storage session.Storage, directory *DirectoryService, factory gql.ClientFactory,
	policy BindingPolicy, events *EventHub, logger *slog.Logger, cfg SessionManagerConfig) *SessionManager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = session.DefaultTimeout
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	return &SessionManager{
		storage:   storage,
		directory: directory,
		factory:   factory,
		policy:    policy,
		events:    events,
		logger:    logger,
		cfg:       cfg,
		scopes:    make(map[string]*Scope),
		stopChan:  make(chan struct{}),
	}
}

// Acquire returns the scope for id, creating it when it is not live. An
// invalid or empty id gets a new session; created reports that case so the
// caller can set the session cookie.
func (m *SessionManager) Acquire(id string) (scope *Scope, created bool, err error) {
	if !session.ValidID(id) {
		id, err = session.GenerateSessionID()
		if err != nil {
			return nil, false, err
		}
		created = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sc, ok := m.scopes[id]; ok && !sc.Session.IsExpired() {
		sc.touch(m.cfg.Timeout)
		return sc, created, nil
	} else if ok {
		sc.close()
	}

	sc := m.newScope(id)
	m.scopes[id] = sc
	return sc, created, nil
}

// Lookup returns a live scope without creating one.
func (m *SessionManager) Lookup(id string) (*Scope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sc, ok := m.scopes[id]
	if !ok || sc.Session.IsExpired() {
		return nil, false
	}
	sc.touch(m.cfg.Timeout)
	return sc, true
}

// Count returns the number of live scopes.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scopes)
}

func (m *SessionManager) newScope(id string) *Scope {
	now := time.Now().UTC()
	rebinder := NewRebinder(m.factory, m.logger,
		WithSessionStorage(id, m.storage),
		WithEvents(m.events),
	)
	return &Scope{
		Session: session.Session{
			ID:         id,
			CreatedAt:  now,
			LastAccess: now,
			ExpiresAt:  now.Add(m.cfg.Timeout),
		},
		Selection: NewSelectionState(id, m.storage, m.directory, rebinder, m.policy, m.logger),
		Client:    rebinder,
		storage:   m.storage,
		policy:    m.policy,
	}
}

// StartCleanup starts the background goroutine evicting expired scopes.
// Call Stop() to stop it gracefully.
func (m *SessionManager) StartCleanup(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopChan:
				return
			case <-ticker.C:
				m.cleanup(ctx)
			}
		}
	}()
}

// cleanup evicts expired scopes and purges storage past retention.
func (m *SessionManager) cleanup(ctx context.Context) {
	m.mu.Lock()
	evicted := 0
	for id, sc := range m.scopes {
		if sc.Session.IsExpired() {
			sc.close()
			delete(m.scopes, id)
			evicted++
		}
	}
	m.mu.Unlock()

	if evicted > 0 {
		m.logger.Debug("evicted idle session scopes", "count", evicted)
	}

	if p, ok := m.storage.(storagePurger); ok && m.cfg.Retention > 0 {
		if _, err := p.PurgeBefore(ctx, time.Now().Add(-m.cfg.Retention)); err != nil {
			m.logger.Warn("session storage purge failed", "error", err)
		}
	}
}

// Stop stops the cleanup goroutine, waits for it, and closes every scope's
// client. Safe to call multiple times.
func (m *SessionManager) Stop() {
	m.once.Do(func() {
		close(m.stopChan)
	})
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sc := range m.scopes {
		sc.close()
		delete(m.scopes, id)
	}
}
