package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/session"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

// CookieSink receives the selectedStore cookie writes of the current request.
type CookieSink interface {
	SetSelectedStore(s store.Store)
	ClearSelectedStore()
}

// NopCookieSink discards cookie writes.
type NopCookieSink struct{}

// SetSelectedStore implements CookieSink.
func (NopCookieSink) SetSelectedStore(store.Store) {}

// ClearSelectedStore implements CookieSink.
func (NopCookieSink) ClearSelectedStore() {}

// SelectionSnapshot is a read-only view of a session's selection.
type SelectionSnapshot struct {
	Selected  *store.Store    `json:"selectedStore"`
	Available []store.Store   `json:"availableStores"`
	Loading   bool            `json:"isLoading"`
	LastError string          `json:"lastError,omitempty"`
	Directory DirectoryStatus `json:"directory"`
}

// SelectionState is the Store Selection State of one session scope. Every
// change is persisted to durable storage and the cookie before the matching
// rebind becomes visible.
type SelectionState struct {
	sessionID string
	storage   session.Storage
	directory *DirectoryService
	rebinder  *Rebinder
	policy    BindingPolicy
	logger    *slog.Logger

	// mu serializes selection changes; snapshot reads use stateMu.
	mu       sync.Mutex
	stateMu  sync.RWMutex
	selected *store.Store
	loading  bool
	lastErr  error
}

// NewSelectionState creates an empty selection for a session.
func NewSelectionState(sessionID string, storage session.Storage, directory *DirectoryService,
	rebinder *Rebinder, policy BindingPolicy, logger *slog.Logger) *SelectionState {
	return &SelectionState{
		sessionID: sessionID,
		storage:   storage,
		directory: directory,
		rebinder:  rebinder,
		policy:    policy,
		logger:    logger,
	}
}

// SelectBySlug selects the directory's store for slug. Selecting the store
// that is already selected does nothing. An unknown slug returns
// store.ErrStoreNotFound and leaves the state unchanged.
func (s *SelectionState) SelectBySlug(ctx context.Context, sink CookieSink, slug string) (store.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.Selected(); cur != nil && cur.Slug == slug {
		return *cur, nil
	}

	s.setLoading(true)
	d, err := s.directory.Stores(ctx, false)
	s.setLoading(false)
	if err != nil {
		s.setErr(err)
		return store.Store{}, err
	}
	st, ok := d.Find(slug)
	if !ok {
		err := fmt.Errorf("%w: %s", store.ErrStoreNotFound, slug)
		s.setErr(err)
		return store.Store{}, err
	}
	return st, s.selectLocked(ctx, sink, st)
}

// SelectByRecord selects s without a directory lookup.
func (s *SelectionState) SelectByRecord(ctx context.Context, sink CookieSink, st store.Store) error {
	if !st.Valid() {
		return fmt.Errorf("select store %q: missing slug or endpoint", st.Slug)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.Selected(); cur != nil && cur.Slug == st.Slug {
		return nil
	}
	return s.selectLocked(ctx, sink, st)
}

// Reset clears the selection, its storage keys and cookie, and drops the
// binding.
func (s *SelectionState) Reset(ctx context.Context, sink CookieSink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.sessionID,
		session.KeySelectedStore, session.KeyEndpoint, session.KeyPinnedEndpoint); err != nil {
		return fmt.Errorf("clear selection storage: %w", err)
	}
	sink.ClearSelectedStore()

	s.stateMu.Lock()
	s.selected = nil
	s.lastErr = nil
	s.stateMu.Unlock()

	s.rebinder.Drop(ctx)
	s.logger.Info("store selection reset", "session_id", s.sessionID)
	return nil
}

// Selected returns a copy of the selected store, or nil.
func (s *SelectionState) Selected() *store.Store {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	if s.selected == nil {
		return nil
	}
	cp := *s.selected
	return &cp
}

// Snapshot returns the current selection together with the cached directory.
func (s *SelectionState) Snapshot() SelectionSnapshot {
	snap := SelectionSnapshot{
		Selected:  s.Selected(),
		Available: s.directory.Cached().Stores(),
		Directory: s.directory.Status(),
	}
	if snap.Available == nil {
		snap.Available = []store.Store{}
	}

	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	snap.Loading = s.loading
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

// restore reads the persisted record. A corrupt record is deleted and
// reported as store.ErrPersistenceCorrupt; an absent one returns ok=false.
func (s *SelectionState) restore(ctx context.Context) (st store.Store, ok bool, err error) {
	raw, ok, err := s.storage.Get(ctx, s.sessionID, session.KeySelectedStore)
	if err != nil || !ok {
		return store.Store{}, false, err
	}
	st, err = store.DecodeRecord(raw)
	if err != nil {
		if delErr := s.storage.Delete(ctx, s.sessionID, session.KeySelectedStore); delErr != nil {
			s.logger.Warn("failed to discard corrupt selection", "session_id", s.sessionID, "error", delErr)
		}
		return store.Store{}, false, err
	}
	return st, true, nil
}

// adopt makes a previously persisted store the selection again, refreshing
// the stored record when the directory's copy differs.
func (s *SelectionState) adopt(ctx context.Context, sink CookieSink, st store.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.Selected(); cur != nil && *cur == st {
		_, err := s.rebinder.Bind(ctx, s.policy.ForStore(st))
		return err
	}
	return s.selectLocked(ctx, sink, st)
}

// forget discards a persisted selection that no longer resolves.
func (s *SelectionState) forget(ctx context.Context, sink CookieSink) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.sessionID, session.KeySelectedStore); err != nil {
		s.logger.Warn("failed to discard stale selection", "session_id", s.sessionID, "error", err)
	}
	sink.ClearSelectedStore()
	s.stateMu.Lock()
	s.selected = nil
	s.stateMu.Unlock()
}

// selectLocked persists st, writes the cookie, then publishes the selection
// and rebinds. A pinned endpoint keeps the client bound to the pin. When the
// rebind fails the previous selection is restored. Caller must hold s.mu.
func (s *SelectionState) selectLocked(ctx context.Context, sink CookieSink, st store.Store) error {
	prev := s.Selected()
	if err := s.persist(ctx, sink, &st); err != nil {
		s.setErr(err)
		return err
	}

	pinned, err := s.pinned(ctx)
	if err != nil {
		s.logger.Warn("failed to read pinned endpoint", "session_id", s.sessionID, "error", err)
	}
	if pinned {
		s.logger.Info("store selected, client stays pinned", "session_id", s.sessionID, "store", st.Slug)
		return nil
	}

	if _, err := s.rebinder.Bind(ctx, s.policy.ForStore(st)); err != nil {
		if rbErr := s.persist(ctx, sink, prev); rbErr != nil {
			s.logger.Warn("failed to restore previous selection", "session_id", s.sessionID, "error", rbErr)
		}
		s.setErr(err)
		return err
	}
	s.logger.Info("store selected", "session_id", s.sessionID, "store", st.Slug, "endpoint", st.GraphQLEndpoint)
	return nil
}

// persist records st as the selection in storage, the cookie and memory. A
// nil st clears all three.
func (s *SelectionState) persist(ctx context.Context, sink CookieSink, st *store.Store) error {
	if st == nil {
		if err := s.storage.Delete(ctx, s.sessionID, session.KeySelectedStore); err != nil {
			return fmt.Errorf("clear selection: %w", err)
		}
		sink.ClearSelectedStore()
	} else {
		rec, err := store.EncodeRecord(*st)
		if err != nil {
			return err
		}
		if err := s.storage.Set(ctx, s.sessionID, session.KeySelectedStore, rec); err != nil {
			return fmt.Errorf("persist selection: %w", err)
		}
		sink.SetSelectedStore(*st)
	}

	s.stateMu.Lock()
	s.selected = st
	s.lastErr = nil
	s.stateMu.Unlock()
	return nil
}

func (s *SelectionState) pinned(ctx context.Context) (bool, error) {
	v, ok, err := s.storage.Get(ctx, s.sessionID, session.KeyPinnedEndpoint)
	return ok && v != "", err
}

func (s *SelectionState) setLoading(v bool) {
	s.stateMu.Lock()
	s.loading = v
	s.stateMu.Unlock()
}

func (s *SelectionState) setErr(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.stateMu.Lock()
	s.lastErr = err
	s.stateMu.Unlock()
}
