package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/session"
)

// Scope is the client execution environment of one browser session: its
// selection, its query client, and its durable storage.
type Scope struct {
	Session   session.Session
	Selection *SelectionState
	Client    *Rebinder

	storage session.Storage
	policy  BindingPolicy
}

// ID returns the session ID.
func (s *Scope) ID() string {
	return s.Session.ID
}

// Pin stores a manual endpoint override and binds to it. The override wins
// over any selected store until Unpin.
func (s *Scope) Pin(ctx context.Context, endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("pinned endpoint must be an absolute http(s) URL: %q", endpoint)
	}
	if err := s.storage.Set(ctx, s.ID(), session.KeyPinnedEndpoint, endpoint); err != nil {
		return fmt.Errorf("persist pinned endpoint: %w", err)
	}
	_, err = s.Client.Bind(ctx, s.policy.ForEndpoint(endpoint))
	return err
}

// Unpin removes the override. The caller re-resolves to rebind.
func (s *Scope) Unpin(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.ID(), session.KeyPinnedEndpoint); err != nil {
		return fmt.Errorf("clear pinned endpoint: %w", err)
	}
	return nil
}

// Pinned returns the override endpoint, if any.
func (s *Scope) Pinned(ctx context.Context) (string, bool, error) {
	return s.storage.Get(ctx, s.ID(), session.KeyPinnedEndpoint)
}

// LastEndpoint returns the endpoint recorded by the most recent bind.
func (s *Scope) LastEndpoint(ctx context.Context) (string, bool, error) {
	return s.storage.Get(ctx, s.ID(), session.KeyEndpoint)
}

func (s *Scope) touch(timeout time.Duration) {
	s.Session.Refresh(timeout)
}

func (s *Scope) close() {
	s.Client.Close()
}
