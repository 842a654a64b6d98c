package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/session"
)

func openTemp(t *testing.T) (*SessionStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := Open(context.Background(), path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	return s, path
}

func TestSessionStorage_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := openTemp(t)
	defer func() { _ = s.Close() }()

	if _, ok, err := s.Get(ctx, "s1", session.KeyEndpoint); ok || err != nil {
		t.Fatalf("Get() on empty = %v, %v", ok, err)
	}
	if err := s.Set(ctx, "s1", session.KeyEndpoint, "https://a/graphql"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Set(ctx, "s1", session.KeyEndpoint, "https://b/graphql"); err != nil {
		t.Fatalf("Set() overwrite error: %v", err)
	}
	if v, ok, _ := s.Get(ctx, "s1", session.KeyEndpoint); !ok || v != "https://b/graphql" {
		t.Errorf("Get() = %q, %v; want overwritten value", v, ok)
	}
	if _, ok, _ := s.Get(ctx, "s2", session.KeyEndpoint); ok {
		t.Error("value leaked into another session")
	}

	if err := s.Delete(ctx, "s1", session.KeyEndpoint, session.KeySelectedStore); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "s1", session.KeyEndpoint); ok {
		t.Error("Get() after Delete() returned ok")
	}
}

func TestSessionStorage_SurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, path := openTemp(t)
	if err := s.Set(ctx, "s1", session.KeySelectedStore, `{"slug":"a"}`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	_ = s.Close()

	reopened, err := Open(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if v, ok, _ := reopened.Get(ctx, "s1", session.KeySelectedStore); !ok || v != `{"slug":"a"}` {
		t.Errorf("Get() after reopen = %q, %v", v, ok)
	}
}

func TestSessionStorage_PurgeBefore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := openTemp(t)
	defer func() { _ = s.Close() }()

	_ = s.Set(ctx, "old", session.KeyEndpoint, "x")
	n, err := s.PurgeBefore(ctx, time.Now().Add(time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("PurgeBefore() = %d, %v; want 1", n, err)
	}
	if _, ok, _ := s.Get(ctx, "old", session.KeyEndpoint); ok {
		t.Error("purged key still present")
	}
}
