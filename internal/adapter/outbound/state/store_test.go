package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewDocument(t *testing.T) {
	st := newDocument()

	if st.Version != documentVersion {
		t.Errorf("Version = %q, want %q", st.Version, documentVersion)
	}
	if st.Sessions == nil || len(st.Sessions) != 0 {
		t.Errorf("expected empty Sessions map, got %v", st.Sessions)
	}
	if st.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestRead_NoFile_StartsEmpty(t *testing.T) {
	s := NewSessionsFile(filepath.Join(t.TempDir(), "sessions.json"), testLogger())

	st, err := s.Read()
	if err != nil {
		t.Fatalf("Read() returned unexpected error: %v", err)
	}
	if st.Version != "1" {
		t.Errorf("expected an empty document, got version %q", st.Version)
	}
	if s.Exists() {
		t.Error("Read() should not create the file")
	}
}

func TestRead_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewSessionsFile(path, testLogger()).Read(); err == nil {
		t.Fatal("Read() expected error for invalid JSON")
	}
}

func TestWrite_WritesAtomicallyWithBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	s := NewSessionsFile(path, testLogger())

	first := newDocument()
	first.Sessions["a"] = SessionEntry{Values: map[string]string{"k": "1"}}
	if err := s.Write(first); err != nil {
		t.Fatalf("first Write() error: %v", err)
	}
	second := newDocument()
	second.Sessions["a"] = SessionEntry{Values: map[string]string{"k": "2"}}
	if err := s.Write(second); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}

	loaded, err := s.Read()
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if loaded.Sessions["a"].Values["k"] != "2" {
		t.Errorf("loaded value = %q, want 2", loaded.Sessions["a"].Values["k"])
	}

	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("backup not written: %v", err)
	}
	var prev SessionsDocument
	if err := json.Unmarshal(bak, &prev); err != nil || prev.Sessions["a"].Values["k"] != "1" {
		t.Errorf("backup should hold the previous document, got %s", bak)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	if runtime.GOOS != "windows" {
		info, _ := os.Stat(path)
		if info.Mode().Perm() != 0600 {
			t.Errorf("file mode = %04o, want 0600", info.Mode().Perm())
		}
	}
}

func TestWrite_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	s := NewSessionsFile(path, testLogger())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Write(newDocument()); err != nil {
				t.Errorf("Write() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := s.Read(); err != nil {
		t.Errorf("Read() after concurrent saves: %v", err)
	}
}
