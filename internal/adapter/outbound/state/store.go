// Package state persists session storage in a JSON file.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"
)

// documentVersion is written to every new sessions file.
const documentVersion = "1"

// SessionsFile reads and writes the sessions document. Writes replace the
// file atomically, keep the previous document at path+".bak" and hold an
// exclusive lock on path+".lock" so two gateways never interleave.
type SessionsFile struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewSessionsFile creates a SessionsFile for path.
func NewSessionsFile(path string, logger *slog.Logger) *SessionsFile {
	return &SessionsFile{path: path, logger: logger}
}

// newDocument returns an empty document stamped with the current time.
func newDocument() *SessionsDocument {
	now := time.Now().UTC()
	return &SessionsDocument{
		Version:   documentVersion,
		Sessions:  make(map[string]SessionEntry),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Read parses the sessions file. A missing file yields an empty document and
// is not created; malformed JSON is an error.
func (f *SessionsFile) Read() (*SessionsDocument, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.Info("sessions file not found, starting empty", "path", f.path)
		return newDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions file: %w", err)
	}
	f.warnIfShared()

	doc := &SessionsDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse sessions file: %w", err)
	}
	if doc.Sessions == nil {
		doc.Sessions = make(map[string]SessionEntry)
	}
	return doc, nil
}

// Write stamps doc and replaces the file with it.
func (f *SessionsFile) Write(doc *SessionsDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	data = append(data, '\n')

	return f.locked(func() error {
		f.backup()
		if err := f.replace(data); err != nil {
			return err
		}
		// Rename keeps the temp file's mode; enforce 0600 anyway.
		if err := os.Chmod(f.path, 0o600); err != nil {
			f.logger.Warn("failed to restrict sessions file permissions", "error", err)
		}
		f.logger.Debug("sessions file written", "path", f.path, "sessions", len(doc.Sessions))
		return nil
	})
}

// Exists reports whether the sessions file is on disk.
func (f *SessionsFile) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// locked runs fn while holding the cross-process lock.
func (f *SessionsFile) locked(fn func() error) error {
	lock, err := os.OpenFile(f.path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lock.Close()

	if err := flockLock(lock.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer flockUnlock(lock.Fd()) //nolint:errcheck
	return fn()
}

// backup copies the current file to path+".bak". A missing file is skipped.
func (f *SessionsFile) backup() {
	current, err := os.ReadFile(f.path)
	if err != nil {
		return
	}
	if err := os.WriteFile(f.path+".bak", current, 0o600); err != nil {
		f.logger.Warn("failed to back up sessions file", "error", err)
	}
}

// replace writes data to path+".tmp", syncs it and renames it over the file.
// The temp file never survives a failure.
func (f *SessionsFile) replace(data []byte) (err error) {
	tmpPath := f.path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// warnIfShared logs when group or other can read the file. Windows has no
// Unix permission bits.
func (f *SessionsFile) warnIfShared() {
	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		f.logger.Warn("sessions file is readable by other users, should be 0600",
			"path", f.path, "mode", fmt.Sprintf("%04o", mode))
	}
}
