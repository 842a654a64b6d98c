package state

import "time"

// SessionsDocument is the root document of the sessions JSON file.
type SessionsDocument struct {
	// Version is the file format version.
	Version string `json:"version"`
	// Sessions maps session ID to its durable storage.
	Sessions map[string]SessionEntry `json:"sessions"`
	// CreatedAt is when the file was first written (UTC).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the file was last written (UTC).
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionEntry is the durable storage of one session.
type SessionEntry struct {
	Values    map[string]string `json:"values"`
	UpdatedAt time.Time         `json:"updated_at"`
}
