package store

import "errors"

// Sentinel errors for store resolution.
var (
	// ErrDirectoryUnavailable is returned when discovery failed and no
	// fallback list is configured.
	ErrDirectoryUnavailable = errors.New("store directory unavailable")

	// ErrStoreNotFound is returned when a slug has no match in the directory.
	ErrStoreNotFound = errors.New("store not found")

	// ErrNoStoreSelected is returned when a store-scoped request has no
	// resolvable tenant.
	ErrNoStoreSelected = errors.New("no store selected")

	// ErrPersistenceCorrupt is returned when a persisted selection or cookie
	// cannot be decoded.
	ErrPersistenceCorrupt = errors.New("persisted store record is corrupt")
)
