package store

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// CookieName is the cookie carrying the selected store to render passes.
const CookieName = "selectedStore"

// EncodeRecord serializes s for durable storage.
func EncodeRecord(s Store) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode store record: %w", err)
	}
	return string(b), nil
}

// DecodeRecord parses a stored record. Any record that does not decode to a
// bindable store is reported as ErrPersistenceCorrupt.
func DecodeRecord(raw string) (Store, error) {
	var s Store
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Store{}, fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)
	}
	if !s.Valid() {
		return Store{}, fmt.Errorf("%w: missing slug or endpoint", ErrPersistenceCorrupt)
	}
	return s, nil
}

// EncodeCookie returns the URL-encoded JSON value of the selectedStore cookie.
func EncodeCookie(s Store) (string, error) {
	rec, err := EncodeRecord(s)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(rec), nil
}

// DecodeCookie parses a selectedStore cookie value.
func DecodeCookie(value string) (Store, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Store{}, fmt.Errorf("%w: empty cookie", ErrPersistenceCorrupt)
	}
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return Store{}, fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)
	}
	return DecodeRecord(raw)
}
