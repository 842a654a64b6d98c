// Package gql models the single shared query client of a scope: what it is
// bound to and how its failures are reported.
package gql

import (
	"maps"
	"net/url"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Credential modes mirror the fetch API's RequestCredentials.
const (
	CredentialsInclude    = "include"
	CredentialsSameOrigin = "same-origin"
	CredentialsOmit       = "omit"
)

// Binding is the Active Client Binding: everything that determines where and
// how queries are sent. Bindings are values; rebinding replaces one wholesale.
type Binding struct {
	Endpoint       string            `json:"endpoint"`
	Headers        map[string]string `json:"headers,omitempty"`
	CORSMode       string            `json:"corsMode"`
	CredentialMode string            `json:"credentialMode"`

	// StoreSlug is the tenant the binding belongs to. Empty for placeholders
	// and pinned endpoints.
	StoreSlug string `json:"storeSlug,omitempty"`

	// Placeholder marks a neutral binding that refuses queries.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Fingerprint is a stable hash over every field of the binding.
func (b Binding) Fingerprint() uint64 {
	d := xxhash.New()
	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	write(b.Endpoint)
	write(b.CORSMode)
	write(b.CredentialMode)
	write(b.StoreSlug)
	write(strconv.FormatBool(b.Placeholder))
	for _, k := range slices.Sorted(maps.Keys(b.Headers)) {
		write(k)
		write(b.Headers[k])
	}
	return d.Sum64()
}

// Clone returns a deep copy of b.
func (b Binding) Clone() Binding {
	b.Headers = maps.Clone(b.Headers)
	return b
}

// SendsCookies reports whether the credential mode lets cookies travel with
// queries. "same-origin" only applies when the endpoint shares the Origin
// header's scheme and host.
func (b Binding) SendsCookies() bool {
	switch b.CredentialMode {
	case CredentialsInclude:
		return true
	case CredentialsSameOrigin:
		eu, err1 := url.Parse(b.Endpoint)
		ou, err2 := url.Parse(b.Headers["Origin"])
		return err1 == nil && err2 == nil && eu.Scheme == ou.Scheme && eu.Host == ou.Host
	default:
		return false
	}
}
