// Package config provides configuration types for the woofront storefront gateway.
//
// The gateway is configured from a single YAML file plus WOOFRONT_* environment
// overrides. Every section has defaults, so an empty file starts a working
// gateway against the public store directory.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultDiscoveryURL is the multisite directory endpoint used when none is configured.
const DefaultDiscoveryURL = "https://site.cataloghub.in/wp-json/custom/v1/view-all-sites"

// DefaultPlaceholderEndpoint is bound for render passes that have no tenant.
// The .invalid TLD never resolves, so a leaked query cannot reach a real store.
const DefaultPlaceholderEndpoint = "https://placeholder.invalid/graphql"

// Config is the top-level configuration for the storefront gateway.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Directory configures store discovery.
	Directory DirectoryConfig `yaml:"directory" mapstructure:"directory"`

	// Client configures the per-store GraphQL client binding.
	Client ClientConfig `yaml:"client" mapstructure:"client"`

	// Session configures browser session scopes.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Storage selects the durable storage backing session scopes.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Telemetry configures OpenTelemetry exporters.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// DevMode enables development features (debug logging, insecure cookies).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// HTTPAddr is the address to listen on. Defaults to "127.0.0.1:3000".
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level ("debug", "info", "warn", "error").
	// DevMode=true overrides to "debug".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string `yaml:"tls_cert_file" mapstructure:"tls_cert_file" validate:"required_with=TLSKeyFile"`
	TLSKeyFile  string `yaml:"tls_key_file" mapstructure:"tls_key_file" validate:"required_with=TLSCertFile"`
}

// DirectoryConfig configures the Store Directory Client.
type DirectoryConfig struct {
	// Source is the upstream shape: "rest", "graphql" or "auto".
	Source string `yaml:"source" mapstructure:"source" validate:"required,directory_source"`

	// DiscoveryURL is the endpoint returning the store list.
	DiscoveryURL string `yaml:"discovery_url" mapstructure:"discovery_url" validate:"required,url"`

	// Freshness is how long a fetched directory is served without refetching.
	// Defaults to "5m".
	Freshness string `yaml:"freshness" mapstructure:"freshness" validate:"omitempty,duration"`

	// Timeout bounds a single discovery request. Defaults to "10s".
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`

	// ForceRefreshRate is the number of forced refreshes per minute accepted
	// from the HTTP API. Defaults to 6.
	ForceRefreshRate int `yaml:"force_refresh_rate" mapstructure:"force_refresh_rate" validate:"omitempty,min=1"`

	// Fallback is served when discovery fails. Defaults to the built-in
	// list unless DisableFallback is set.
	Fallback []FallbackStoreConfig `yaml:"fallback" mapstructure:"fallback" validate:"omitempty,dive"`

	// DisableFallback turns off the built-in fallback list.
	DisableFallback bool `yaml:"disable_fallback" mapstructure:"disable_fallback"`
}

// FallbackStoreConfig is a statically configured store.
type FallbackStoreConfig struct {
	ID              string `yaml:"id" mapstructure:"id"`
	Name            string `yaml:"name" mapstructure:"name" validate:"required"`
	Slug            string `yaml:"slug" mapstructure:"slug" validate:"omitempty,store_slug"`
	URL             string `yaml:"url" mapstructure:"url" validate:"required,url"`
	GraphQLEndpoint string `yaml:"graphql_endpoint" mapstructure:"graphql_endpoint" validate:"omitempty,url"`
}

// ClientConfig configures how the query client is bound to a store.
type ClientConfig struct {
	// Origin is sent as the Origin header on every store query.
	// Defaults to "http://localhost:3000".
	Origin string `yaml:"origin" mapstructure:"origin" validate:"required,url"`

	// CORSMode is recorded on the binding ("cors", "same-origin", "no-cors").
	CORSMode string `yaml:"cors_mode" mapstructure:"cors_mode" validate:"required,cors_mode"`

	// Credentials controls cookie forwarding ("include", "same-origin", "omit").
	Credentials string `yaml:"credentials" mapstructure:"credentials" validate:"required,credential_mode"`

	// Timeout bounds a single store query. Defaults to "30s".
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`

	// Headers are added to every store query.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// PlaceholderEndpoint is bound for render passes with no tenant.
	PlaceholderEndpoint string `yaml:"placeholder_endpoint" mapstructure:"placeholder_endpoint" validate:"required,url"`
}

// SessionConfig configures browser session scopes.
type SessionConfig struct {
	// Timeout is the idle time after which a session scope is evicted.
	// Defaults to "30m".
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`

	// CookieSecure sets the Secure attribute on cookies written by the gateway.
	CookieSecure bool `yaml:"cookie_secure" mapstructure:"cookie_secure"`
}

// StorageConfig selects the durable storage driver.
type StorageConfig struct {
	// Driver is "memory", "sqlite" or "file". Defaults to "memory".
	Driver string `yaml:"driver" mapstructure:"driver" validate:"required,storage_driver"`

	// Path is the sqlite database or JSON file path. Required unless Driver is "memory".
	Path string `yaml:"path" mapstructure:"path"`

	// Retention is how long an untouched session's storage is kept.
	// Defaults to "720h" (30 days).
	Retention string `yaml:"retention" mapstructure:"retention" validate:"omitempty,duration"`
}

// TelemetryConfig configures OpenTelemetry exporters.
type TelemetryConfig struct {
	// Traces is "none" or "stdout". Defaults to "none".
	Traces string `yaml:"traces" mapstructure:"traces" validate:"required,oneof=none stdout"`

	// Metrics is "none" or "stdout". Defaults to "none".
	Metrics string `yaml:"metrics" mapstructure:"metrics" validate:"required,oneof=none stdout"`

	// ServiceName is reported as the otel service.name resource attribute.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
}

// DefaultFallbackStores returns the built-in fallback list.
func DefaultFallbackStores() []FallbackStoreConfig {
	return []FallbackStoreConfig{
		{ID: "1", Name: "Lakshmi", Slug: "lakshmi", URL: "https://lakshmi.cataloghub.in"},
		{ID: "2", Name: "ShivShakti", Slug: "shivshakti", URL: "https://shivshakti.cataloghub.in"},
	}
}

// SetDevDefaults applies permissive defaults for development mode.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	c.Server.LogLevel = "debug"
	// Browsers on a local dev server never send Secure cookies back over http.
	if !viper.IsSet("session.cookie_secure") {
		c.Session.CookieSecure = false
	}
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	// Localhost only unless explicitly opened up.
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:3000"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Directory.Source == "" {
		c.Directory.Source = "rest"
	}
	if c.Directory.DiscoveryURL == "" {
		c.Directory.DiscoveryURL = DefaultDiscoveryURL
	}
	if c.Directory.Freshness == "" {
		c.Directory.Freshness = "5m"
	}
	if c.Directory.Timeout == "" {
		c.Directory.Timeout = "10s"
	}
	if c.Directory.ForceRefreshRate == 0 {
		c.Directory.ForceRefreshRate = 6
	}
	if len(c.Directory.Fallback) == 0 && !c.Directory.DisableFallback {
		c.Directory.Fallback = DefaultFallbackStores()
	}

	if c.Client.Origin == "" {
		c.Client.Origin = "http://localhost:3000"
	}
	if c.Client.CORSMode == "" {
		c.Client.CORSMode = "cors"
	}
	if c.Client.Credentials == "" {
		c.Client.Credentials = "include"
	}
	if c.Client.Timeout == "" {
		c.Client.Timeout = "30s"
	}
	if c.Client.PlaceholderEndpoint == "" {
		c.Client.PlaceholderEndpoint = DefaultPlaceholderEndpoint
	}

	if c.Session.Timeout == "" {
		c.Session.Timeout = "30m"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Retention == "" {
		c.Storage.Retention = "720h"
	}

	if c.Telemetry.Traces == "" {
		c.Telemetry.Traces = "none"
	}
	if c.Telemetry.Metrics == "" {
		c.Telemetry.Metrics = "none"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "woofront"
	}

	// Only default Secure when the user hasn't explicitly set it in YAML/env.
	// viper.IsSet distinguishes "not set" from "explicitly false".
	if !viper.IsSet("session.cookie_secure") {
		c.Session.CookieSecure = strings.HasPrefix(c.Client.Origin, "https://")
	}
}

// FreshnessDuration returns the parsed directory freshness window.
func (c *Config) FreshnessDuration() time.Duration {
	return parseDurationOr(c.Directory.Freshness, 5*time.Minute)
}

// DirectoryTimeout returns the parsed discovery request timeout.
func (c *Config) DirectoryTimeout() time.Duration {
	return parseDurationOr(c.Directory.Timeout, 10*time.Second)
}

// ClientTimeout returns the parsed store query timeout.
func (c *Config) ClientTimeout() time.Duration {
	return parseDurationOr(c.Client.Timeout, 30*time.Second)
}

// SessionTimeout returns the parsed session idle timeout.
func (c *Config) SessionTimeout() time.Duration {
	return parseDurationOr(c.Session.Timeout, 30*time.Minute)
}

// StorageRetention returns the parsed session storage retention.
func (c *Config) StorageRetention() time.Duration {
	return parseDurationOr(c.Storage.Retention, 30*24*time.Hour)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
