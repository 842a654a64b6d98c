package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.Server.HTTPAddr != "127.0.0.1:3000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:3000")
	}
	if cfg.Directory.DiscoveryURL != DefaultDiscoveryURL {
		t.Errorf("DiscoveryURL = %q, want %q", cfg.Directory.DiscoveryURL, DefaultDiscoveryURL)
	}
	if cfg.Directory.Source != "rest" {
		t.Errorf("Source = %q, want rest", cfg.Directory.Source)
	}
	if len(cfg.Directory.Fallback) != 2 {
		t.Errorf("Fallback len = %d, want 2", len(cfg.Directory.Fallback))
	}
	if cfg.Client.Credentials != "include" || cfg.Client.CORSMode != "cors" {
		t.Errorf("client modes = %q/%q, want include/cors", cfg.Client.Credentials, cfg.Client.CORSMode)
	}
	if cfg.Client.Origin != "http://localhost:3000" {
		t.Errorf("Origin = %q", cfg.Client.Origin)
	}
	if cfg.Session.CookieSecure {
		t.Error("CookieSecure should default to false for an http origin")
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q, want memory", cfg.Storage.Driver)
	}
	if cfg.FreshnessDuration() != 5*time.Minute {
		t.Errorf("FreshnessDuration() = %v, want 5m", cfg.FreshnessDuration())
	}
}

func TestConfig_SetDefaults_DisableFallback(t *testing.T) {
	t.Parallel()

	cfg := Config{Directory: DirectoryConfig{DisableFallback: true}}
	cfg.SetDefaults()

	if len(cfg.Directory.Fallback) != 0 {
		t.Errorf("Fallback len = %d, want 0", len(cfg.Directory.Fallback))
	}
}

func TestConfig_SetDefaults_SecureCookieForHTTPSOrigin(t *testing.T) {
	t.Parallel()

	cfg := Config{Client: ClientConfig{Origin: "https://shop.example.com"}}
	cfg.SetDefaults()

	if !cfg.Session.CookieSecure {
		t.Error("CookieSecure should default to true for an https origin")
	}
}

func TestConfig_SetDefaults_PreservesExistingValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Server:    ServerConfig{HTTPAddr: ":9090"},
		Directory: DirectoryConfig{Source: "graphql", Freshness: "1m"},
		Storage:   StorageConfig{Driver: "sqlite", Path: "/tmp/x.db"},
	}
	cfg.SetDefaults()

	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090", cfg.Server.HTTPAddr)
	}
	if cfg.Directory.Source != "graphql" {
		t.Errorf("Source = %q, want graphql", cfg.Directory.Source)
	}
	if cfg.FreshnessDuration() != time.Minute {
		t.Errorf("FreshnessDuration() = %v, want 1m", cfg.FreshnessDuration())
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Storage.Driver)
	}
}

func TestConfig_SetDevDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{DevMode: true}
	cfg.SetDefaults()
	cfg.SetDevDefaults()

	if cfg.Server.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.Server.LogLevel)
	}

	off := Config{}
	off.SetDefaults()
	off.SetDevDefaults()
	if off.Server.LogLevel != "info" {
		t.Errorf("LogLevel without dev mode = %q, want info", off.Server.LogLevel)
	}
}

func TestParseDurationOr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", time.Second},
		{"garbage", time.Second},
		{"-5s", time.Second},
		{"2m", 2 * time.Minute},
	}
	for _, tt := range tests {
		if got := parseDurationOr(tt.in, time.Second); got != tt.want {
			t.Errorf("parseDurationOr(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFindConfigFileInPaths(t *testing.T) {
	t.Parallel()

	empty := t.TempDir()
	withYML := t.TempDir()
	path := filepath.Join(withYML, "woofront.yml")
	if err := os.WriteFile(path, []byte("dev_mode: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// A file with the binary's name and no extension must not match.
	if err := os.WriteFile(filepath.Join(empty, "woofront"), []byte{}, 0o600); err != nil {
		t.Fatal(err)
	}

	if got := findConfigFileInPaths([]string{empty}); got != "" {
		t.Errorf("findConfigFileInPaths(empty) = %q, want empty", got)
	}
	if got := findConfigFileInPaths([]string{empty, withYML}); got != path {
		t.Errorf("findConfigFileInPaths() = %q, want %q", got, path)
	}
}
