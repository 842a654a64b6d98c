package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/adapter/outbound/discovery"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/adapter/outbound/graphql"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/adapter/outbound/memory"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/adapter/outbound/sqlite"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/adapter/outbound/state"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/config"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/session"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/service"
)

// loadConfig loads, overrides and validates the configuration.
func loadConfig(dev bool) (*config.Config, error) {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dev {
		cfg.DevMode = true
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newLogger writes text logs to stderr. DevMode always forces debug.
func newLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fallbackStores converts the configured fallback list. Slugs and endpoints
// are derived the same way as for discovered stores.
func fallbackStores(cfg *config.Config) []store.Store {
	stores := make([]store.Store, 0, len(cfg.Directory.Fallback))
	for i, fb := range cfg.Directory.Fallback {
		st := store.Store{
			ID:              fb.ID,
			Name:            fb.Name,
			URL:             strings.TrimRight(fb.URL, "/"),
			GraphQLEndpoint: fb.GraphQLEndpoint,
		}
		if st.ID == "" {
			st.ID = strconv.Itoa(i + 1)
		}
		st.Slug = store.DeriveSlug(fb.Slug, st.URL, i+1)
		if st.GraphQLEndpoint == "" {
			st.GraphQLEndpoint = store.EndpointFor(st.URL)
		}
		stores = append(stores, st)
	}
	return stores
}

// newDirectory builds the directory client. The returned func releases the
// discovery connections.
func newDirectory(cfg *config.Config, logger *slog.Logger) (*service.DirectoryService, func()) {
	source := discovery.NewHTTPSource(cfg.Directory.DiscoveryURL, discovery.Mode(cfg.Directory.Source),
		discovery.WithTimeout(cfg.DirectoryTimeout()),
		discovery.WithLogger(logger),
	)
	directory := service.NewDirectoryService(source, service.DirectoryOptions{
		Freshness:    cfg.FreshnessDuration(),
		Fallback:     fallbackStores(cfg),
		RefreshLimit: rate.Limit(float64(cfg.Directory.ForceRefreshRate) / 60),
		Logger:       logger,
	})
	return directory, source.Close
}

func newClientFactory(cfg *config.Config) *graphql.Factory {
	return graphql.NewFactory(graphql.WithTimeout(cfg.ClientTimeout()))
}

func bindingPolicy(cfg *config.Config) service.BindingPolicy {
	return service.BindingPolicy{
		Origin:              cfg.Client.Origin,
		CORSMode:            cfg.Client.CORSMode,
		CredentialMode:      cfg.Client.Credentials,
		Headers:             cfg.Client.Headers,
		PlaceholderEndpoint: cfg.Client.PlaceholderEndpoint,
	}
}

// openStorage opens the configured session storage driver.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.NewSessionStorage(), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
		st, err := sqlite.Open(ctx, cfg.Storage.Path, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "file":
		st, err := state.OpenSessionStorage(cfg.Storage.Path, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
