package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/adapter/inbound/http"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/config"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/service"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/telemetry"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gateway",
	Long: `Start the woofront storefront gateway.

The gateway loads the store directory, keeps one client scope per browser
session and serves the session API, GraphQL forwarding, page resolution and
the endpoint event stream.

Examples:
  # Start with config file settings
  woofront start

  # Start in development mode (debug logging, insecure cookies)
  woofront start --dev

  # Start with a specific config file
  woofront --config /path/to/woofront.yaml start`,
	RunE: runStart,
}

var devMode bool

func init() {
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (debug logging, insecure cookies)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(devMode)
	if err != nil {
		return err
	}

	// stop() restores default signal handling so a second Ctrl+C kills.
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	go func() {
		<-ctx.Done()
		stop()
	}()

	logger := newLogger(cfg)
	logger.Debug("log level configured", "level", cfg.Server.LogLevel, "dev_mode", cfg.DevMode)
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	pidPath := pidFilePath()
	if err := writePIDFile(pidPath); err != nil {
		logger.Warn("failed to write PID file", "path", pidPath, "error", err)
	} else {
		defer os.Remove(pidPath)
	}

	if err := run(ctx, cfg, logger); err != nil {
		return err
	}
	logger.Info("woofront stopped")
	return nil
}

// run wires every component together and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
		Traces:         cfg.Telemetry.Traces,
		Metrics:        cfg.Telemetry.Metrics,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	storage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open session storage: %w", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Warn("failed to close session storage", "error", err)
		}
	}()
	logger.Info("session storage ready", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)

	directory, closeDirectory := newDirectory(cfg, logger)
	defer closeDirectory()

	// Warm the directory so the first page render does not wait on discovery.
	// Failures are logged by the directory and retried on demand.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, cfg.DirectoryTimeout())
		defer cancel()
		_, _ = directory.Stores(warmCtx, false)
	}()

	factory := newClientFactory(cfg)
	policy := bindingPolicy(cfg)
	events := service.NewEventHub()

	sessions := service.NewSessionManager(storage, directory, factory, policy, events, logger, service.SessionManagerConfig{
		Timeout:   cfg.SessionTimeout(),
		Retention: cfg.StorageRetention(),
	})
	sessions.StartCleanup(ctx)
	defer sessions.Stop()

	resolver := service.NewEndpointResolver(directory, factory, policy, logger)

	handler := http.NewHandler(sessions, directory, resolver, events,
		http.WithCookieSettings(http.CookieSettings{Secure: cfg.Session.CookieSecure}),
		http.WithHandlerLogger(logger),
	)

	transportOpts := []http.Option{
		http.WithAddr(cfg.Server.HTTPAddr),
		http.WithLogger(logger),
		http.WithAllowedOrigins([]string{cfg.Client.Origin}),
		http.WithHealthChecker(http.NewHealthChecker(sessions, directory, Version)),
	}
	if cfg.Server.TLSCertFile != "" {
		transportOpts = append(transportOpts, http.WithTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile))
	}
	transport := http.NewHTTPTransport(handler, transportOpts...)

	logger.Info("woofront starting",
		"version", Version,
		"dev_mode", cfg.DevMode,
		"http_addr", cfg.Server.HTTPAddr,
		"discovery_url", cfg.Directory.DiscoveryURL,
		"directory_source", cfg.Directory.Source,
		"fallback_stores", len(cfg.Directory.Fallback),
		"storage", cfg.Storage.Driver,
	)
	printBanner(Version, cfg.Server.HTTPAddr, cfg.Server.TLSCertFile != "", cfg.DevMode, cfg.Directory.DiscoveryURL)

	return transport.Start(ctx)
}

// printBanner prints a startup banner to stderr.
func printBanner(version, httpAddr string, tls, dev bool, discoveryURL string) {
	const (
		reset  = "\033[0m"
		bold   = "\033[1m"
		cyan   = "\033[36m"
		green  = "\033[32m"
		yellow = "\033[33m"
		dim    = "\033[2m"
	)

	scheme := "http"
	if tls {
		scheme = "https"
	}
	host := httpAddr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	base := fmt.Sprintf("%s://%s", scheme, host)

	modeStr := green + "production" + reset
	if dev {
		modeStr = yellow + "development" + reset
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  %s%s woofront %s%s\n", bold, cyan, version, reset)
	fmt.Fprintf(os.Stderr, "  %s─────────────────────────────────────%s\n", dim, reset)
	fmt.Fprintf(os.Stderr, "  %-14s %s/\n", "Storefront:", base)
	fmt.Fprintf(os.Stderr, "  %-14s %s/api/stores\n", "API:", base)
	fmt.Fprintf(os.Stderr, "  %-14s %s/graphql\n", "GraphQL:", base)
	fmt.Fprintf(os.Stderr, "  %-14s %s\n", "Directory:", discoveryURL)
	fmt.Fprintf(os.Stderr, "  %-14s %s\n", "Mode:", modeStr)
	fmt.Fprintf(os.Stderr, "  %s─────────────────────────────────────%s\n", dim, reset)
	fmt.Fprintf(os.Stderr, "\n")
}

// pidFilePath returns the standard location for the woofront PID file.
func pidFilePath() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".woofront", "server.pid")
	}
	return filepath.Join(os.TempDir(), "woofront-server.pid")
}

// writePIDFile writes the current process PID to path, creating parent
// directories as needed.
func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644)
}

// readPIDFile returns the PID recorded at path, or 0.
func readPIDFile(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	var pid int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(data)), "%d", &pid); err != nil {
		return 0
	}
	return pid
}
