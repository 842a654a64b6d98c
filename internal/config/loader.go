package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for woofront.yaml/.yml in standard locations.
// The search requires an explicit YAML extension so the binary itself never matches.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// ReadInConfig will return ConfigFileNotFoundError, handled by callers.
		viper.SetConfigName("woofront")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: WOOFRONT_SERVER_HTTP_ADDR
	viper.SetEnvPrefix("WOOFRONT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a woofront config file.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".woofront"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "woofront"))
		}
	} else {
		paths = append(paths, "/etc/woofront")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths returns the first woofront.yaml or .yml found in paths,
// or an empty string.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "woofront"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds scalar config keys for environment variable support.
// Example: WOOFRONT_DIRECTORY_DISCOVERY_URL overrides directory.discovery_url
func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.http_addr")
	_ = viper.BindEnv("server.log_level")
	_ = viper.BindEnv("server.tls_cert_file")
	_ = viper.BindEnv("server.tls_key_file")

	_ = viper.BindEnv("directory.source")
	_ = viper.BindEnv("directory.discovery_url")
	_ = viper.BindEnv("directory.freshness")
	_ = viper.BindEnv("directory.timeout")
	_ = viper.BindEnv("directory.force_refresh_rate")
	_ = viper.BindEnv("directory.disable_fallback")
	// directory.fallback is an array, use the config file for it.

	_ = viper.BindEnv("client.origin")
	_ = viper.BindEnv("client.cors_mode")
	_ = viper.BindEnv("client.credentials")
	_ = viper.BindEnv("client.timeout")
	_ = viper.BindEnv("client.placeholder_endpoint")

	_ = viper.BindEnv("session.timeout")
	_ = viper.BindEnv("session.cookie_secure")

	_ = viper.BindEnv("storage.driver")
	_ = viper.BindEnv("storage.path")
	_ = viper.BindEnv("storage.retention")

	_ = viper.BindEnv("telemetry.traces")
	_ = viper.BindEnv("telemetry.metrics")
	_ = viper.BindEnv("telemetry.service_name")

	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, and returns a validated Config.
func LoadConfig() (*Config, error) {
	cfg, err := LoadConfigRaw()
	if err != nil {
		return nil, err
	}

	cfg.SetDevDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigRaw reads the configuration file and applies defaults,
// but does NOT apply dev defaults or validate.
// Use this when CLI flags may override DevMode before validation.
func LoadConfigRaw() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: run on env vars and defaults only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was loaded.
// Returns an empty string if no config file was found.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
