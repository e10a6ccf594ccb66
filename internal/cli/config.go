package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/evcraddock/rentroll/internal/db"
)

// DefaultServerURL is used when neither the environment nor the config file
// names a server.
const DefaultServerURL = "http://localhost:3030"

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	ServerURL       string  `yaml:"server_url,omitempty"`
	Token           string  `yaml:"token,omitempty"`
	CachePath       string  `yaml:"cache_path,omitempty"`
	SessionPath     string  `yaml:"session_path,omitempty"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec,omitempty"`
	TimeoutSeconds  int     `yaml:"timeout_seconds,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rr", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// getServerURL returns the server URL from env var, config, or default.
func getServerURL(cfg CLIConfig) string {
	if v := os.Getenv("RR_SERVER_URL"); v != "" {
		return v
	}
	if cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return DefaultServerURL
}

// getCachePath returns the snapshot database path from env var, config, or
// the default location.
func getCachePath(cfg CLIConfig) (string, error) {
	if v := os.Getenv("RR_CACHE_PATH"); v != "" {
		return v, nil
	}
	if cfg.CachePath != "" {
		return cfg.CachePath, nil
	}
	return db.DefaultPath()
}

// debugFromEnv reports whether RR_DEBUG is set to a true value.
func debugFromEnv() bool {
	v, err := strconv.ParseBool(os.Getenv("RR_DEBUG"))
	return err == nil && v
}
