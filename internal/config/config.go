// Package config loads the service configuration from TOML files and
// BINSORT_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/binsort/internal/alerts"
	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/internal/detection"
	"github.com/JaimeStill/binsort/internal/ingest"
	"github.com/JaimeStill/binsort/internal/live"
	"github.com/JaimeStill/binsort/pkg/database"
	"github.com/JaimeStill/binsort/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvBinsortEnv             = "BINSORT_ENV"
	EnvBinsortShutdownTimeout = "BINSORT_SHUTDOWN_TIMEOUT"
	EnvBinsortVersion         = "BINSORT_VERSION"
)

// Config is the root configuration for the binsort service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Logging         LoggingConfig    `toml:"logging"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	API             APIConfig        `toml:"api"`
	Bins            bins.Config      `toml:"bins"`
	Ingest          ingest.Config    `toml:"ingest"`
	Detector        detection.Config `toml:"detector"`
	Alerts          alerts.Config    `toml:"alerts"`
	Live            live.Config      `toml:"live"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the BINSORT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvBinsortEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(BaseConfigFile)
}

// LoadFrom is Load with an explicit base file path. The overlay is looked up
// next to the base file.
func LoadFrom(base string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(base); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Bins.Merge(&overlay.Bins)
	c.Ingest.Merge(&overlay.Ingest)
	c.Detector.Merge(&overlay.Detector)
	c.Alerts.Merge(&overlay.Alerts)
	c.Live.Merge(&overlay.Live)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Bins.Finalize(binsEnv); err != nil {
		return fmt.Errorf("bins: %w", err)
	}
	if err := c.Ingest.Finalize(ingestEnv); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if err := c.Detector.Finalize(detectorEnv); err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	if err := c.Alerts.Finalize(alertsEnv); err != nil {
		return fmt.Errorf("alerts: %w", err)
	}
	if err := c.Live.Finalize(liveEnv); err != nil {
		return fmt.Errorf("live: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvBinsortShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvBinsortVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(base string) string {
	if env := os.Getenv(EnvBinsortEnv); env != "" {
		path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
