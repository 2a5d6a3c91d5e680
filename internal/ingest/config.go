package ingest

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/binsort/pkg/formatting"
)

// Config bounds per-file size and batch concurrency.
type Config struct {
	MaxFileSize string `toml:"max_file_size"`
	Workers     int    `toml:"workers"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MaxFileSize string
	Workers     string
}

// MaxFileSizeBytes parses MaxFileSize.
func (c *Config) MaxFileSizeBytes() int64 {
	n, _ := formatting.ParseBytes(c.MaxFileSize)
	return n
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.MaxFileSize == "" {
		c.MaxFileSize = "10MB"
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if env != nil {
		if env.MaxFileSize != "" {
			if v := os.Getenv(env.MaxFileSize); v != "" {
				c.MaxFileSize = v
			}
		}
		if env.Workers != "" {
			if v := os.Getenv(env.Workers); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					c.Workers = n
				}
			}
		}
	}

	if n, err := formatting.ParseBytes(c.MaxFileSize); err != nil {
		return fmt.Errorf("invalid max_file_size: %w", err)
	} else if n < 1 {
		return fmt.Errorf("max_file_size must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxFileSize != "" {
		c.MaxFileSize = overlay.MaxFileSize
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}
