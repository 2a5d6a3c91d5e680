package live

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults for the live feed.
const (
	DefaultDebounce   = "500ms"
	DefaultSendBuffer = 16
)

// Config controls the live feed and the bin directory watcher.
type Config struct {
	Watch      *bool  `toml:"watch"`
	Debounce   string `toml:"debounce"`
	SendBuffer int    `toml:"send_buffer"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Watch      string
	Debounce   string
	SendBuffer string
}

// Watching reports whether local bin directories are watched for outside changes.
func (c *Config) Watching() bool {
	return c.Watch == nil || *c.Watch
}

// DebounceDuration returns Debounce as a time.Duration.
func (c *Config) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(c.Debounce)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Watch != nil {
		c.Watch = overlay.Watch
	}
	if overlay.Debounce != "" {
		c.Debounce = overlay.Debounce
	}
	if overlay.SendBuffer != 0 {
		c.SendBuffer = overlay.SendBuffer
	}
}

func (c *Config) loadDefaults() {
	if c.Debounce == "" {
		c.Debounce = DefaultDebounce
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = DefaultSendBuffer
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Watch != "" {
		if v := os.Getenv(env.Watch); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Watch = &b
			}
		}
	}
	if env.Debounce != "" {
		if v := os.Getenv(env.Debounce); v != "" {
			c.Debounce = v
		}
	}
	if env.SendBuffer != "" {
		if v := os.Getenv(env.SendBuffer); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.SendBuffer = n
			}
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Debounce); err != nil {
		return fmt.Errorf("invalid debounce: %w", err)
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("send_buffer must be positive")
	}
	return nil
}
