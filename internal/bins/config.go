package bins

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultCapacity is the item count at which a bin is reported full.
const DefaultCapacity = 20

// Config holds the bin capacity threshold.
type Config struct {
	Capacity int `toml:"capacity"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Capacity string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if env != nil && env.Capacity != "" {
		if v := os.Getenv(env.Capacity); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Capacity = n
			}
		}
	}
	if c.Capacity < 1 {
		return fmt.Errorf("capacity must be positive")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Capacity != 0 {
		c.Capacity = overlay.Capacity
	}
}
