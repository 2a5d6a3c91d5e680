package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "BINSORT_SERVER_HOST"
	EnvServerPort              = "BINSORT_SERVER_PORT"
	EnvServerReadHeaderTimeout = "BINSORT_SERVER_READ_HEADER_TIMEOUT"
	EnvServerReadTimeout       = "BINSORT_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout      = "BINSORT_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "BINSORT_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "BINSORT_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds the HTTP listener address and its timeouts. Timeouts are
// Go duration strings. Read and write timeouts bound a whole upload request;
// websocket connections clear them on upgrade.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	ReadTimeout       string `toml:"read_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

type serverTimeout struct {
	name string
	env  string
	def  string
	val  *string
}

func (c *ServerConfig) timeouts() []serverTimeout {
	return []serverTimeout{
		{"read_header_timeout", EnvServerReadHeaderTimeout, "10s", &c.ReadHeaderTimeout},
		{"read_timeout", EnvServerReadTimeout, "2m", &c.ReadTimeout},
		{"write_timeout", EnvServerWriteTimeout, "5m", &c.WriteTimeout},
		{"idle_timeout", EnvServerIdleTimeout, "2m", &c.IdleTimeout},
		{"shutdown_timeout", EnvServerShutdownTimeout, "30s", &c.ShutdownTimeout},
	}
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration { return duration(c.ReadHeaderTimeout) }
func (c *ServerConfig) ReadTimeoutDuration() time.Duration       { return duration(c.ReadTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration      { return duration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration       { return duration(c.IdleTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration   { return duration(c.ShutdownTimeout) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}

	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvServerPort, err)
		}
		c.Port = port
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	for _, t := range c.timeouts() {
		if *t.val == "" {
			*t.val = t.def
		}
		if v := os.Getenv(t.env); v != "" {
			*t.val = v
		}
		if _, err := time.ParseDuration(*t.val); err != nil {
			return fmt.Errorf("invalid %s: %w", t.name, err)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}

	src := overlay.timeouts()
	for i, t := range c.timeouts() {
		if v := *src[i].val; v != "" {
			*t.val = v
		}
	}
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
