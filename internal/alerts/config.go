package alerts

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultQueueSize bounds the number of undelivered alerts.
const DefaultQueueSize = 64

// Config holds the dispatcher settings and the credentials of the external channels.
type Config struct {
	QueueSize int         `toml:"queue_size"`
	Timeout   string      `toml:"timeout"`
	SMS       SMSConfig   `toml:"sms"`
	Email     EmailConfig `toml:"email"`
}

// SMSConfig holds Twilio credentials. The channel is enabled only when every field is set.
type SMSConfig struct {
	AccountSID string `toml:"account_sid"`
	AuthToken  string `toml:"auth_token"`
	From       string `toml:"from"`
	To         string `toml:"to"`
}

// EmailConfig holds SMTP settings. The channel is enabled only when every field is set.
type EmailConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Address  string `toml:"address"`
	Password string `toml:"password"`
	Receiver string `toml:"receiver"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	QueueSize     string
	Timeout       string
	SMSAccountSID string
	SMSAuthToken  string
	SMSFrom       string
	SMSTo         string
	EmailHost     string
	EmailPort     string
	EmailAddress  string
	EmailPassword string
	EmailReceiver string
}

// Complete reports whether every SMS field is set.
func (c SMSConfig) Complete() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != "" && c.To != ""
}

// Complete reports whether every email field is set.
func (c EmailConfig) Complete() bool {
	return c.Host != "" && c.Port != 0 && c.Address != "" && c.Password != "" && c.Receiver != ""
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
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
	if overlay.QueueSize != 0 {
		c.QueueSize = overlay.QueueSize
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	mergeString(&c.SMS.AccountSID, overlay.SMS.AccountSID)
	mergeString(&c.SMS.AuthToken, overlay.SMS.AuthToken)
	mergeString(&c.SMS.From, overlay.SMS.From)
	mergeString(&c.SMS.To, overlay.SMS.To)
	mergeString(&c.Email.Host, overlay.Email.Host)
	if overlay.Email.Port != 0 {
		c.Email.Port = overlay.Email.Port
	}
	mergeString(&c.Email.Address, overlay.Email.Address)
	mergeString(&c.Email.Password, overlay.Email.Password)
	mergeString(&c.Email.Receiver, overlay.Email.Receiver)
}

func (c *Config) loadDefaults() {
	if c.QueueSize == 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.Email.Host == "" {
		c.Email.Host = "smtp.gmail.com"
	}
	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := lookup(env.QueueSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.QueueSize = n
		}
	}
	if v := lookup(env.Timeout); v != "" {
		c.Timeout = v
	}
	mergeString(&c.SMS.AccountSID, lookup(env.SMSAccountSID))
	mergeString(&c.SMS.AuthToken, lookup(env.SMSAuthToken))
	mergeString(&c.SMS.From, lookup(env.SMSFrom))
	mergeString(&c.SMS.To, lookup(env.SMSTo))
	mergeString(&c.Email.Host, lookup(env.EmailHost))
	if v := lookup(env.EmailPort); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Email.Port = n
		}
	}
	mergeString(&c.Email.Address, lookup(env.EmailAddress))
	mergeString(&c.Email.Password, lookup(env.EmailPassword))
	mergeString(&c.Email.Receiver, lookup(env.EmailReceiver))
}

func (c *Config) validate() error {
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be positive")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func lookup(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}
