package storage

import (
	"fmt"
	"os"
	"strconv"
)

// Supported backends.
const (
	BackendLocal = "local"
	BackendAzure = "azure"
	BackendS3    = "s3"
)

// Config selects the storage backend. Root applies to the local backend.
// For Azure Blob Storage and S3, every bin container is a name prefix inside
// a single remote container or bucket named by ContainerName.
type Config struct {
	Backend          string `toml:"backend"`
	Root             string `toml:"root"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
	Endpoint         string `toml:"endpoint"`
	Region           string `toml:"region"`
	AccessKeyID      string `toml:"access_key_id"`
	SecretAccessKey  string `toml:"secret_access_key"`
	MaxListSize      int32  `toml:"max_list_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend          string
	Root             string
	ContainerName    string
	ConnectionString string
	AccountURL       string
	Endpoint         string
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	MaxListSize      string
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
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.AccessKeyID != "" {
		c.AccessKeyID = overlay.AccessKeyID
	}
	if overlay.SecretAccessKey != "" {
		c.SecretAccessKey = overlay.SecretAccessKey
	}
	if overlay.MaxListSize != 0 {
		c.MaxListSize = overlay.MaxListSize
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendLocal
	}
	if c.Root == "" {
		c.Root = "uploads"
	}
	if c.ContainerName == "" {
		c.ContainerName = "bins"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.MaxListSize == 0 {
		c.MaxListSize = 500
	}
	if c.MaxListSize > MaxListCap {
		c.MaxListSize = MaxListCap
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = v
		}
	}
	if env.Root != "" {
		if v := os.Getenv(env.Root); v != "" {
			c.Root = v
		}
	}
	if env.ContainerName != "" {
		if v := os.Getenv(env.ContainerName); v != "" {
			c.ContainerName = v
		}
	}
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.AccountURL != "" {
		if v := os.Getenv(env.AccountURL); v != "" {
			c.AccountURL = v
		}
	}
	for _, e := range []struct {
		key string
		dst *string
	}{
		{env.Endpoint, &c.Endpoint},
		{env.Region, &c.Region},
		{env.AccessKeyID, &c.AccessKeyID},
		{env.SecretAccessKey, &c.SecretAccessKey},
	} {
		if e.key == "" {
			continue
		}
		if v := os.Getenv(e.key); v != "" {
			*e.dst = v
		}
	}
	if env.MaxListSize != "" {
		if v := os.Getenv(env.MaxListSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.MaxListSize = min(int32(n), MaxListCap)
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.Root == "" {
			return fmt.Errorf("root required for local storage")
		}
	case BackendAzure:
		if c.ContainerName == "" {
			return fmt.Errorf("container_name required")
		}
		if c.ConnectionString == "" && c.AccountURL == "" {
			return fmt.Errorf("connection_string or account_url required")
		}
	case BackendS3:
		if c.ContainerName == "" {
			return fmt.Errorf("container_name required")
		}
		if c.AccessKeyID != "" && c.SecretAccessKey == "" {
			return fmt.Errorf("secret_access_key required with access_key_id")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Backend)
	}
	return nil
}
