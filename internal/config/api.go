package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/binsort/pkg/formatting"
	"github.com/JaimeStill/binsort/pkg/middleware"
	"github.com/JaimeStill/binsort/pkg/pagination"
)

const (
	EnvAPIBasePath      = "BINSORT_API_BASE_PATH"
	EnvAPIMaxUploadSize = "BINSORT_API_MAX_UPLOAD_SIZE"
	EnvAPIAppPath       = "BINSORT_API_APP_PATH"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "BINSORT_CORS_ENABLED",
	Origins:          "BINSORT_CORS_ORIGINS",
	AllowedMethods:   "BINSORT_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "BINSORT_CORS_ALLOWED_HEADERS",
	AllowCredentials: "BINSORT_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "BINSORT_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "BINSORT_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "BINSORT_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds routing, request size, CORS, and pagination settings.
// MaxUploadSize bounds a whole multipart request; per-file limits live in
// the ingest section.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	AppPath       string                `toml:"app_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 100 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.AppPath != "" {
		c.AppPath = overlay.AppPath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.AppPath == "" {
		c.AppPath = "/app"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "100MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIAppPath); v != "" {
		c.AppPath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if c.BasePath == c.AppPath {
		return fmt.Errorf("base_path and app_path must differ")
	}
	return nil
}
