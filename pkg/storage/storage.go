// Package storage keeps bin images in named containers with a staging area
// for in-flight uploads. Objects are written to staging first and moved into a
// container only once they are accepted, so a container never holds a partial
// or rejected upload.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/binsort/pkg/lifecycle"
)

// StagingArea is the reserved container holding uploads that are not yet committed.
const StagingArea = ".staging"

// MaxListCap bounds the page size requested from remote listings.
const MaxListCap int32 = 5000

// Object describes a stored item.
type Object struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// System manages bin containers, the staging area, and lifecycle coordination.
type System interface {
	// Start prepares the staging area.
	Start(lc *lifecycle.Coordinator) error
	// Ensure creates the named containers when they do not exist.
	Ensure(ctx context.Context, containers ...string) error
	// Stage writes r to the staging area under name.
	Stage(ctx context.Context, name string, r io.Reader) error
	// Commit moves a staged object into container.
	Commit(ctx context.Context, name, container string) error
	// Discard removes a staged object. Returns ErrNotFound if nothing was staged.
	Discard(ctx context.Context, name string) error
	// List returns every object in container, unordered.
	List(ctx context.Context, container string) ([]Object, error)
	// Open returns a stream for the object. The caller must close the reader.
	Open(ctx context.Context, container, name string) (io.ReadCloser, error)
}

// New creates the storage system selected by cfg.Backend.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Backend {
	case BackendLocal:
		return NewLocalDir(cfg.Root, logger), nil
	case BackendAzure:
		return NewAzure(cfg, logger)
	case BackendS3:
		return NewS3(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	return nil
}

func validate(keys ...string) error {
	for _, k := range keys {
		if err := validateKey(k); err != nil {
			return err
		}
	}
	return nil
}
