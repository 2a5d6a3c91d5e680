// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, clock, database, storage and
// the waste detector) that domain systems require.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/JaimeStill/binsort/internal/config"
	"github.com/JaimeStill/binsort/internal/detection"
	"github.com/JaimeStill/binsort/internal/detection/dnn"
	"github.com/JaimeStill/binsort/migrations"
	"github.com/JaimeStill/binsort/pkg/database"
	"github.com/JaimeStill/binsort/pkg/lifecycle"
	"github.com/JaimeStill/binsort/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Clock     clock.Clock
	Database  database.System
	Storage   storage.System
	Detector  detection.Detector

	logSink io.Closer
}

// New creates an Infrastructure from the application configuration.
// The detector is chosen here, once: the model-backed detector when it
// loads, otherwise the fallback if the configuration permits it.
// Systems are not started; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger, sink := NewLogger(&cfg.Logging)

	db, err := database.New(&cfg.Database, migrations.FS, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	detector, err := detection.Select(dnn.Loader(cfg.Detector, logger), cfg.Detector, logger)
	if err != nil {
		return nil, fmt.Errorf("detector init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Clock:     clock.New(),
		Database:  db,
		Storage:   store,
		Detector:  detector,
		logSink:   sink,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if c, ok := i.Detector.(io.Closer); ok {
			if err := c.Close(); err != nil {
				i.Logger.Error("detector close failed", "error", err)
			}
		}
		if i.logSink != nil {
			i.logSink.Close()
		}
	})
	return nil
}
