package api

import (
	"fmt"

	"github.com/JaimeStill/binsort/internal/alerts"
	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/internal/ingest"
	"github.com/JaimeStill/binsort/internal/journal"
	"github.com/JaimeStill/binsort/internal/live"
	"github.com/JaimeStill/binsort/pkg/storage"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Bins    bins.System
	Journal journal.System
	Live    *live.Hub
	Alerts  *alerts.Dispatcher
	Ingest  ingest.System

	watcher *live.Watcher
}

// NewDomain creates all domain systems from the API runtime. Alerts fan out
// to the configured SMS and email channels, the journal and the live feed.
func NewDomain(runtime *Runtime) *Domain {
	cfg := runtime.Config

	binsSystem := bins.New(runtime.Storage, cfg.Bins, runtime.Logger)

	journalSystem := journal.New(
		runtime.Database.Connection(),
		runtime.Clock,
		runtime.Logger,
		runtime.Pagination,
	)

	hub := live.New(binsSystem, cfg.Live, runtime.Clock, runtime.Logger)

	channels := alerts.ConfiguredChannels(cfg.Alerts, runtime.Logger)
	channels = append(channels, journalSystem, hub)
	dispatcher := alerts.New(cfg.Alerts, runtime.Logger, channels...)

	ingestSystem := ingest.New(
		runtime.Storage,
		binsSystem,
		runtime.Detector,
		dispatcher,
		cfg.Ingest,
		runtime.Clock,
		runtime.Logger,
		journalSystem,
		hub,
	)

	d := &Domain{
		Bins:    binsSystem,
		Journal: journalSystem,
		Live:    hub,
		Alerts:  dispatcher,
		Ingest:  ingestSystem,
	}

	if cfg.Storage.Backend == storage.BackendLocal && cfg.Live.Watching() {
		d.watcher = live.NewWatcher(hub, cfg.Storage.Root, cfg.Live, runtime.Logger)
	}

	return d
}

// Start registers the domain's background work with the lifecycle
// coordinator. Infrastructure must already be started.
func (d *Domain) Start(runtime *Runtime) error {
	lc := runtime.Lifecycle

	if err := d.Bins.Start(lc); err != nil {
		return fmt.Errorf("bins start failed: %w", err)
	}
	if err := d.Alerts.Start(lc); err != nil {
		return fmt.Errorf("alerts start failed: %w", err)
	}
	if err := d.Live.Start(lc); err != nil {
		return fmt.Errorf("live start failed: %w", err)
	}
	if d.watcher != nil {
		if err := d.watcher.Start(lc); err != nil {
			return fmt.Errorf("watcher start failed: %w", err)
		}
	}
	return nil
}
