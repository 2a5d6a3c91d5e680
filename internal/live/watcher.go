package live

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"

	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/pkg/lifecycle"
)

// Watcher re-broadcasts bin status when files are added to or removed from
// local bin directories outside the upload pipeline. Bursts of filesystem
// events collapse into one status event per quiet period.
type Watcher struct {
	hub    *Hub
	root   string
	wait   time.Duration
	logger *slog.Logger
}

// NewWatcher creates a Watcher over the bin directories below root.
func NewWatcher(hub *Hub, root string, cfg Config, logger *slog.Logger) *Watcher {
	wait := cfg.DebounceDuration()
	if wait <= 0 {
		wait, _ = time.ParseDuration(DefaultDebounce)
	}
	return &Watcher{
		hub:    hub,
		root:   root,
		wait:   wait,
		logger: logger.With("system", "watcher"),
	}
}

// Start watches every bin directory. The directories must already exist.
func (w *Watcher) Start(lc *lifecycle.Coordinator) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	for _, id := range bins.All() {
		dir := filepath.Join(w.root, string(id))
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.logger.Info("watching bin directories", "root", w.root, "debounce", w.wait)
	lc.Go(func(ctx context.Context) {
		w.loop(ctx, fw)
	})
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer fw.Close()

	debounced := debounce.New(w.wait)
	publish := func() { w.hub.PublishStatus(ctx) }

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				debounced(publish)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}
