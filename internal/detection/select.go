package detection

import (
	"fmt"
	"log/slog"
)

// Loader constructs the model-backed detector.
type Loader func() (Detector, error)

// Select returns the model-backed detector when load succeeds. On failure it
// returns the fallback when cfg allows it and an error otherwise. It is meant
// to run once at startup.
func Select(load Loader, cfg Config, logger *slog.Logger) (Detector, error) {
	logger = logger.With("system", "detection")

	det, err := load()
	if err == nil {
		logger.Info("detector loaded", "detector", det.Name(), "model", cfg.Model)
		return det, nil
	}

	if !cfg.FallbackEnabled() {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	logger.Warn("model unavailable, using fallback detector", "model", cfg.Model, "error", err)
	return NewFallback(cfg.FallbackConfidence, nil, logger), nil
}
