package detection

import (
	"context"
	"image"
	"log/slog"
	"math/rand/v2"
	"sync"
)

// FallbackName identifies results produced without a model.
const FallbackName = "fallback"

type weighted struct {
	label  string
	weight float64
}

var distribution = []weighted{
	{"plastic", 0.25},
	{"paper", 0.20},
	{"metal", 0.15},
	{"glass", 0.15},
	{"organic", 0.20},
	{"trash", 0.05},
}

// Fallback draws a label from a fixed weighted distribution. It exists so the
// service stays usable for demos when no model is installed; every result is
// logged at WARN and tagged with FallbackName.
type Fallback struct {
	mu         sync.Mutex
	rng        *rand.Rand
	confidence float64
	logger     *slog.Logger
}

// NewFallback creates a fallback detector. A nil src seeds from the runtime.
func NewFallback(confidence float64, src rand.Source, logger *slog.Logger) *Fallback {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Fallback{
		rng:        rand.New(src),
		confidence: confidence,
		logger:     logger.With("system", "detection", "detector", FallbackName),
	}
}

func (f *Fallback) Name() string {
	return FallbackName
}

func (f *Fallback) Detect(ctx context.Context, img image.Image) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	f.mu.Lock()
	draw := f.rng.Float64()
	f.mu.Unlock()

	label := pick(draw)
	f.logger.Warn("fallback prediction", "label", label, "confidence", f.confidence)

	return Result{
		Label:      label,
		Confidence: f.confidence,
		Detector:   FallbackName,
	}, nil
}

func pick(draw float64) string {
	var cumulative float64
	for _, w := range distribution {
		cumulative += w.weight
		if draw < cumulative {
			return w.label
		}
	}
	return distribution[len(distribution)-1].label
}
