// Package dnn runs a waste detection model through the OpenCV dnn module.
package dnn

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/JaimeStill/binsort/internal/detection"
)

// Name identifies results produced by this detector.
const Name = "dnn"

// UnknownLabel is reported for class ids outside the label vocabulary.
const UnknownLabel = "unknown"

// Detector wraps a loaded network. gocv.Net is not safe for concurrent
// inference, so Detect serializes calls.
type Detector struct {
	mu        sync.Mutex
	net       gocv.Net
	format    string
	labels    []string
	size      int
	threshold float64
	logger    *slog.Logger
}

// New loads the network described by cfg. It fails when the model file is
// missing or OpenCV cannot read it.
func New(cfg detection.Config, logger *slog.Logger) (*Detector, error) {
	if _, err := os.Stat(cfg.Model); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}
	if cfg.ModelConfig != "" {
		if _, err := os.Stat(cfg.ModelConfig); err != nil {
			return nil, fmt.Errorf("model config file: %w", err)
		}
	}

	net := gocv.ReadNet(cfg.Model, cfg.ModelConfig)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", cfg.Model)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set target: %w", err)
	}

	return &Detector{
		net:       net,
		format:    cfg.Format,
		labels:    cfg.Labels,
		size:      cfg.InputSize,
		threshold: cfg.Threshold,
		logger:    logger.With("system", "detection", "detector", Name),
	}, nil
}

// Loader adapts New to detection.Loader.
func Loader(cfg detection.Config, logger *slog.Logger) detection.Loader {
	return func() (detection.Detector, error) {
		return New(cfg, logger)
	}
}

func (d *Detector) Name() string {
	return Name
}

// Close releases the network.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

func (d *Detector) Detect(ctx context.Context, img image.Image) (detection.Result, error) {
	if err := ctx.Err(); err != nil {
		return detection.Result{}, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return detection.Result{}, fmt.Errorf("%w: %v", detection.ErrDecodeFailure, err)
	}
	defer mat.Close()

	if mat.Empty() {
		return detection.Result{}, fmt.Errorf("%w: empty raster", detection.ErrDecodeFailure)
	}

	blob := d.blob(mat)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	d.mu.Unlock()
	defer output.Close()

	var best candidate
	switch d.format {
	case detection.FormatSSD:
		best = bestSSD(output, d.threshold)
	default:
		best = bestYOLO(output, d.threshold)
	}

	if best.classID < 0 {
		d.logger.Debug("no detection above threshold", "threshold", d.threshold)
		return detection.Result{Detector: Name}, nil
	}

	return detection.Result{
		Label:      d.label(best.classID),
		Confidence: float64(best.confidence),
		Detector:   Name,
	}, nil
}

func (d *Detector) blob(mat gocv.Mat) gocv.Mat {
	size := image.Pt(d.size, d.size)
	if d.format == detection.FormatSSD {
		return gocv.BlobFromImage(mat, 1.0/127.5, size, gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	}
	return gocv.BlobFromImage(mat, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
}

func (d *Detector) label(classID int) string {
	return LabelFor(d.labels, classID)
}

// LabelFor maps a class id onto the vocabulary, reporting UnknownLabel for
// ids outside it.
func LabelFor(labels []string, classID int) string {
	if classID < 0 || classID >= len(labels) {
		return UnknownLabel
	}
	return labels[classID]
}
