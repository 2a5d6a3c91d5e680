// Package detection turns a raster image into a single labelled detection.
// Detectors are chosen once at startup and injected into the pipeline; a
// weighted-random fallback stands in when the model cannot be loaded.
package detection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDecodeFailure indicates the input bytes are empty or not a supported image.
	ErrDecodeFailure = errors.New("image could not be decoded")
	// ErrModelUnavailable indicates the detection model could not be loaded.
	ErrModelUnavailable = errors.New("detection model unavailable")
)

// Result is the outcome of one inference. An empty Label means nothing was detected.
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Detector   string  `json:"detector"`
}

// Detected reports whether the detector produced a label.
func (r Result) Detected() bool {
	return r.Label != ""
}

// Detector classifies a decoded image. Implementations must be safe for
// concurrent use.
type Detector interface {
	Name() string
	Detect(ctx context.Context, img image.Image) (Result, error)
}

// Decode parses png, jpeg or webp bytes and applies any EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecodeFailure)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return img, nil
}
