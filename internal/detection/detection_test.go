package detection_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/JaimeStill/binsort/internal/detection"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sample() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for x := range 8 {
		for y := range 6 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 40), B: 90, A: 255})
		}
	}
	return img
}

func TestDecode(t *testing.T) {
	var pngBuf, jpegBuf bytes.Buffer
	if err := png.Encode(&pngBuf, sample()); err != nil {
		t.Fatal(err)
	}
	if err := jpeg.Encode(&jpegBuf, sample(), nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"png", pngBuf.Bytes(), false},
		{"jpeg", jpegBuf.Bytes(), false},
		{"empty", nil, true},
		{"garbage", []byte("definitely not an image"), true},
		{"truncated png", pngBuf.Bytes()[:20], true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := detection.Decode(tt.data)
			if tt.wantErr {
				if !errors.Is(err, detection.ErrDecodeFailure) {
					t.Fatalf("Decode error = %v, want ErrDecodeFailure", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
				t.Errorf("bounds = %v, want 8x6", b)
			}
		})
	}
}

func TestPick(t *testing.T) {
	tests := []struct {
		draw float64
		want string
	}{
		{0, "plastic"},
		{0.249, "plastic"},
		{0.25, "paper"},
		{0.4, "paper"},
		{0.5, "metal"},
		{0.65, "glass"},
		{0.8, "organic"},
		{0.97, "trash"},
		{0.9999, "trash"},
	}

	for _, tt := range tests {
		if got := detection.Pick(tt.draw); got != tt.want {
			t.Errorf("Pick(%v) = %q, want %q", tt.draw, got, tt.want)
		}
	}
}

func TestFallbackDetect(t *testing.T) {
	fb := detection.NewFallback(0.8, rand.NewPCG(1, 2), discardLogger())

	allowed := map[string]bool{
		"plastic": true, "paper": true, "metal": true,
		"glass": true, "organic": true, "trash": true,
	}

	seen := make(map[string]int)
	for range 500 {
		res, err := fb.Detect(context.Background(), sample())
		if err != nil {
			t.Fatalf("Detect: %v", err)
		}
		if !allowed[res.Label] {
			t.Fatalf("unexpected label %q", res.Label)
		}
		if res.Confidence != 0.8 {
			t.Errorf("Confidence = %v, want 0.8", res.Confidence)
		}
		if res.Detector != detection.FallbackName {
			t.Errorf("Detector = %q, want %q", res.Detector, detection.FallbackName)
		}
		seen[res.Label]++
	}

	if seen["plastic"] <= seen["trash"] {
		t.Errorf("distribution skewed: plastic %d, trash %d", seen["plastic"], seen["trash"])
	}
}

func TestFallbackDeterministicWithSeed(t *testing.T) {
	a := detection.NewFallback(0.8, rand.NewPCG(7, 7), discardLogger())
	b := detection.NewFallback(0.8, rand.NewPCG(7, 7), discardLogger())

	for range 20 {
		ra, _ := a.Detect(context.Background(), sample())
		rb, _ := b.Detect(context.Background(), sample())
		if ra.Label != rb.Label {
			t.Fatalf("same seed diverged: %q vs %q", ra.Label, rb.Label)
		}
	}
}

func TestFallbackHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fb := detection.NewFallback(0.8, nil, discardLogger())
	if _, err := fb.Detect(ctx, sample()); !errors.Is(err, context.Canceled) {
		t.Errorf("Detect error = %v, want context.Canceled", err)
	}
}

type stubDetector struct{}

func (stubDetector) Name() string { return "stub" }

func (stubDetector) Detect(context.Context, image.Image) (detection.Result, error) {
	return detection.Result{Label: "plastic", Confidence: 1, Detector: "stub"}, nil
}

func TestSelect(t *testing.T) {
	disabled := false
	failing := func() (detection.Detector, error) { return nil, errors.New("no model") }
	working := func() (detection.Detector, error) { return stubDetector{}, nil }

	tests := []struct {
		name     string
		load     detection.Loader
		cfg      detection.Config
		wantName string
		wantErr  error
	}{
		{"model loads", working, detection.Config{}, "stub", nil},
		{"fallback enabled by default", failing, detection.Config{FallbackConfidence: 0.8}, detection.FallbackName, nil},
		{"fallback disabled", failing, detection.Config{Fallback: &disabled}, "", detection.ErrModelUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det, err := detection.Select(tt.load, tt.cfg, discardLogger())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Select error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if det.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", det.Name(), tt.wantName)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_DETECTOR_LABELS", "can, bottle ,peel")
	t.Setenv("TEST_DETECTOR_FALLBACK", "false")

	cfg := detection.Config{}
	env := &detection.Env{Labels: "TEST_DETECTOR_LABELS", Fallback: "TEST_DETECTOR_FALLBACK"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.Format != detection.FormatYOLO || cfg.InputSize != 640 || cfg.FallbackConfidence != 0.8 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Labels) != 3 || cfg.Labels[1] != "bottle" {
		t.Errorf("Labels = %v, want [can bottle peel]", cfg.Labels)
	}
	if cfg.FallbackEnabled() {
		t.Error("FallbackEnabled() = true, want false")
	}

	bad := detection.Config{Format: "rcnn"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("Finalize accepted unsupported format")
	}
}
