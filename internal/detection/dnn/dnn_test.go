package dnn_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/binsort/internal/detection"
	"github.com/JaimeStill/binsort/internal/detection/dnn"
)

func TestLabelFor(t *testing.T) {
	labels := detection.DefaultLabels

	tests := []struct {
		id   int
		want string
	}{
		{0, "plastic"},
		{6, "cardboard"},
		{7, dnn.UnknownLabel},
		{-1, dnn.UnknownLabel},
	}

	for _, tt := range tests {
		if got := dnn.LabelFor(labels, tt.id); got != tt.want {
			t.Errorf("LabelFor(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestNewMissingModel(t *testing.T) {
	cfg := detection.Config{Model: filepath.Join(t.TempDir(), "absent.onnx")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := dnn.New(cfg, logger); err == nil {
		t.Fatal("New succeeded without a model file")
	}

	det, err := detection.Select(dnn.Loader(cfg, logger), cfg, logger)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if det.Name() != detection.FallbackName {
		t.Errorf("Select chose %q, want fallback", det.Name())
	}
}
