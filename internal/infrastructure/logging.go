package infrastructure

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/JaimeStill/binsort/internal/config"
)

// NewLogger builds the service logger from cfg. Records go to stderr and,
// when cfg.File is set, to a size-rotated file as well. The returned closer
// is nil when no file is configured.
func NewLogger(cfg *config.LoggingConfig) (*slog.Logger, io.Closer) {
	var (
		out  io.Writer = os.Stderr
		sink io.Closer
	)

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, rotator)
		sink = rotator
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), sink
}
