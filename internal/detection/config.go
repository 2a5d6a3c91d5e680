package detection

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Output layouts understood by the DNN detector.
const (
	FormatYOLO = "yolo"
	FormatSSD  = "ssd"
)

// DefaultLabels is the class vocabulary of the bundled waste model.
var DefaultLabels = []string{"plastic", "paper", "metal", "glass", "organic", "trash", "cardboard"}

// Config locates the detection model and tunes inference.
type Config struct {
	Model              string   `toml:"model"`
	ModelConfig        string   `toml:"model_config"`
	Format             string   `toml:"format"`
	Labels             []string `toml:"labels"`
	InputSize          int      `toml:"input_size"`
	Threshold          float64  `toml:"threshold"`
	Fallback           *bool    `toml:"fallback"`
	FallbackConfidence float64  `toml:"fallback_confidence"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Model              string
	ModelConfig        string
	Format             string
	Labels             string
	InputSize          string
	Threshold          string
	Fallback           string
	FallbackConfidence string
}

// FallbackEnabled reports whether the fallback detector may replace a missing model.
func (c *Config) FallbackEnabled() bool {
	return c.Fallback == nil || *c.Fallback
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.ModelConfig != "" {
		c.ModelConfig = overlay.ModelConfig
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if len(overlay.Labels) > 0 {
		c.Labels = overlay.Labels
	}
	if overlay.InputSize != 0 {
		c.InputSize = overlay.InputSize
	}
	if overlay.Threshold != 0 {
		c.Threshold = overlay.Threshold
	}
	if overlay.Fallback != nil {
		c.Fallback = overlay.Fallback
	}
	if overlay.FallbackConfidence != 0 {
		c.FallbackConfidence = overlay.FallbackConfidence
	}
}

func (c *Config) loadDefaults() {
	if c.Model == "" {
		c.Model = "models/waste.onnx"
	}
	if c.Format == "" {
		c.Format = FormatYOLO
	}
	if len(c.Labels) == 0 {
		c.Labels = append([]string(nil), DefaultLabels...)
	}
	if c.InputSize == 0 {
		c.InputSize = 640
	}
	if c.Threshold == 0 {
		c.Threshold = 0.25
	}
	if c.FallbackConfidence == 0 {
		c.FallbackConfidence = 0.8
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := lookup(env.Model); v != "" {
		c.Model = v
	}
	if v := lookup(env.ModelConfig); v != "" {
		c.ModelConfig = v
	}
	if v := lookup(env.Format); v != "" {
		c.Format = v
	}
	if v := lookup(env.Labels); v != "" {
		var labels []string
		for l := range strings.SplitSeq(v, ",") {
			if l = strings.TrimSpace(l); l != "" {
				labels = append(labels, l)
			}
		}
		c.Labels = labels
	}
	if v := lookup(env.InputSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.InputSize = n
		}
	}
	if v := lookup(env.Threshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Threshold = f
		}
	}
	if v := lookup(env.Fallback); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Fallback = &b
		}
	}
	if v := lookup(env.FallbackConfidence); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.FallbackConfidence = f
		}
	}
}

func (c *Config) validate() error {
	if c.Format != FormatYOLO && c.Format != FormatSSD {
		return fmt.Errorf("unsupported detector format: %s", c.Format)
	}
	if len(c.Labels) == 0 {
		return fmt.Errorf("labels required")
	}
	if c.InputSize < 32 {
		return fmt.Errorf("input_size must be at least 32")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0, 1]")
	}
	if c.FallbackConfidence < 0 || c.FallbackConfidence > 1 {
		return fmt.Errorf("fallback_confidence must be within [0, 1]")
	}
	return nil
}

func lookup(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}
