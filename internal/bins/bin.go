// Package bins owns the fixed set of disposal bins: routing a waste category
// to its bin, and reporting each bin's contents and fill state from storage.
package bins

import (
	"fmt"
	"path"
	"strings"
)

// ID identifies a disposal bin. It doubles as the bin's storage container name.
type ID string

const (
	// Red collects hazardous waste (A) and anything that cannot be classified.
	Red ID = "Red"
	// Green collects biodegradable waste (B).
	Green ID = "Green"
	// Blue collects recyclables (C).
	Blue ID = "Blue"
)

var all = []ID{Red, Green, Blue}

// All returns every bin in display order.
func All() []ID {
	return append([]ID(nil), all...)
}

// Parse resolves a bin identifier case-insensitively.
func Parse(s string) (ID, error) {
	for _, id := range all {
		if strings.EqualFold(s, string(id)) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBin, s)
}

// Code returns the bin's letter designation.
func (id ID) Code() string {
	switch id {
	case Red:
		return "A"
	case Green:
		return "B"
	case Blue:
		return "C"
	}
	return ""
}

// Kind describes the waste stream the bin accepts.
func (id ID) Kind() string {
	switch id {
	case Red:
		return "hazardous"
	case Green:
		return "biodegradable"
	case Blue:
		return "recyclable"
	}
	return ""
}

var (
	biodegradable = []string{"organic", "food", "vegetable", "fruit", "compost"}
	recyclable    = []string{"paper", "cardboard", "metal", "aluminum", "glass", "plastic", "pet", "hdpe", "bottle", "can"}
	hazardous     = []string{"battery", "chemical", "medical", "electronic", "e-waste"}
)

// Resolve routes a waste category to exactly one bin. Rules are checked in
// order and the first containment match wins; anything unmatched, including
// an empty category, goes to Red.
func Resolve(category string) ID {
	c := strings.ToLower(strings.TrimSpace(category))

	switch {
	case containsAny(c, biodegradable):
		return Green
	case containsAny(c, recyclable):
		return Blue
	case containsAny(c, hazardous):
		return Red
	default:
		return Red
	}
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

var imageExts = []string{".jpg", ".jpeg", ".png", ".webp"}

// IsImage reports whether name carries one of the counted image extensions.
func IsImage(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range imageExts {
		if ext == e {
			return true
		}
	}
	return false
}
