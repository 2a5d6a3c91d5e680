// Package formatting converts byte counts to and from the human-readable
// sizes used in config files and on bin pages.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Sizes are base-1024; the IEC spellings (KiB, MiB, ...) are accepted as aliases.
var units = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with the largest unit that keeps the value at or
// above one, using precision decimal places for anything larger than bytes.
func FormatBytes(n int64, precision int) string {
	if n < 1024 {
		return strconv.FormatInt(n, 10) + " B"
	}

	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}

	return strconv.FormatFloat(size, 'f', max(precision, 0), 64) + " " + units[i]
}

// ParseBytes reads sizes such as "10MB", "1.5 GiB", or a bare byte count.
// Units are case-insensitive.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, unicode.IsLetter)
	number, unit := s, ""
	if split >= 0 {
		number, unit = strings.TrimSpace(s[:split]), s[split:]
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	scale, err := unitScale(unit)
	if err != nil {
		return 0, err
	}

	return int64(value * float64(scale)), nil
}

func unitScale(unit string) (int64, error) {
	u := strings.ToUpper(unit)
	if u == "" {
		return 1, nil
	}
	if len(u) == 3 && u[1] == 'I' && u[2] == 'B' {
		u = u[:1] + "B"
	}

	scale := int64(1)
	for _, candidate := range units {
		if candidate == u {
			return scale, nil
		}
		scale *= 1024
	}
	return 0, fmt.Errorf("unknown byte size unit: %q", unit)
}
