package waste_test

import (
	"testing"

	"github.com/JaimeStill/binsort/internal/waste"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  waste.Category
	}{
		{"plastic bottle", "plastic bottle", waste.Plastic},
		{"banana peel", "banana peel", waste.Organic},
		{"used syringe", "used syringe", waste.Medical},
		{"cardboard", "cardboard", waste.Paper},
		{"mixed case and spaces", "  Glass JAR  ", waste.Glass},
		{"tin can", "tin can", waste.Metal},
		{"cell phone", "cell phone", waste.Electronic},
		{"battery beats plastic", "battery in plastic casing", waste.Battery},
		{"garbage", "garbage", waste.Trash},
		{"no keyword", "zebra", waste.Unknown},
		{"short keyword plural", "soda cans", waste.Metal},
		{"short keyword after punctuation", "coffee-cup", waste.Plastic},
		{"short keyword inside painting", "painting", waste.Unknown},
		{"short keyword inside carpet", "carpet", waste.Unknown},
		{"short keyword inside toolbox", "toolbox", waste.Unknown},
		{"short keyword inside cupboard", "cupboard", waste.Unknown},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := waste.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, c := range waste.Categories() {
		t.Run(string(c), func(t *testing.T) {
			if got := waste.Normalize(string(c)); got != c {
				t.Errorf("Normalize(%q) = %q, want %q", c, got, c)
			}
			if again := waste.Normalize(string(waste.Normalize(string(c)))); again != c {
				t.Errorf("Normalize twice = %q, want %q", again, c)
			}
		})
	}
}
