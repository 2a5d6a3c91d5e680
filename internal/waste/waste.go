// Package waste maps free-form detector labels onto the closed vocabulary of
// waste categories.
package waste

import (
	"strings"
	"unicode"
)

// Category is a canonical waste category. The zero value means absent.
type Category string

const (
	Organic    Category = "organic"
	Paper      Category = "paper"
	Plastic    Category = "plastic"
	Metal      Category = "metal"
	Glass      Category = "glass"
	Battery    Category = "battery"
	Electronic Category = "electronic"
	Medical    Category = "medical"
	Trash      Category = "trash"
	Unknown    Category = "unknown"
)

type rule struct {
	category Category
	keywords []string
}

// Rules are checked in order; hazardous categories come first so that a label
// such as "battery pack plastic casing" is never routed as recyclable.
var rules = []rule{
	{Battery, []string{"battery", "batteries", "accumulator"}},
	{Electronic, []string{"electronic", "e-waste", "phone", "laptop", "computer", "circuit", "cable", "charger", "keyboard", "remote"}},
	{Medical, []string{"medical", "syringe", "needle", "mask", "glove", "bandage", "pill", "medicine"}},
	{Organic, []string{"organic", "food", "fruit", "vegetable", "banana", "apple", "orange", "peel", "compost", "leaf", "leaves", "egg", "bread", "broccoli", "carrot", "berry", "sandwich", "pizza"}},
	{Glass, []string{"glass", "jar", "wine"}},
	{Metal, []string{"metal", "aluminum", "aluminium", "tin", "can", "steel", "foil"}},
	{Paper, []string{"paper", "cardboard", "carton", "newspaper", "magazine", "book", "box"}},
	{Plastic, []string{"plastic", "pet", "hdpe", "bottle", "wrapper", "straw", "cup"}},
	{Trash, []string{"trash", "garbage", "waste", "rubbish", "litter"}},
}

// shortKeyword is the length below which a keyword must match a whole word,
// so "tin" matches "tin lid" but not "painting".
const shortKeyword = 4

// Normalize derives the category of a raw detector label by keyword
// containment. It is pure and total: an empty label yields "" and a label
// matching no keyword yields Unknown. Canonical names map to themselves.
func Normalize(raw string) Category {
	label := strings.ToLower(strings.TrimSpace(raw))
	if label == "" {
		return ""
	}

	words := strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, r := range rules {
		for _, kw := range r.keywords {
			if matches(label, words, kw) {
				return r.category
			}
		}
	}

	return Unknown
}

func matches(label string, words []string, kw string) bool {
	if len(kw) >= shortKeyword {
		return strings.Contains(label, kw)
	}
	for _, w := range words {
		if w == kw || w == kw+"s" || w == kw+"es" {
			return true
		}
	}
	return false
}

// Categories returns the full vocabulary, including Unknown.
func Categories() []Category {
	return []Category{
		Organic, Paper, Plastic, Metal, Glass,
		Battery, Electronic, Medical, Trash, Unknown,
	}
}
