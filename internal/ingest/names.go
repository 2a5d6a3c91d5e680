package ingest

import (
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	asciiFold = transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// SecureFilename reduces a client filename to a safe ASCII base name. Path
// components are dropped, whitespace becomes underscores, and the extension
// is kept in lower case. An empty result becomes "image".
func SecureFilename(name string) string {
	name = strings.NewReplacer(`\`, " ", "/", " ").Replace(name)

	ext := strings.ToLower(path.Ext(name))
	base := strings.TrimSuffix(name, path.Ext(name))

	folded, _, err := transform.String(asciiFold, base)
	if err != nil {
		folded = ""
	}
	folded = strings.Join(strings.Fields(folded), "_")
	folded = unsafeChars.ReplaceAllString(folded, "")
	for strings.Contains(folded, "..") {
		folded = strings.ReplaceAll(folded, "..", ".")
	}
	folded = strings.Trim(folded, "._")

	if folded == "" {
		folded = "image"
	}
	return folded + unsafeChars.ReplaceAllString(ext, "")
}

// StoredName builds the unique storage name
// <yyyymmddhhmmss>_<8 random hex>_<sanitized original name>.
func StoredName(now time.Time, original string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return now.Format("20060102150405") + "_" + id[:8] + "_" + SecureFilename(original)
}
