package dragdrop

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug lowercases a label, folds accents and joins words with underscores.
// An empty result falls back to "node".
func Slug(label string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(folder, label)
	if err != nil {
		folded = label
	}

	var b strings.Builder

	pendingSep := false

	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}

			pendingSep = false

			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}

	if b.Len() == 0 {
		return "node"
	}

	return b.String()
}
