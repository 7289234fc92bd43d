package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText folds accented glyphs to their base letter (ñ -> n, é -> e)
// and lowercases the result. Names and document text must both go through it
// before any comparison.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	// transform.Chain keeps state, so a fresh chain per call keeps this safe
	// for concurrent use.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}
