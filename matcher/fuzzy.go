package matcher

import (
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// DefaultFuzzyThreshold is the minimum partial-ratio score accepted as a match.
const DefaultFuzzyThreshold = 70

// FuzzyResult describes the best approximate location of a name in a text.
// Offset and Length are byte positions in the normalized text and are only
// meaningful when Score > 0.
type FuzzyResult struct {
	Matched bool
	Score   int
	Offset  int
	Length  int
}

// FuzzyMatcher scores approximate occurrences of a normalized name in a
// normalized text.
type FuzzyMatcher interface {
	Match(name, text string) FuzzyResult
}

// PartialRatio is the default FuzzyMatcher.
type PartialRatio struct {
	Threshold int
}

func (p PartialRatio) Match(name, text string) FuzzyResult {
	res := partialRatio(name, text)
	res.Matched = res.Score > 0 && res.Score >= p.Threshold
	return res
}

// FuzzySearch normalizes both inputs and reports whether name approximately
// occurs in text with a partial-ratio score of at least threshold.
func FuzzySearch(name, text string, threshold int) FuzzyResult {
	return PartialRatio{Threshold: threshold}.Match(
		NormalizeText(strings.TrimSpace(name)),
		NormalizeText(text),
	)
}

// substitutions count as a delete plus an insert, as in the classic ratio
var ratioParams = levenshtein.NewParams().SubCost(2)

// partialRatio slides a window as wide as name over text, anchored at word
// starts, and keeps the best scoring window.
func partialRatio(name, text string) FuzzyResult {
	if name == "" || text == "" {
		return FuzzyResult{}
	}

	nameLen := utf8.RuneCountInString(name)
	if utf8.RuneCountInString(text) <= nameLen {
		return FuzzyResult{Score: ratio(name, nameLen, text), Offset: 0, Length: len(text)}
	}

	var best FuzzyResult
	for _, start := range wordStarts(text) {
		end := advanceRunes(text, start, nameLen)
		window := text[start:end]
		score := ratio(name, nameLen, window)
		if score > best.Score {
			best = FuzzyResult{Score: score, Offset: start, Length: end - start}
			if score == 100 {
				break
			}
		}
	}
	return best
}

func ratio(a string, aLen int, b string) int {
	lensum := aLen + utf8.RuneCountInString(b)
	if lensum == 0 {
		return 100
	}
	d := levenshtein.Distance(a, b, ratioParams)
	if d >= lensum {
		return 0
	}
	return (100*(lensum-d) + lensum/2) / lensum
}

// wordStarts lists the byte offsets where a word begins.
func wordStarts(text string) []int {
	var starts []int
	prevWord := false
	for i, r := range text {
		w := isWordRune(r)
		if w && !prevWord {
			starts = append(starts, i)
		}
		prevWord = w
	}
	return starts
}

// advanceRunes returns the byte offset n runes past from, clipped to len(text).
func advanceRunes(text string, from, n int) int {
	i := from
	for ; n > 0 && i < len(text); n-- {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}
