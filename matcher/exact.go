package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExactSearch returns the offset of every whole-word occurrence of name in
// text. Both inputs are normalized first; offsets index the normalized text.
func ExactSearch(name, text string) []int {
	return exactOffsets(NormalizeText(strings.TrimSpace(name)), NormalizeText(text))
}

// exactOffsets works on already normalized inputs.
func exactOffsets(name, text string) []int {
	if name == "" || text == "" {
		return nil
	}

	var offsets []int
	for from := 0; from <= len(text)-len(name); {
		i := strings.Index(text[from:], name)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(name)
		if wordBoundaryBefore(text, start) && wordBoundaryAfter(text, end) {
			offsets = append(offsets, start)
			from = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return offsets
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordBoundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func wordBoundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}
