package matcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Policy selects how the number associated with a located name is read.
type Policy string

const (
	// PolicyTrailing reads the first digit run following the name and
	// subtracts one from it.
	PolicyTrailing Policy = "trailing-minus-one"
	// PolicyLeftmost reads the digit run that opens the line holding the name.
	PolicyLeftmost Policy = "leftmost-in-line"
)

// DefaultWindow is how many characters past the name the trailing policy
// looks.
const DefaultWindow = 50

// ParsePolicy maps a configuration value onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyTrailing, "trailing", "":
		return PolicyTrailing, nil
	case PolicyLeftmost, "leftmost":
		return PolicyLeftmost, nil
	}
	return "", fmt.Errorf("unknown number policy %q", s)
}

// Match locates a name inside a normalized document text.
type Match struct {
	Offset int
	Length int
}

var (
	reDigits     = regexp.MustCompile(`[0-9]+`)
	reLineNumber = regexp.MustCompile(`^[\s\p{Zs}]*([0-9]+)`)
)

// Extractor reads the number associated with a match.
type Extractor struct {
	Policy Policy
	Window int
	// OffByOne enables the minus-one correction of the trailing policy.
	OffByOne bool
}

// Extract returns the number for the first match that yields one.
func (e Extractor) Extract(text string, matches []Match) (int, bool) {
	if len(matches) == 0 {
		return 0, false
	}
	if e.Policy == PolicyLeftmost {
		return leftmostInLine(text, matches[0])
	}

	window := e.Window
	if window <= 0 {
		window = DefaultWindow
	}
	for _, m := range matches {
		if n, ok := e.trailingNumber(text, m, window); ok {
			return n, true
		}
	}
	return 0, false
}

func (e Extractor) trailingNumber(text string, m Match, window int) (int, bool) {
	start := m.Offset + m.Length
	if start < 0 || start >= len(text) {
		return 0, false
	}
	end := advanceRunes(text, start, window)

	digits := reDigits.FindString(text[start:end])
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	if e.OffByOne {
		n--
	}
	if n < 0 {
		return 0, false
	}
	return n, true
}

func leftmostInLine(text string, m Match) (int, bool) {
	if m.Offset < 0 || m.Offset > len(text) {
		return 0, false
	}
	lineStart := strings.LastIndexByte(text[:m.Offset], '\n') + 1
	lineEnd := len(text)
	if i := strings.IndexByte(text[m.Offset:], '\n'); i >= 0 {
		lineEnd = m.Offset + i
	}

	sub := reLineNumber.FindStringSubmatch(text[lineStart:lineEnd])
	if len(sub) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(sub[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
