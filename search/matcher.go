package search

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how a pattern is interpreted
type Mode int

const (
	// Literal matches the pattern as a plain substring
	Literal Mode = iota
	// Regex compiles the pattern as an RE2 expression
	Regex
)

func (m Mode) String() string {
	if m == Regex {
		return "regex"
	}
	return "literal"
}

// Matcher finds pattern occurrences inside text units. It is safe for concurrent use.
type Matcher struct {
	pattern       string
	mode          Mode
	caseSensitive bool
	re            *regexp.Regexp // nil for case-sensitive literal search
}

// Compile validates the pattern once so scanning never fails per unit
func Compile(pattern string, mode Mode, caseSensitive bool) (*Matcher, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}

	m := &Matcher{pattern: pattern, mode: mode, caseSensitive: caseSensitive}

	expr := pattern
	switch mode {
	case Literal:
		if caseSensitive {
			return m, nil
		}
		// Case folding through the regexp engine keeps offsets on the original bytes
		expr = regexp.QuoteMeta(pattern)
	case Regex:
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidPattern, int(mode))
	}
	if !caseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	m.re = re
	return m, nil
}

// Pattern returns the pattern as given
func (m *Matcher) Pattern() string { return m.pattern }

// Mode returns the matching mode
func (m *Matcher) Mode() Mode { return m.mode }

// Spans returns the non-overlapping occurrences in content, left to right.
// Empty matches are skipped.
func (m *Matcher) Spans(content string) []Span {
	if m.re == nil {
		return literalSpans(content, m.pattern)
	}

	var spans []Span
	for _, loc := range m.re.FindAllStringIndex(content, -1) {
		if loc[1] > loc[0] {
			spans = append(spans, Span{Start: loc[0], End: loc[1]})
		}
	}
	return spans
}

// Scan returns a match record when the unit contains at least one occurrence
func (m *Matcher) Scan(unit TextUnit) (MatchRecord, bool) {
	spans := m.Spans(unit.Content)
	if len(spans) == 0 {
		return MatchRecord{}, false
	}
	return MatchRecord{Unit: unit, Spans: spans}, true
}

// Scan compiles the pattern and scans a single unit
func Scan(unit TextUnit, pattern string, mode Mode, caseSensitive bool) (MatchRecord, bool, error) {
	m, err := Compile(pattern, mode, caseSensitive)
	if err != nil {
		return MatchRecord{}, false, err
	}
	rec, ok := m.Scan(unit)
	return rec, ok, nil
}

// literalSpans finds exact occurrences, resuming after each match
func literalSpans(content, needle string) []Span {
	var spans []Span
	pos := 0
	for pos <= len(content)-len(needle) {
		i := strings.Index(content[pos:], needle)
		if i < 0 {
			break
		}
		start := pos + i
		spans = append(spans, Span{Start: start, End: start + len(needle)})
		pos = start + len(needle)
	}
	return spans
}
