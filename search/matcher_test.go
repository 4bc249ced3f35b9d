package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(content string) TextUnit {
	return TextUnit{Content: content, Location: Line(1)}
}

func TestMatcherSpans(t *testing.T) {
	tests := []struct {
		name          string
		pattern       string
		mode          Mode
		caseSensitive bool
		content       string
		want          []Span
	}{
		{"case-insensitive by default", "Error", Literal, false, "an error occurred", []Span{{3, 8}}},
		{"case-sensitive miss", "Error", Literal, true, "an error occurred", nil},
		{"case-sensitive hit", "error", Literal, true, "an error, an Error", []Span{{3, 8}}},
		{"non-overlapping", "aa", Literal, false, "aaaa", []Span{{0, 2}, {2, 4}}},
		{"non-overlapping case-sensitive", "aa", Literal, true, "aaaaa", []Span{{0, 2}, {2, 4}}},
		{"metacharacters are literal", "a.b", Literal, false, "axb a.b", []Span{{4, 7}}},
		{"folded multibyte", "ÉCOLE", Literal, false, "l'école", []Span{{2, 8}}},
		{"regex", `\d+`, Regex, false, "a1 b22", []Span{{1, 2}, {4, 6}}},
		{"regex case-insensitive", "hel+o", Regex, false, "say HELLO", []Span{{4, 9}}},
		{"regex case-sensitive", "hel+o", Regex, true, "say HELLO", nil},
		{"zero-width matches dropped", "x*", Regex, false, "abc", nil},
		{"zero-width mixed", "b*", Regex, false, "abbc", []Span{{1, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.pattern, tt.mode, tt.caseSensitive)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Spans(tt.content))
		})
	}
}

func TestMatcherScan(t *testing.T) {
	m, err := Compile("hello", Literal, false)
	require.NoError(t, err)

	u := TextUnit{Content: "hello world, Hello again", Location: Line(2), Index: 1}
	rec, ok := m.Scan(u)
	require.True(t, ok)
	assert.Equal(t, u, rec.Unit)
	assert.Equal(t, []Span{{0, 5}, {13, 18}}, rec.Spans)

	again, _ := m.Scan(u)
	assert.Equal(t, rec, again)

	_, ok = m.Scan(unit("nothing here"))
	assert.False(t, ok)
}

func TestScanConvenience(t *testing.T) {
	rec, ok, err := Scan(unit("an error occurred"), "Error", Literal, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []Span{{3, 8}}, rec.Spans)

	_, _, err = Scan(unit("x"), "", Literal, false)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestCompileInvalidPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		mode    Mode
	}{
		{"empty literal", "", Literal},
		{"empty regex", "", Regex},
		{"unbalanced group", "(abc", Regex},
		{"bad repetition", "a**", Regex},
		{"unknown mode", "abc", Mode(9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.pattern, tt.mode, false)
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}

func TestLiteralIsNotRegex(t *testing.T) {
	m, err := Compile("(abc", Literal, true)
	require.NoError(t, err)
	assert.Equal(t, []Span{{2, 6}}, m.Spans("x (abc"))
}
