package search

import (
	"context"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CharsPerPage is the assumed number of characters on a paginated document page.
// Page numbers derived from it are estimates only.
const CharsPerPage = 2000

// sentenceEndRegex marks a sentence boundary: terminal punctuation followed by whitespace
var sentenceEndRegex = regexp.MustCompile(`[.!?]\s+`)

// estimatePageCount returns max(1, total/CharsPerPage + 1)
func estimatePageCount(totalChars int) int {
	return max(1, totalChars/CharsPerPage+1)
}

// estimatePage maps a character offset to a 1-based page by its share of the text
func estimatePage(offset, totalChars, pageCount int) int {
	if totalChars <= 0 || offset <= 0 {
		return 1
	}
	return min(pageCount, max(1, offset*pageCount/totalChars+1))
}

// sentenceStream splits extracted document text into sentences on demand.
// Offsets advance with the scan position, so page estimates never go backwards
// even when the same sentence text repeats.
type sentenceStream struct {
	ctx       context.Context
	text      string
	pos       int // byte position of the next sentence
	runePos   int // rune position matching pos
	total     int
	pageCount int
	index     int
}

func newSentenceStream(ctx context.Context, text string) *sentenceStream {
	total := utf8.RuneCountInString(text)
	return &sentenceStream{
		ctx:       ctx,
		text:      text,
		total:     total,
		pageCount: estimatePageCount(total),
	}
}

func (s *sentenceStream) Next() (TextUnit, error) {
	for {
		if err := s.ctx.Err(); err != nil {
			return TextUnit{}, err
		}
		if s.pos >= len(s.text) {
			return TextUnit{}, io.EOF
		}

		rest := s.text[s.pos:]
		var seg string
		var advance int
		if loc := sentenceEndRegex.FindStringIndex(rest); loc != nil {
			seg = rest[:loc[0]+1]
			advance = loc[1]
		} else {
			seg = rest
			advance = len(rest)
		}

		lead := len(seg) - len(strings.TrimLeftFunc(seg, unicode.IsSpace))
		offset := s.runePos + utf8.RuneCountInString(seg[:lead])

		s.runePos += utf8.RuneCountInString(rest[:advance])
		s.pos += advance

		content := collapseWhitespace(seg)
		if content == "" {
			continue
		}

		u := TextUnit{
			Content:  content,
			Location: Page(estimatePage(offset, s.total, s.pageCount)),
			Index:    s.index,
			Offset:   offset,
		}
		s.index++
		return u, nil
	}
}

func (s *sentenceStream) Close() error {
	s.pos = len(s.text)
	return nil
}
