package search

// AnnotatedText is unit content plus the spans a renderer should emphasize
type AnnotatedText struct {
	Content string `json:"content" yaml:"content"`
	Spans   []Span `json:"spans" yaml:"spans"`
}

// Segment is a run of content that is either emphasized or not
type Segment struct {
	Text     string
	Emphasis bool
}

// Annotate pairs a record's content with its spans. Spans are clamped to the
// content and anything overlapping a previous span is dropped.
func Annotate(rec MatchRecord) AnnotatedText {
	content := rec.Unit.Content
	spans := make([]Span, 0, len(rec.Spans))
	last := 0
	for _, s := range rec.Spans {
		start, end := max(s.Start, last), min(s.End, len(content))
		if start >= end {
			continue
		}
		spans = append(spans, Span{Start: start, End: end})
		last = end
	}
	return AnnotatedText{Content: content, Spans: spans}
}

// Segments splits the content at span boundaries
func (a AnnotatedText) Segments() []Segment {
	var segs []Segment
	pos := 0
	for _, s := range a.Spans {
		if s.Start > pos {
			segs = append(segs, Segment{Text: a.Content[pos:s.Start]})
		}
		segs = append(segs, Segment{Text: a.Content[s.Start:s.End], Emphasis: true})
		pos = s.End
	}
	if pos < len(a.Content) {
		segs = append(segs, Segment{Text: a.Content[pos:]})
	}
	return segs
}
