package search

import (
	"fmt"
	"time"
)

// DocumentKind selects how a document is turned into text units
type DocumentKind int

const (
	// PlainText documents are split into lines
	PlainText DocumentKind = iota
	// PaginatedBinary documents are split into sentences with estimated pages
	PaginatedBinary
)

func (k DocumentKind) String() string {
	switch k {
	case PlainText:
		return "text"
	case PaginatedBinary:
		return "paginated"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in JSON and YAML reports.
func (k DocumentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DocumentDescriptor identifies one searchable document discovered by the Resolver
type DocumentDescriptor struct {
	Path     string       `json:"path" yaml:"path"`
	Kind     DocumentKind `json:"kind" yaml:"kind"`
	SizeHint int64        `json:"size" yaml:"size"` // -1 when unknown
}

// LocationKind tags a LocationRef
type LocationKind int

const (
	// LineNumber is an exact 1-based line number
	LineNumber LocationKind = iota + 1
	// EstimatedPage is a heuristic 1-based page number
	EstimatedPage
)

// LocationRef is where a text unit sits in its document
type LocationRef struct {
	Kind LocationKind
	N    int
}

// Line returns an exact line location
func Line(n int) LocationRef { return LocationRef{Kind: LineNumber, N: n} }

// Page returns an estimated page location
func Page(n int) LocationRef { return LocationRef{Kind: EstimatedPage, N: n} }

// IsEstimate reports whether the location is advisory only
func (l LocationRef) IsEstimate() bool { return l.Kind == EstimatedPage }

func (l LocationRef) String() string {
	switch l.Kind {
	case LineNumber:
		return fmt.Sprintf("%d", l.N)
	case EstimatedPage:
		return fmt.Sprintf("approx. page %d", l.N)
	default:
		return "?"
	}
}

// MarshalJSON keeps reports readable: {"line": 3} or {"page": 2}.
func (l LocationRef) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case LineNumber:
		return []byte(fmt.Sprintf(`{"line":%d}`, l.N)), nil
	case EstimatedPage:
		return []byte(fmt.Sprintf(`{"page":%d,"estimated":true}`, l.N)), nil
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML mirrors MarshalJSON
func (l LocationRef) MarshalYAML() (interface{}, error) {
	switch l.Kind {
	case LineNumber:
		return map[string]int{"line": l.N}, nil
	case EstimatedPage:
		return map[string]interface{}{"page": l.N, "estimated": true}, nil
	default:
		return nil, nil
	}
}

// TextUnit is a line or sentence of a document
type TextUnit struct {
	Content  string      `json:"content" yaml:"content"`
	Location LocationRef `json:"location" yaml:"location"`
	Index    int         `json:"index" yaml:"index"`
	Offset   int         `json:"-" yaml:"-"` // character offset of the unit within the extracted text
}

// Span is a half-open byte range [Start, End) within TextUnit.Content
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// MatchRecord is a text unit with at least one match span
type MatchRecord struct {
	Unit  TextUnit `json:"unit" yaml:"unit"`
	Spans []Span   `json:"spans" yaml:"spans"`
}

// SearchResult holds the matches of one document in unit order
type SearchResult struct {
	Document DocumentDescriptor `json:"document" yaml:"document"`
	Matches  []MatchRecord      `json:"matches" yaml:"matches"`
}

// SearchStats tracks run metrics
type SearchStats struct {
	DocumentsResolved  int           `json:"documents_resolved" yaml:"documents_resolved"`
	DocumentsProcessed int64         `json:"documents_processed" yaml:"documents_processed"`
	DocumentsMatched   int64         `json:"documents_matched" yaml:"documents_matched"`
	UnitsMatched       int64         `json:"units_matched" yaml:"units_matched"`
	TotalBytes         int64         `json:"total_bytes" yaml:"total_bytes"`
	ElapsedTime        time.Duration `json:"elapsed_ns" yaml:"elapsed"`
}

// Report is the outcome of one run
type Report struct {
	RunID    string         `json:"run_id" yaml:"run_id"`
	Pattern  string         `json:"pattern" yaml:"pattern"`
	Results  []SearchResult `json:"results" yaml:"results"`
	Warnings []Warning      `json:"warnings" yaml:"warnings"`
	Stats    SearchStats    `json:"stats" yaml:"stats"`
}

// MatchCount returns the number of matched units across all results
func (r *Report) MatchCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Matches)
	}
	return n
}
