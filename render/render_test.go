package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"find-text/search"
)

func sampleReport() *search.Report {
	return &search.Report{
		RunID:   "run-1",
		Pattern: "hello",
		Results: []search.SearchResult{
			{
				Document: search.DocumentDescriptor{Path: "a.txt", Kind: search.PlainText, SizeHint: 24},
				Matches: []search.MatchRecord{{
					Unit:  search.TextUnit{Content: "hello <world>", Location: search.Line(2), Index: 1},
					Spans: []search.Span{{Start: 0, End: 5}},
				}},
			},
			{
				Document: search.DocumentDescriptor{Path: "b.pdf", Kind: search.PaginatedBinary, SizeHint: 2048},
				Matches: []search.MatchRecord{{
					Unit:  search.TextUnit{Content: "Say Hello.", Location: search.Page(3)},
					Spans: []search.Span{{Start: 4, End: 9}},
				}},
			},
		},
		Warnings: []search.Warning{{Path: "c.pdf", Kind: search.ErrExtractionFailure, Err: errors.New("no pages")}},
		Stats:    search.SearchStats{DocumentsResolved: 3},
	}
}

func render(t *testing.T, format string, opts Options, report *search.Report) string {
	t.Helper()
	r, err := New(format, opts)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, report))
	return buf.String()
}

func TestTextPlain(t *testing.T) {
	out := render(t, "text", Options{Color: false}, sampleReport())
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "\na.txt:\n  line 2: hello <world>\n")
	assert.Contains(t, out, "\nb.pdf:\n  approx. page 3: Say Hello.\n")
	assert.Contains(t, out, "2 matches in 2 of 3 documents")
}

func TestTextColored(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		escaped bool
	}{
		{"color", Options{Palette: "green", Style: "color", Color: true}, true},
		{"bold", Options{Palette: "red", Style: "bold", Color: true}, true},
		{"underline", Options{Palette: "none", Style: "underline", Color: true}, true},
		{"none style", Options{Palette: "red", Style: "none", Color: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, "text", tt.opts, sampleReport())
			assert.Equal(t, tt.escaped, strings.Contains(out, "\x1b["))
			assert.Contains(t, out, "<world>")
		})
	}
}

func TestTextEmptyReports(t *testing.T) {
	out := render(t, "text", Options{}, &search.Report{Pattern: "x"})
	assert.Equal(t, "No searchable documents found.\n", out)

	out = render(t, "text", Options{}, &search.Report{Pattern: "x", Stats: search.SearchStats{DocumentsResolved: 2}})
	assert.Equal(t, "No matches found for \"x\".\n", out)
}

func TestHTML(t *testing.T) {
	out := render(t, "html", Options{}, sampleReport())
	assert.Contains(t, out, "<mark>hello</mark> &lt;world&gt;")
	assert.Contains(t, out, "Say <mark>Hello</mark>.")
	assert.Contains(t, out, "<h2>a.txt</h2>")
	assert.Contains(t, out, "<li>c.pdf: extraction failure: no pages</li>")
}

func TestJSON(t *testing.T) {
	out := render(t, "json", Options{}, sampleReport())
	var decoded struct {
		Pattern string `json:"pattern"`
		Results []struct {
			Document struct {
				Path string `json:"path"`
				Kind string `json:"kind"`
			} `json:"document"`
			Matches []struct {
				Unit struct {
					Location map[string]any `json:"location"`
				} `json:"unit"`
				Spans []search.Span `json:"spans"`
			} `json:"matches"`
		} `json:"results"`
		Warnings []map[string]string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "hello", decoded.Pattern)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "paginated", decoded.Results[1].Document.Kind)
	assert.Equal(t, float64(3), decoded.Results[1].Matches[0].Unit.Location["page"])
	assert.Equal(t, []search.Span{{Start: 4, End: 9}}, decoded.Results[1].Matches[0].Spans)
	assert.Equal(t, "c.pdf", decoded.Warnings[0]["path"])

	empty := render(t, "json", Options{}, &search.Report{})
	assert.Contains(t, empty, `"results": []`)
}

func TestYAML(t *testing.T) {
	out := render(t, "yaml", Options{}, sampleReport())
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "hello", decoded["pattern"])
	assert.Len(t, decoded["results"], 2)
}

func TestNewRejectsUnknown(t *testing.T) {
	_, err := New("xml", Options{})
	assert.Error(t, err)
	_, err = New("text", Options{Palette: "purple"})
	assert.Error(t, err)
	_, err = New("text", Options{Style: "blink"})
	assert.Error(t, err)
}

func TestWarnings(t *testing.T) {
	var buf bytes.Buffer
	Warnings(&buf, sampleReport().Warnings, false)
	assert.Equal(t, "Warning: c.pdf: extraction failure: no pages\n", buf.String())

	buf.Reset()
	Warnings(&buf, sampleReport().Warnings, true)
	assert.Contains(t, buf.String(), "\x1b[33m")
}

func TestDocuments(t *testing.T) {
	var buf bytes.Buffer
	Documents(&buf, []search.DocumentDescriptor{
		{Path: "a.txt", Kind: search.PlainText, SizeHint: 512},
		{Path: "b.pdf", Kind: search.PaginatedBinary, SizeHint: 1536},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "text")
	assert.Contains(t, lines[0], "512 B")
	assert.Contains(t, lines[1], "paginated")
	assert.Equal(t, "2 documents (2.0 KB)", lines[2])
}
