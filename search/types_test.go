package search

import (
	"encoding/json"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLocationRef(t *testing.T) {
	assert.Equal(t, "3", Line(3).String())
	assert.Equal(t, "approx. page 2", Page(2).String())
	assert.Equal(t, "?", LocationRef{}.String())

	data, err := json.Marshal(struct {
		A LocationRef `json:"a"`
		B LocationRef `json:"b"`
	}{Line(3), Page(2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"line":3},"b":{"page":2,"estimated":true}}`, string(data))
}

func TestWarningMessages(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}
	w := newWarning("/x", ErrInvalidPath, cause)
	assert.ErrorIs(t, w, ErrPermissionDenied)
	assert.ErrorIs(t, w, fs.ErrPermission)
	assert.Equal(t, "/x: permission denied: open /x: permission denied", w.Error())

	bare := Warning{Path: "/y", Kind: ErrInvalidPath}
	assert.Equal(t, "invalid path", bare.Message())

	// a cause that already names its category is not repeated
	wrapped := Warning{Path: "/z", Kind: ErrExtractionFailure, Err: errors.Join(ErrExtractionFailure, errors.New("bad xref"))}
	assert.Equal(t, wrapped.Err.Error(), wrapped.Message())
}

func TestReportEncodes(t *testing.T) {
	report := &Report{
		RunID:   "run",
		Pattern: "needle",
		Results: []SearchResult{{
			Document: DocumentDescriptor{Path: "a.txt", Kind: PlainText, SizeHint: 7},
			Matches:  []MatchRecord{{Unit: TextUnit{Content: "needle", Location: Line(1)}, Spans: []Span{{0, 6}}}},
		}},
		Warnings: []Warning{{Path: "b.pdf", Kind: ErrExtractionFailure, Err: errors.New("no pages")}},
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	doc := decoded["results"].([]any)[0].(map[string]any)["document"].(map[string]any)
	assert.Equal(t, "text", doc["kind"])
	warn := decoded["warnings"].([]any)[0].(map[string]any)
	assert.Equal(t, "extraction failure: no pages", warn["message"])

	out, err := yaml.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), "line: 1")
	assert.Contains(t, string(out), "kind: text")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "?", FormatFileSize(-1))
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "-1,000", FormatNumber(-1000))
}
