// Package render turns search reports into text, HTML, JSON or YAML. Emphasis comes from the
// spans the highlighter returns; nothing here matches text.
package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"find-text/config"
	"find-text/search"
)

// Renderer writes a report to w
type Renderer interface {
	Render(w io.Writer, report *search.Report) error
}

// Options controls how emphasis looks in text output
type Options struct {
	Palette string // red, green, yellow, blue, magenta, cyan or none
	Style   string // color, bold, underline or none
	Color   bool   // emit ANSI escapes
}

// New returns the renderer for format
func New(format string, opts Options) (Renderer, error) {
	if opts.Palette == "" {
		opts.Palette = "red"
	}
	if opts.Style == "" {
		opts.Style = "color"
	}
	if !slices.Contains(config.Palettes, opts.Palette) {
		return nil, fmt.Errorf("unknown highlight color %q", opts.Palette)
	}
	if !slices.Contains(config.Styles, opts.Style) {
		return nil, fmt.Errorf("unknown highlight style %q", opts.Style)
	}

	switch strings.ToLower(format) {
	case "", "text":
		return newTextRenderer(opts), nil
	case "html":
		return htmlRenderer{}, nil
	case "json":
		return jsonRenderer{}, nil
	case "yaml":
		return yamlRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// locationLabel is the short form used in listings: "line 3" or "approx. page 2"
func locationLabel(loc search.LocationRef) string {
	if loc.Kind == search.LineNumber {
		return fmt.Sprintf("line %d", loc.N)
	}
	return loc.String()
}
