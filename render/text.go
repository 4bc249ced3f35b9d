package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"find-text/search"
)

var palette = map[string]lipgloss.Color{
	"red":     lipgloss.Color("1"),
	"green":   lipgloss.Color("2"),
	"yellow":  lipgloss.Color("3"),
	"blue":    lipgloss.Color("4"),
	"magenta": lipgloss.Color("5"),
	"cyan":    lipgloss.Color("6"),
}

type textRenderer struct {
	opts Options
}

func newTextRenderer(opts Options) *textRenderer {
	return &textRenderer{opts: opts}
}

// emphasis builds the span style for a writer. Without color every style renders as plain text.
func (t *textRenderer) emphasis(w io.Writer) (lipgloss.Style, bool) {
	r := lipgloss.NewRenderer(w)
	if t.opts.Color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	style := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if c, ok := palette[t.opts.Palette]; ok && t.opts.Style != "none" {
		style = style.Foreground(c)
	}
	switch t.opts.Style {
	case "bold":
		style = style.Bold(true)
	case "underline":
		style = style.Underline(true)
	case "none":
		return style, false
	}
	return style, t.opts.Color
}

func (t *textRenderer) Render(w io.Writer, report *search.Report) error {
	bw := bufio.NewWriter(w)
	style, styled := t.emphasis(w)

	if report.Stats.DocumentsResolved == 0 {
		fmt.Fprintln(bw, "No searchable documents found.")
		return bw.Flush()
	}

	for _, res := range report.Results {
		fmt.Fprintf(bw, "\n%s:\n", res.Document.Path)
		for _, rec := range res.Matches {
			fmt.Fprintf(bw, "  %s: ", locationLabel(rec.Unit.Location))
			for _, seg := range search.Annotate(rec).Segments() {
				if seg.Emphasis && styled {
					bw.WriteString(style.Render(seg.Text))
				} else {
					bw.WriteString(seg.Text)
				}
			}
			bw.WriteByte('\n')
		}
	}

	if len(report.Results) == 0 {
		fmt.Fprintf(bw, "No matches found for %q.\n", report.Pattern)
	} else {
		fmt.Fprintf(bw, "\n%s matches in %s of %s documents\n",
			search.FormatNumber(report.MatchCount()),
			search.FormatNumber(len(report.Results)),
			search.FormatNumber(report.Stats.DocumentsResolved))
	}
	return bw.Flush()
}
