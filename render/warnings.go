package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"find-text/search"
)

// Warnings prints one "Warning: <path>: <message>" line per warning
func Warnings(w io.Writer, warnings []search.Warning, colored bool) {
	yellow := color.New(color.FgYellow)
	if colored {
		yellow.EnableColor()
	} else {
		yellow.DisableColor()
	}
	for _, warn := range warnings {
		yellow.Fprintf(w, "Warning: %s: %s\n", warn.Path, warn.Message())
	}
}

// Documents lists resolved documents with their kind and size, then a total line
func Documents(w io.Writer, docs []search.DocumentDescriptor) {
	var total int64
	for _, d := range docs {
		fmt.Fprintf(w, "%-9s %10s  %s\n", d.Kind, search.FormatFileSize(d.SizeHint), d.Path)
		if d.SizeHint > 0 {
			total += d.SizeHint
		}
	}
	noun := "documents"
	if len(docs) == 1 {
		noun = "document"
	}
	fmt.Fprintf(w, "%s %s (%s)\n", search.FormatNumber(len(docs)), noun, search.FormatFileSize(total))
}
