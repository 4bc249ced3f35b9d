package render

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"find-text/search"
)

type htmlRenderer struct{}

func (htmlRenderer) Render(w io.Writer, report *search.Report) error {
	bw := bufio.NewWriter(w)
	esc := html.EscapeString

	fmt.Fprintf(bw, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>findtext: %s</title>\n</head>\n<body>\n", esc(report.Pattern))
	fmt.Fprintf(bw, "<h1>Matches for <code>%s</code></h1>\n", esc(report.Pattern))

	for _, res := range report.Results {
		fmt.Fprintf(bw, "<section>\n<h2>%s</h2>\n<ul>\n", esc(res.Document.Path))
		for _, rec := range res.Matches {
			fmt.Fprintf(bw, "<li><span class=\"location\">%s</span> ", esc(locationLabel(rec.Unit.Location)))
			for _, seg := range search.Annotate(rec).Segments() {
				if seg.Emphasis {
					fmt.Fprintf(bw, "<mark>%s</mark>", esc(seg.Text))
				} else {
					bw.WriteString(esc(seg.Text))
				}
			}
			bw.WriteString("</li>\n")
		}
		bw.WriteString("</ul>\n</section>\n")
	}
	if len(report.Results) == 0 {
		bw.WriteString("<p>No matches found.</p>\n")
	}

	if len(report.Warnings) > 0 {
		bw.WriteString("<h2>Warnings</h2>\n<ul class=\"warnings\">\n")
		for _, warn := range report.Warnings {
			fmt.Fprintf(bw, "<li>%s: %s</li>\n", esc(warn.Path), esc(warn.Message()))
		}
		bw.WriteString("</ul>\n")
	}

	bw.WriteString("</body>\n</html>\n")
	return bw.Flush()
}
