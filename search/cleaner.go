package search

import (
	"regexp"
	"strings"
)

var (
	// HTML/XML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

	// HTML entities
	htmlEntityRegex = regexp.MustCompile(`&[a-zA-Z0-9#]*;`)

	// CSS/JavaScript blocks (separate patterns since Go doesn't support backreferences)
	cssRegex = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	jsRegex  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)

	// Control characters other than tab and newline
	controlCharRegex = regexp.MustCompile(`[\x00-\x08\x0b-\x1f\x7f]`)

	// Tags that end a visual block
	blockEndRegex = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</li>|</tr>|</h[1-6]>`)

	// Runs of blank lines produced by tag stripping
	blankLinesRegex = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
)

// NormalizeExtracted cleans text coming out of a binary extractor: control characters
// become spaces and carriage returns become newlines. Offsets are not preserved.
func NormalizeExtracted(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return controlCharRegex.ReplaceAllString(text, " ")
}

// collapseWhitespace joins the fields of s with single spaces
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripHTMLTags turns an HTML body into line-oriented text
func stripHTMLTags(html string) string {
	text := cssRegex.ReplaceAllString(html, "")
	text = jsRegex.ReplaceAllString(text, "")

	// Keep block boundaries as line breaks so line numbers stay meaningful
	text = blockEndRegex.ReplaceAllString(text, "\n")
	text = htmlTagRegex.ReplaceAllString(text, " ")

	text = htmlEntityRegex.ReplaceAllStringFunc(text, func(entity string) string {
		switch entity {
		case "&amp;":
			return "&"
		case "&lt;":
			return "<"
		case "&gt;":
			return ">"
		case "&quot;":
			return "\""
		case "&apos;", "&#39;":
			return "'"
		case "&nbsp;":
			return " "
		default:
			return " "
		}
	})

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = collapseWhitespace(line)
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLinesRegex.ReplaceAllString(text, "\n\n"))
}
