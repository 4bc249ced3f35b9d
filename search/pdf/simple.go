//go:build pdfcpu

package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Enabled reports whether the pdfcpu backend is compiled in.
const Enabled = true

// Default caps for PDF text extraction.
const (
	DefaultPageCap    = 2000       // maximum number of pages to process
	DefaultPerPageCap = 128 * 1024 // 128 KiB per-page text cap
)

// printableNormalize collapses non-printable runes to spaces and normalizes whitespace.
func printableNormalize(s string) string {
	clean := strings.Map(func(r rune) rune {
		if !unicode.IsPrint(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(clean), " ")
}

// parseStringLiterals collects text within balanced parentheses of a content stream,
// honoring backslash escapes, up to maxOut bytes.
func parseStringLiterals(s string, maxOut int) string {
	var out strings.Builder
	depth := 0
	escape := false
	in := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !in {
			if c == '(' {
				in = true
				depth = 1
			}
			continue
		}
		if escape {
			out.WriteByte(c)
			escape = false
			if out.Len() >= maxOut {
				return out.String()
			}
			continue
		}
		switch c {
		case '\\':
			escape = true
		case '(':
			depth++
			out.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				in = false
				out.WriteByte(' ')
			} else {
				out.WriteByte(c)
			}
		default:
			out.WriteByte(c)
		}
		if out.Len() >= maxOut {
			return out.String()
		}
	}
	return out.String()
}

// ExtractPages dumps each page's content stream with pdfcpu and salvages the string
// literals as page text, one entry per page in page order.
func ExtractPages(path string, pageCap, perPageCap int) (pages []string, err error) {
	if pageCap <= 0 {
		pageCap = DefaultPageCap
	}
	if perPageCap <= 0 {
		perPageCap = DefaultPerPageCap
	}

	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	tmpDir, err := os.MkdirTemp("", "findtext_pdfcpu_*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := api.ExtractContentFile(path, tmpDir, nil, nil); err != nil {
		return nil, fmt.Errorf("pdfcpu ExtractContentFile: %w", err)
	}

	ents, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	// Content files are named <base>_Content_page_<n>.txt; sort numerically by page
	sort.Slice(ents, func(i, j int) bool { return pageNumber(ents[i].Name()) < pageNumber(ents[j].Name()) })

	for _, de := range ents {
		if de.IsDir() {
			continue
		}
		if len(pages) >= pageCap {
			break
		}
		data, rerr := os.ReadFile(filepath.Join(tmpDir, de.Name()))
		if rerr != nil {
			continue
		}
		txt := printableNormalize(parseStringLiterals(string(data), perPageCap))
		if len(txt) > perPageCap {
			txt = txt[:perPageCap]
		}
		pages = append(pages, txt)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdfcpu: no content streams in %s", path)
	}
	return pages, nil
}

// pageNumber extracts the trailing page number of a content file name
func pageNumber(name string) int {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndexByte(name, '_')
	n := 0
	for _, c := range name[i+1:] {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
