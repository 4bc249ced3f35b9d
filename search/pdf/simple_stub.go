//go:build !pdfcpu

package pdf

import "errors"

// Enabled reports whether the pdfcpu backend is compiled in.
const Enabled = false

// ErrPDFDisabled is returned when the pdfcpu backend is not part of the build.
var ErrPDFDisabled = errors.New("pdfcpu backend disabled (build with -tags pdfcpu)")

// ExtractPages is a stub used for default builds without the "pdfcpu" tag.
// See simple.go for the pdfcpu-backed implementation.
func ExtractPages(path string, pageCap, perPageCap int) ([]string, error) {
	return nil, ErrPDFDisabled
}
