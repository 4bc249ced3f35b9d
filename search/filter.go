package search

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// Size limits for documents that must be read whole (message containers)
const (
	largeFileThreshold = 50 * 1024 * 1024
	largeFileReadCap   = 10 * 1024 * 1024
	mediumFileThresh   = 10 * 1024 * 1024
	mediumFileReadCap  = 5 * 1024 * 1024
)

// readCapped reads a document into memory with size limits.
// Files above 10MB are truncated to 5MB, files above 50MB to 10MB; truncated
// reports whether the returned data stops short of the file.
func readCapped(f *os.File) (data []byte, size int64, truncated bool, err error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, 0, false, err
	}
	size = stat.Size()

	var reader io.Reader = f
	switch {
	case size > largeFileThreshold:
		reader = io.LimitReader(f, largeFileReadCap)
	case size > mediumFileThresh:
		reader = io.LimitReader(f, mediumFileReadCap)
	}

	data, err = io.ReadAll(reader)
	if err != nil {
		return nil, size, false, fmt.Errorf("read %s: %w", f.Name(), err)
	}
	return data, size, int64(len(data)) < size, nil
}

// truncation describes a document that was only partly read
type truncation struct {
	read, size int64
}

func (t truncation) Error() string {
	return fmt.Sprintf("truncated to %d of %d bytes", t.read, t.size)
}

// closeDocument drops the file from the page cache and closes it
func closeDocument(f *os.File) error {
	adviseDontNeed(f)
	return f.Close()
}

// FormatFileSize formats file size in human readable format
func FormatFileSize(size int64) string {
	if size < 0 {
		return "?"
	}
	const unit = 1024
	if size < unit {
		return strconv.FormatInt(size, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(size)/float64(div), 'f', 1, 64) + " " + "KMGTPE"[exp:exp+1] + "B"
}
