package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
)

// Error categories. Per-path categories end up in Report.Warnings; ErrInvalidPattern is fatal.
var (
	ErrInvalidPath       = errors.New("invalid path")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrExtractionFailure = errors.New("extraction failure")
	ErrInvalidPattern    = errors.New("invalid pattern")
)

// Warning is a per-path problem that was skipped over
type Warning struct {
	Path string
	Kind error // one of the Err* categories
	Err  error // underlying cause, may be nil
}

func (w Warning) Error() string {
	return w.Path + ": " + w.Message()
}

// Message is the warning text without the path
func (w Warning) Message() string {
	switch {
	case w.Err == nil:
		return w.Kind.Error()
	case errors.Is(w.Err, w.Kind):
		// the cause already names its category
		return w.Err.Error()
	default:
		return fmt.Sprintf("%v: %v", w.Kind, w.Err)
	}
}

// Unwrap lets errors.Is match both the category and the cause
func (w Warning) Unwrap() []error {
	if w.Err == nil {
		return []error{w.Kind}
	}
	return []error{w.Kind, w.Err}
}

// MarshalJSON flattens the warning for structured reports
func (w Warning) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"path": w.Path, "kind": w.Kind.Error(), "message": w.Message()})
}

// MarshalYAML flattens the warning for structured reports
func (w Warning) MarshalYAML() (interface{}, error) {
	return map[string]string{"path": w.Path, "kind": w.Kind.Error(), "message": w.Message()}, nil
}

// newWarning classifies an I/O error: permission problems get their own category
func newWarning(path string, fallback error, err error) Warning {
	if errors.Is(err, fs.ErrPermission) {
		return Warning{Path: path, Kind: ErrPermissionDenied, Err: err}
	}
	return Warning{Path: path, Kind: fallback, Err: err}
}
