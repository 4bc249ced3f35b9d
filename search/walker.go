package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"find-text/config"
)

// ResolveOptions are the directory-walk rules
type ResolveOptions struct {
	Recursive     bool
	Extensions    []string // empty accepts every file
	IncludeHidden bool
}

// Resolver expands user-supplied paths into an ordered, deduplicated document list
type Resolver struct {
	recursive     bool
	includeHidden bool
	extensions    []string
	logger        *slog.Logger
}

// NewResolver creates a resolver with normalized extension filters
func NewResolver(opts ResolveOptions, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		recursive:     opts.Recursive,
		includeHidden: opts.IncludeHidden,
		extensions:    config.NormalizeExtensions(opts.Extensions),
		logger:        logger,
	}
}

// resolveState accumulates one Resolve call
type resolveState struct {
	docs     []DocumentDescriptor
	warnings []Warning
	seen     map[string]bool // canonical document paths
	walked   map[string]bool // canonical directory paths
}

// Resolve classifies every input and returns documents in first-discovery order.
// Problems with a single input become warnings; the remaining inputs are still resolved.
// Cancellation stops the walk and returns what was found so far.
func (r *Resolver) Resolve(ctx context.Context, inputs []string) ([]DocumentDescriptor, []Warning) {
	st := &resolveState{
		seen:   make(map[string]bool),
		walked: make(map[string]bool),
	}
	for _, input := range inputs {
		if ctx.Err() != nil {
			break
		}
		r.resolveInput(ctx, st, input)
	}
	return st.docs, st.warnings
}

func (r *Resolver) resolveInput(ctx context.Context, st *resolveState, input string) {
	if strings.TrimSpace(input) == "" {
		st.warnings = append(st.warnings, Warning{Path: input, Kind: ErrInvalidPath, Err: errors.New("empty path")})
		return
	}

	info, err := os.Stat(input)
	if err == nil {
		switch {
		case info.Mode().IsRegular():
			r.addDocument(st, input, input, info)
		case info.IsDir():
			r.walk(ctx, st, input)
		default:
			st.warnings = append(st.warnings, Warning{Path: input, Kind: ErrInvalidPath, Err: errors.New("not a regular file or directory")})
		}
		return
	}

	// Comma-joined file lists: missing entries are dropped without a warning
	if strings.Contains(input, ",") {
		for _, part := range strings.Split(input, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			pi, perr := os.Stat(part)
			if perr != nil {
				r.logger.Debug("dropping missing list entry", "path", part, "error", perr)
				continue
			}
			switch {
			case pi.Mode().IsRegular():
				r.addDocument(st, part, part, pi)
			case pi.IsDir():
				r.walk(ctx, st, part)
			}
		}
		return
	}

	st.warnings = append(st.warnings, newWarning(input, ErrInvalidPath, err))
}

// walk traverses a directory with an explicit stack. Entries are visited in name order
// and a directory's files come before the contents of its subdirectories.
func (r *Resolver) walk(ctx context.Context, st *resolveState, root string) {
	stack := []string{root}
	for len(stack) > 0 {
		if ctx.Err() != nil {
			return
		}
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		canon := canonicalPath(dir)
		if st.walked[canon] {
			continue
		}
		st.walked[canon] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			st.warnings = append(st.warnings, newWarning(dir, ErrInvalidPath, err))
			r.logger.Warn("cannot read directory", "path", dir, "error", err)
			if len(entries) == 0 {
				continue
			}
		}

		var subdirs []string
		for _, e := range entries {
			name := e.Name()
			if !r.includeHidden && config.IsHiddenFile(name) {
				continue
			}
			path := filepath.Join(dir, name)

			switch {
			case e.Type()&fs.ModeSymlink != 0:
				r.addSymlink(st, path)
			case e.IsDir():
				if r.recursive {
					subdirs = append(subdirs, path)
				}
			case e.Type().IsRegular():
				if !config.MatchesExtension(name, r.extensions) {
					continue
				}
				info, ierr := e.Info()
				if ierr != nil {
					st.warnings = append(st.warnings, newWarning(path, ErrInvalidPath, ierr))
					continue
				}
				r.addDocument(st, path, name, info)
			default:
				// sockets, pipes and devices are never documents
			}
		}

		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
}

// addSymlink lists a symlink found during traversal. Links to directories are never
// followed; links to files are filtered by the target's extension.
func (r *Resolver) addSymlink(st *resolveState, path string) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		st.warnings = append(st.warnings, Warning{Path: path, Kind: ErrInvalidPath, Err: fmt.Errorf("broken symbolic link: %w", err)})
		return
	}
	info, err := os.Stat(target)
	if err != nil {
		st.warnings = append(st.warnings, newWarning(path, ErrInvalidPath, err))
		return
	}
	if info.IsDir() {
		r.logger.Debug("not following symlinked directory", "path", path, "target", target)
		return
	}
	if !info.Mode().IsRegular() {
		return
	}
	if !config.MatchesExtension(filepath.Base(target), r.extensions) {
		return
	}
	r.addDocument(st, path, target, info)
}

// addDocument appends a descriptor unless its canonical path was already seen.
// kindName is the name whose extension decides the document kind.
func (r *Resolver) addDocument(st *resolveState, path, kindName string, info fs.FileInfo) {
	canon := canonicalPath(path)
	if st.seen[canon] {
		return
	}
	st.seen[canon] = true
	st.docs = append(st.docs, DocumentDescriptor{
		Path:     path,
		Kind:     classify(kindName, path),
		SizeHint: info.Size(),
	})
}

// classify infers the document kind from the extension, sniffing unknown files
func classify(kindName, path string) DocumentKind {
	switch {
	case config.IsPaginatedFile(kindName):
		return PaginatedBinary
	case config.IsPlainTextFile(kindName):
		return PlainText
	case sniffPDF(path):
		return PaginatedBinary
	default:
		return PlainText
	}
}

var pdfMagic = []byte("%PDF-")

// sniffPDF looks for the PDF header within the first KiB, where readers accept it
func sniffPDF(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 1024)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false
	}
	return bytes.Contains(head[:n], pdfMagic)
}

// canonicalPath returns the absolute, symlink-free form of path, or the cleanest form
// available when the path cannot be fully resolved
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
