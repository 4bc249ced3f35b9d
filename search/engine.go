package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"find-text/config"
)

// ProgressFunc is an optional callback to report progress like: processed, total, path.
// Calls are serialized.
type ProgressFunc func(stage string, processed, total int, path string)

// Progress stages
const (
	StageDiscovery  = "discovery"
	StageProcessing = "processing"
	StageDone       = "done"
)

// Options configures a search run
type Options struct {
	Recursive     bool
	IncludeHidden bool
	Extensions    []string
	Mode          Mode
	CaseSensitive bool

	// Zero values are derived from the number of resolved documents
	Workers          int
	HeavyConcurrency int
	// BinaryTimeout bounds the extraction of one paginated document; zero disables it
	BinaryTimeout time.Duration

	Logger     *slog.Logger
	OnProgress ProgressFunc
}

// Engine resolves documents, extracts their text units and matches them against one pattern
type Engine struct {
	matcher  *Matcher
	resolver *Resolver
	registry *ExtractorRegistry
	opts     Options
	logger   *slog.Logger

	progressMu sync.Mutex
}

// NewEngine validates the pattern before anything touches the filesystem
func NewEngine(pattern string, opts Options) (*Engine, error) {
	m, err := Compile(pattern, opts.Mode, opts.CaseSensitive)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		matcher: m,
		resolver: NewResolver(ResolveOptions{
			Recursive:     opts.Recursive,
			Extensions:    opts.Extensions,
			IncludeHidden: opts.IncludeHidden,
		}, logger),
		registry: NewExtractorRegistry(logger),
		opts:     opts,
		logger:   logger,
	}, nil
}

// Registry exposes the extractors so callers can register their own
func (e *Engine) Registry() *ExtractorRegistry { return e.registry }

// docOutcome is what one worker leaves in its slot
type docOutcome struct {
	processed bool
	failed    bool
	result    SearchResult
	warning   *Warning
}

// Run searches every document reachable from inputs. Results follow resolution order and
// only documents with matches are reported. When ctx ends early the partial report is
// returned together with ctx.Err().
func (e *Engine) Run(ctx context.Context, inputs []string) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString(), Pattern: e.matcher.Pattern()}
	logger := e.logger.With("run", report.RunID)

	e.progress(StageDiscovery, 0, 0, "")
	docs, warnings := e.resolver.Resolve(ctx, inputs)
	report.Warnings = warnings
	report.Stats.DocumentsResolved = len(docs)
	logger.Info("documents resolved", "documents", len(docs), "warnings", len(warnings))

	if err := ctx.Err(); err != nil {
		report.Stats.ElapsedTime = time.Since(start)
		return report, err
	}

	workers, heavy := config.GetPerformanceProfile(len(docs))
	if e.opts.Workers > 0 {
		workers = e.opts.Workers
	}
	if e.opts.HeavyConcurrency > 0 {
		heavy = e.opts.HeavyConcurrency
	}
	cm := NewConcurrencyManager(heavy)
	logger.Debug("searching", "workers", workers, "heavy", heavy, "mode", e.matcher.Mode())

	var processed atomic.Int64
	outcomes := forEachDocument(ctx, docs, workers, func(ctx context.Context, doc DocumentDescriptor) docOutcome {
		out := e.searchDocument(ctx, cm, doc, logger)
		if out.processed {
			e.progress(StageProcessing, int(processed.Add(1)), len(docs), doc.Path)
		}
		return out
	})

	for _, out := range outcomes {
		if !out.processed {
			continue
		}
		report.Stats.DocumentsProcessed++
		if out.result.Document.SizeHint > 0 {
			report.Stats.TotalBytes += out.result.Document.SizeHint
		}
		if out.warning != nil {
			report.Warnings = append(report.Warnings, *out.warning)
		}
		if out.failed {
			continue
		}
		if len(out.result.Matches) > 0 {
			report.Results = append(report.Results, out.result)
			report.Stats.DocumentsMatched++
			report.Stats.UnitsMatched += int64(len(out.result.Matches))
		}
	}
	report.Stats.ElapsedTime = time.Since(start)

	e.progress(StageDone, int(report.Stats.DocumentsProcessed), len(docs), "")
	logger.Info("search finished",
		"processed", report.Stats.DocumentsProcessed,
		"matched", report.Stats.DocumentsMatched,
		"elapsed", report.Stats.ElapsedTime)
	return report, ctx.Err()
}

// searchDocument extracts and scans one document. A failure becomes a warning; a
// document abandoned because the run was cancelled is reported as not processed.
func (e *Engine) searchDocument(ctx context.Context, cm *ConcurrencyManager, doc DocumentDescriptor, logger *slog.Logger) docOutcome {
	var (
		stream UnitStream
		err    error
	)
	if doc.Kind == PaginatedBinary {
		stream, err = cm.ExtractWithTimeout(ctx, e.opts.BinaryTimeout, func(ctx context.Context) (UnitStream, error) {
			return e.registry.Extract(ctx, doc)
		})
	} else {
		stream, err = e.registry.Extract(ctx, doc)
	}
	if err != nil {
		return e.failed(ctx, doc, err, logger)
	}
	defer stream.Close()

	res := SearchResult{Document: doc}
	for {
		unit, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Partial matches of a failed document are not reported
			return e.failed(ctx, doc, err, logger)
		}
		if rec, ok := e.matcher.Scan(unit); ok {
			res.Matches = append(res.Matches, rec)
		}
	}

	out := docOutcome{processed: true, result: res}
	if ps, ok := stream.(PartialStream); ok {
		if perr := ps.Partial(); perr != nil {
			w := newWarning(doc.Path, ErrExtractionFailure, perr)
			logger.Warn("document partly searched", "path", doc.Path, "error", perr)
			out.warning = &w
		}
	}
	return out
}

func (e *Engine) failed(ctx context.Context, doc DocumentDescriptor, err error, logger *slog.Logger) docOutcome {
	if ctx.Err() != nil {
		return docOutcome{}
	}
	w := newWarning(doc.Path, ErrExtractionFailure, err)
	logger.Warn("document unreadable", "path", doc.Path, "kind", doc.Kind, "error", err)
	return docOutcome{processed: true, failed: true, result: SearchResult{Document: doc}, warning: &w}
}

func (e *Engine) progress(stage string, processed, total int, path string) {
	if e.opts.OnProgress == nil {
		return
	}
	e.progressMu.Lock()
	defer e.progressMu.Unlock()
	e.opts.OnProgress(stage, processed, total, path)
}
