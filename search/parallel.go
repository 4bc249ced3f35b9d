package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ConcurrencyManager handles bounded concurrency for heavy operations
type ConcurrencyManager struct {
	sem chan struct{}
}

func NewConcurrencyManager(slots int) *ConcurrencyManager {
	if slots < 1 {
		slots = 1
	}
	return &ConcurrencyManager{sem: make(chan struct{}, slots)}
}

// Acquire waits for a free slot or for ctx to end
func (cm *ConcurrencyManager) Acquire(ctx context.Context) error {
	select {
	case cm.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (cm *ConcurrencyManager) Release() {
	<-cm.sem
}

type extractOutcome struct {
	stream UnitStream
	err    error
}

// ExtractWithTimeout runs open in a slot under a deadline that also covers reading the
// returned stream. A stream produced after the caller gave up is closed.
func (cm *ConcurrencyManager) ExtractWithTimeout(ctx context.Context, timeout time.Duration, open func(context.Context) (UnitStream, error)) (UnitStream, error) {
	if err := cm.Acquire(ctx); err != nil {
		return nil, err
	}
	defer cm.Release()

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	}

	done := make(chan extractOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- extractOutcome{err: fmt.Errorf("%w: panic: %v", ErrExtractionFailure, r)}
			}
		}()
		s, err := open(runCtx)
		done <- extractOutcome{stream: s, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			cancel()
			if runCtx.Err() != nil && ctx.Err() == nil {
				return nil, fmt.Errorf("%w: timed out after %s", ErrExtractionFailure, timeout)
			}
			return nil, out.err
		}
		// the deadline keeps running while the caller reads the stream
		return &deadlineStream{UnitStream: out.stream, cancel: cancel}, nil
	case <-runCtx.Done():
		cancel()
		go func() {
			if out := <-done; out.stream != nil {
				out.stream.Close()
			}
		}()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: timed out after %s", ErrExtractionFailure, timeout)
	}
}

// deadlineStream releases its context when closed
type deadlineStream struct {
	UnitStream
	cancel context.CancelFunc
}

func (s *deadlineStream) Partial() error {
	if p, ok := s.UnitStream.(PartialStream); ok {
		return p.Partial()
	}
	return nil
}

func (s *deadlineStream) Close() error {
	s.cancel()
	return s.UnitStream.Close()
}

// forEachDocument runs fn for every document on at most workers goroutines. Each call
// writes only its own slot, so the output follows document order whatever the
// completion order. Documents not started before ctx ends keep the zero value.
func forEachDocument[T any](ctx context.Context, docs []DocumentDescriptor, workers int, fn func(context.Context, DocumentDescriptor) T) []T {
	out := make([]T, len(docs))
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, doc := range docs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			out[i] = fn(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// FormatNumber formats a number with thousands separators
func FormatNumber(n int) string {
	str := strconv.Itoa(n)
	neg := strings.HasPrefix(str, "-")
	if neg {
		str = str[1:]
	}
	if len(str) <= 3 {
		if neg {
			return "-" + str
		}
		return str
	}

	var result strings.Builder
	if neg {
		result.WriteByte('-')
	}
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return result.String()
}
