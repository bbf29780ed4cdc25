package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Span is a half-open index range [Lo, Hi) owned by a single worker.
type Span struct {
	Lo, Hi int
}

// Len returns the number of indices in the span.
func (s Span) Len() int { return s.Hi - s.Lo }

// Limiter bounds how many spans may run at the same time across callers.
// A nil Limiter imposes no bound.
type Limiter interface {
	AcquireWorker(ctx context.Context) error
	ReleaseWorker()
}

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Workers returns the number of spans For will use for n indices.
func Workers(n, workers int) int {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Spans partitions [0, n) into Workers(n, workers) contiguous spans whose
// lengths differ by at most one. The partition depends only on n and workers.
func Spans(n, workers int) []Span {
	w := Workers(n, workers)
	spans := make([]Span, w)

	size, rem := n/w, n%w
	lo := 0
	for i := range spans {
		hi := lo + size
		if i < rem {
			hi++
		}
		spans[i] = Span{Lo: lo, Hi: hi}
		lo = hi
	}
	return spans
}

// For calls fn once per span of [0, n), concurrently. worker is the index of
// the span and is stable for a given (n, workers) pair, so callers may keep
// per-worker state in a slice indexed by it.
//
// The first error returned by fn (or by the limiter) is returned after all
// spans have finished. The context passed to fn is cancelled on that error.
func For(ctx context.Context, n, workers int, lim Limiter, fn func(ctx context.Context, worker int, s Span) error) error {
	if n <= 0 {
		return ctx.Err()
	}

	spans := Spans(n, workers)
	if len(spans) == 1 && lim == nil {
		return fn(ctx, 0, spans[0])
	}

	g, gctx := errgroup.WithContext(ctx)
	for w, s := range spans {
		g.Go(func() error {
			if lim != nil {
				if err := lim.AcquireWorker(gctx); err != nil {
					return err
				}
				defer lim.ReleaseWorker()
			}
			return fn(gctx, w, s)
		})
	}

	return g.Wait()
}
