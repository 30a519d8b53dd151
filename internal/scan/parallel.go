package scan

import (
	"context"
	"runtime"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/go-faster/otelbuf/internal/iterators"
)

// Parallel drains the iterator with the given number of workers, calling fn
// for every batch. Each batch is delivered to exactly one worker; the first
// error cancels the rest.
func Parallel[T any](ctx context.Context, it iterators.Iterator[T], workers int, fn func(ctx context.Context, b *T) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			return iterators.ForEach(it, func(b T) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return fn(ctx, &b)
			})
		})
	}
	return g.Wait()
}

// ParallelSources drains multiple independent scanners: an atomic cursor
// hands out one source at a time to each worker, which drains it fully
// before claiming the next. Every source is drained exactly once.
func ParallelSources(ctx context.Context, scanners []*Scanner, workers int, fn func(ctx context.Context, s *Scanner, b *Batch) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var cursor atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				idx := int(cursor.Inc() - 1)
				if idx >= len(scanners) {
					return nil
				}
				s := scanners[idx]
				err := iterators.ForEach(s, func(b Batch) error {
					if err := ctx.Err(); err != nil {
						return err
					}
					return fn(ctx, s, &b)
				})
				if err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}
