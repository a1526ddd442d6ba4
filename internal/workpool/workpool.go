// Package workpool splits an index range into chunks and processes them on a
// bounded number of goroutines.
package workpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultChunk is the number of indices handed to a worker at once.
const DefaultChunk = 64

// Run calls fn for consecutive [lo, hi) chunks covering [0, n) using at most
// workers goroutines. The first error cancels the remaining chunks and is
// returned. A workers value below 1 is treated as 1.
func Run(ctx context.Context, n, workers, chunk int, fn func(ctx context.Context, lo, hi int) error) error {
	if workers < 1 {
		workers = 1
	}
	if chunk < 1 {
		chunk = DefaultChunk
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, lo, hi)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
