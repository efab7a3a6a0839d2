package util

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel runs fn over inputs with at most workerLimit concurrent calls.
// The first error cancels the context passed to the remaining calls and is
// returned once every started call has finished.
func Parallel[T any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) error {
	if workerLimit <= 0 {
		workerLimit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit)
	for _, item := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error { return fn(gctx, item) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
