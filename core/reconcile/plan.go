package reconcile

import (
	"context"
	"sync/atomic"

	"customer-merger/core/utils"

	"golang.org/x/sync/errgroup"
)

// ApplyPlan executes plan against m.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func ApplyPlan[T any](ctx context.Context, m Mutator[T], plan *Plan[T], opts Options) (Result, error) {
	// Safety check: do not execute if not confirmed or dry-run
	if !opts.Confirmed || opts.DryRun || plan == nil {
		return Result{}, nil
	}
	if tm, ok := m.(Transactor[T]); ok {
		// One transaction holds one connection, so inserts run one chunk at a time.
		opts.Concurrency = 1
		var res Result
		err := tm.Transaction(ctx, func(tx Mutator[T]) error {
			var err error
			res, err = apply(ctx, tx, plan, opts)
			return err
		})
		if err != nil {
			return Result{Applied: true}, err
		}
		return res, nil
	}
	return apply(ctx, m, plan, opts)
}

func apply[T any](ctx context.Context, m Mutator[T], plan *Plan[T], opts Options) (Result, error) {
	res := Result{Applied: true}
	if len(plan.Deletes) > 0 {
		if err := m.DeleteBatch(ctx, plan.Deletes); err != nil {
			return res, &StepError{Step: StepDelete, Err: err}
		}
		res.Deleted = len(plan.Deletes)
	}

	var inserted atomic.Int64
	err := ForEachWindow(ctx, plan.Inserts, opts.ChunkSize, opts.Concurrency, func(ctx context.Context, rows []T) error {
		if err := m.InsertBatch(ctx, rows); err != nil {
			return err
		}
		inserted.Add(int64(len(rows)))
		return nil
	})
	res.Inserted = int(inserted.Load())
	if err != nil {
		return res, &StepError{Step: StepInsert, Err: err}
	}
	return res, nil
}

// ForEachWindow splits items into chunks and runs fn on up to concurrency
// chunks at a time. Each window of chunks completes before the next starts;
// the first error stops the run once its window has finished.
func ForEachWindow[T any](ctx context.Context, items []T, chunkSize, concurrency int, fn func(context.Context, []T) error) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	chunks := utils.Chunk(items, chunkSize)

	for start := 0; start < len(chunks); start += concurrency {
		if err := ctx.Err(); err != nil {
			return err
		}
		window := chunks[start:min(start+concurrency, len(chunks))]

		g, gctx := errgroup.WithContext(ctx)
		for _, chunk := range window {
			g.Go(func() error {
				return fn(gctx, chunk)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
