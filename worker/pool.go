// Package worker provides the bounded data-parallel pool used for per-post
// scoring. Workers share no mutable state; results land in an index-addressed
// slice so the merged output order matches the input order regardless of
// scheduling.
package worker

import (
	"context"
	"runtime"
	"sync"
)

// Map runs fn over each input on up to workers goroutines and returns the
// results in input order. The first error cancels the remaining work and is
// returned; partial results are discarded by the caller per the pipeline's
// coarse-grained cancellation model.
func Map[T, R any](ctx context.Context, workers int, inputs []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]R, len(inputs))
	jobs := make(chan int)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := fn(ctx, inputs[i])
				if err != nil {
					errs <- err
					cancel()
					return
				}
				results[i] = r
			}
		}()
	}

	for i := range inputs {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
