// Package workerpool fans a fixed list of work items out to a bounded number of goroutines.
package workerpool

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Process runs process over items with workerCount goroutines. The first error
// cancels the remaining work and is returned.
func Process[T any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) error,
) error {
	return run(ctx, workerCount, items, process, true)
}

// Each runs process over every item even when some of them fail. The failures
// are combined into one error. Only cancellation of ctx stops the pool early.
func Each[T any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) error,
) error {
	return run(ctx, workerCount, items, process, false)
}

func run[T any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) error,
	failFast bool,
) error {
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(items) && len(items) > 0 {
		workerCount = len(items)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu   sync.Mutex
		errs error
		wg   sync.WaitGroup
	)
	tasks := make(chan T)

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				if ctx.Err() != nil {
					continue
				}
				if err := process(ctx, item); err != nil {
					mu.Lock()
					errs = multierr.Append(errs, err)
					mu.Unlock()
					if failFast {
						cancel()
					}
				}
			}
		}()
	}

feed:
	for _, item := range items {
		select {
		case <-ctx.Done():
			break feed
		case tasks <- item:
		}
	}
	close(tasks)
	wg.Wait()

	if errs != nil {
		if failFast {
			return multierr.Errors(errs)[0]
		}
		return errs
	}
	// ctx is only canceled by us when an item failed, so this is the caller's cancellation.
	return ctx.Err()
}
