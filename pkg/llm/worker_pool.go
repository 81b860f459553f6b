package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// WorkerPool bounds how many LLM calls are in flight at once. The relevance
// linking stage fans a question's items out into scoring batches; the pool's
// semaphore keeps the fan-out from flooding the provider.
type WorkerPool struct {
	maxConcurrent int
	logger        *zap.Logger
}

// NewWorkerPool creates a pool allowing up to maxConcurrent in-flight calls.
func NewWorkerPool(maxConcurrent int, logger *zap.Logger) *WorkerPool {
	if maxConcurrent < 1 {
		maxConcurrent = 8
	}
	return &WorkerPool{
		maxConcurrent: maxConcurrent,
		logger:        logger.Named("llm-worker-pool"),
	}
}

// WorkItem is a unit of work to be processed.
type WorkItem[T any] struct {
	ID      string
	Execute func(ctx context.Context) (T, error)
}

// WorkResult is the outcome of one work item.
type WorkResult[T any] struct {
	ID     string
	Result T
	Err    error
}

// Process executes all work items with bounded parallelism. Results are
// returned in completion order, and processing continues even when some
// items fail.
func Process[T any](ctx context.Context, pool *WorkerPool, items []WorkItem[T]) []WorkResult[T] {
	if len(items) == 0 {
		return nil
	}

	resultsChan := make(chan WorkResult[T], len(items))
	sem := make(chan struct{}, pool.maxConcurrent)

	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(item WorkItem[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				var zero T
				resultsChan <- WorkResult[T]{ID: item.ID, Result: zero, Err: ctx.Err()}
				return
			}

			result, err := item.Execute(ctx)
			resultsChan <- WorkResult[T]{ID: item.ID, Result: result, Err: err}
		}(item)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]WorkResult[T], 0, len(items))
	for result := range resultsChan {
		results = append(results, result)
	}
	return results
}
