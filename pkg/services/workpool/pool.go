// Package workpool runs independent work items with bounded parallelism.
// The ingestion coordinator uses it to run one museum batch per worker while
// respecting the database connection limit.
package workpool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Config configures the pool.
type Config struct {
	MaxConcurrent int // maximum items in flight (default: 4)
}

// Pool manages concurrent execution with a semaphore bound. Items never
// block each other beyond the concurrency limit, and one item's failure
// never cancels its siblings.
type Pool struct {
	config Config
	logger *zap.Logger
}

// New creates a pool.
func New(config Config, logger *zap.Logger) *Pool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 4
	}
	return &Pool{
		config: config,
		logger: logger.Named("workpool"),
	}
}

// Item is a unit of work.
type Item[T any] struct {
	ID      string                               // for logging/tracking
	Execute func(ctx context.Context) (T, error) // the work itself
}

// Result pairs an item's output with its error.
type Result[T any] struct {
	ID    string
	Value T
	Err   error
}

// Process executes all items and returns results in completion order (not
// submission order). Items that cannot start before ctx is cancelled come
// back with ctx's error.
func Process[T any](ctx context.Context, pool *Pool, items []Item[T]) []Result[T] {
	if len(items) == 0 {
		return nil
	}

	results := make([]Result[T], 0, len(items))
	resultsChan := make(chan Result[T], len(items))
	sem := make(chan struct{}, pool.config.MaxConcurrent)

	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(item Item[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				var zero T
				resultsChan <- Result[T]{ID: item.ID, Value: zero, Err: ctx.Err()}
				return
			}

			value, err := item.Execute(ctx)
			resultsChan <- Result[T]{ID: item.ID, Value: value, Err: err}
		}(item)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for result := range resultsChan {
		if result.Err != nil {
			pool.logger.Warn("Work item failed",
				zap.String("id", result.ID),
				zap.Error(result.Err))
		}
		results = append(results, result)
	}
	return results
}
