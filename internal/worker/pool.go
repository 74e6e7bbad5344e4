// Package worker provides the bounded-concurrency pool used for batch
// contract analysis.
package worker

import (
	"context"
	"sync"
)

// Pool fans work items out to a fixed number of goroutines
type Pool struct {
	workers int
}

// NewPool creates a pool with the given concurrency
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes do(ctx, i) for every i in [0, n) with bounded concurrency
// and blocks until all items finish or the context is cancelled. Items not
// yet started when the context ends are skipped; the caller sees their
// results zero-valued.
func (p *Pool) Run(ctx context.Context, n int, do func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}

	indices := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > n {
		workers = n
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				if ctx.Err() != nil {
					return
				}
				do(ctx, i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case indices <- i:
		case <-ctx.Done():
			close(indices)
			wg.Wait()
			return
		}
	}
	close(indices)
	wg.Wait()
}
