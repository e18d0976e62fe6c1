// Package parallel provides the fork-join infrastructure used by the CSV codec.
//
// Work is split into contiguous chunks, one task per chunk runs on a bounded
// pool of goroutines, and results are gathered into a slice indexed by chunk
// id. Callers merge that slice sequentially after the barrier, so output order
// never depends on scheduling or completion order.
package parallel

import (
	"fmt"
	"runtime"

	"github.com/paveg/tabular/internal/errors"
	"golang.org/x/sync/errgroup"
)

// WorkerPool bounds the number of chunk tasks running at once
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a new worker pool; numWorkers <= 0 selects runtime.NumCPU()
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// NumWorkers returns the pool size
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Chunk is a contiguous range [Start, End) of rows or lines owned by one task
type Chunk struct {
	Index int
	Start int
	End   int
}

// Len returns the number of items in the chunk
func (c Chunk) Len() int {
	return c.End - c.Start
}

// Partition splits n items into at most workers contiguous chunks of
// ceil(n/workers) items. The last chunk may be shorter and no chunk is empty.
func Partition(n, workers int) []Chunk {
	if n <= 0 {
		return nil
	}
	workers = max(1, min(workers, n))
	size := (n + workers - 1) / workers

	chunks := make([]Chunk, 0, workers)
	for start := 0; start < n; start += size {
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: start,
			End:   min(start+size, n),
		})
	}
	return chunks
}

// ProcessIndexed executes worker for every item in parallel and returns the
// results in item order. The first error (or panic) aborts the operation.
func ProcessIndexed[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]R, len(items))
	var g errgroup.Group
	g.SetLimit(wp.numWorkers)

	for i, item := range items {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.NewInternalError("parallel task", fmt.Errorf("task %d panicked: %v", i, r))
				}
			}()
			result, err := worker(i, item)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
