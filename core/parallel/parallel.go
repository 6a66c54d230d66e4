// Package parallel provides chunked fan-out helpers used by the local
// compute backend for partition-parallel work.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items across workers (at most numWorkers, at most one
// per item) and runs fn for each [start, end) chunk concurrently. A
// numWorkers of zero or less means runtime.NumCPU().
func Parallelize(items, numWorkers int, fn func(start, end int)) {
	if items == 0 {
		return
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so every item lands in exactly one chunk.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeErr is Parallelize for chunk functions that can fail. The
// first non-nil error is returned; all chunks still run to completion.
func ParallelizeErr(items, numWorkers int, fn func(start, end int) error) error {
	if items == 0 {
		return nil
	}

	var mu sync.Mutex
	var firstErr error

	Parallelize(items, numWorkers, func(start, end int) {
		if err := fn(start, end); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
	})
	return firstErr
}
