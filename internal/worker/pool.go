// Package worker fans file reads out across a fixed set of goroutines and
// hands the results back in input order. The artifact store uses it to load
// long trace and analysis histories without serializing on disk I/O.
package worker

import (
	"runtime"
	"sync"
)

// Result pairs one processed file with its position in the input slice.
type Result[T any] struct {
	Path  string
	Value T
	Err   error
}

// Map applies fn to every path using up to concurrency goroutines and
// returns the results in the same order as paths. A failing path captures
// its error in the corresponding Result instead of aborting the batch.
// concurrency <= 0 means one worker per CPU.
func Map[T any](paths []string, concurrency int, fn func(string) (T, error)) []Result[T] {
	if len(paths) == 0 {
		return nil
	}
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if concurrency > len(paths) {
		concurrency = len(paths)
	}

	jobs := make(chan int, len(paths))
	results := make([]Result[T], len(paths))

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				val, err := fn(paths[i])
				results[i] = Result[T]{Path: paths[i], Value: val, Err: err}
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
