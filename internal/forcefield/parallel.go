package forcefield

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// numChunks picks how many goroutines parallelFor will use for n items.
func numChunks(n, minChunk, workers int) int {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if n <= minChunk || workers <= 1 {
		return 1
	}
	return workers
}

// parallelFor executes fn over contiguous chunks of [0, n) and returns the
// first chunk error. Chunk boundaries depend only on n and the worker count,
// so per-chunk sums are reproducible.
func parallelFor(n, minChunk, workers int, fn func(chunk, start, end int) error) error {
	chunks := numChunks(n, minChunk, workers)
	if chunks == 1 {
		return fn(0, 0, n)
	}

	chunkSize := (n + chunks - 1) / chunks

	var g errgroup.Group
	for w := 0; w < chunks; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			break
		}
		g.Go(func() error {
			return fn(w, start, end)
		})
	}
	return g.Wait()
}
