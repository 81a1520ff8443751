// Package parallel runs independent evaluations over a fixed pool of
// goroutines. Each worker receives a contiguous chunk of indices and its own
// worker number, so per-worker state (such as one autodiff stack each) needs
// no locking.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4, // A gradient evaluation is already a sizeable unit of work.
	}
}

// chunkSize returns the number of items per worker, or n when the work runs
// sequentially.
func (cfg Config) chunkSize(n int) int {
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize || n == 0 {
		return max(n, 1)
	}
	return max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
}

// Workers returns how many workers ForWorkers uses for n items.
func (cfg Config) Workers(n int) int {
	size := cfg.chunkSize(n)
	return max((n+size-1)/size, 1)
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForWorkers(n, func(_, i int) { f(i) }, cfg)
}

// ForWorkers executes f(worker, i) for i in [0, n). Indices are split into
// cfg.Workers(n) contiguous chunks; all indices of a chunk run sequentially
// on the same worker, numbered from 0.
func ForWorkers(n int, f func(worker, i int), cfg Config) {
	size := cfg.chunkSize(n)
	if size >= n {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			f(0, i)
		}
		return
	}

	var wg sync.WaitGroup
	for worker, start := 0, 0; start < n; worker, start = worker+1, start+size {
		end := min(start+size, n)
		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(w, i)
			}
		}(worker, start, end)
	}
	wg.Wait()
}
