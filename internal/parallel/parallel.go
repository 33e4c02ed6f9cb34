// Package parallel splits elementwise work over goroutines for the numeric kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how a loop is split.
type Config struct {
	Enabled      bool // Whether loops may run on more than one goroutine.
	NumWorkers   int  // Upper bound on goroutines per loop.
	MinChunkSize int  // Loops shorter than this run inline.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Sequential returns a Config that always runs inline.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// Range calls f(start, end) over disjoint half-open chunks covering [0, n).
// It returns after every chunk has finished.
func Range(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		f(0, n)
		return
	}

	chunk := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}
