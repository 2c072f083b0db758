// Package batch runs independent jobs on a fixed worker pool.
package batch

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ProgressFunc receives the number of finished jobs, the total and the
// throughput in jobs per second.
type ProgressFunc func(done, total int, rate float64)

// Pool configures a worker pool run.
type Pool struct {
	Workers  int
	Progress ProgressFunc
	Interval time.Duration
}

// Run calls fn once for every index in [0, n) using workers goroutines.
func Run(workers, n int, fn func(i int)) {
	Pool{Workers: workers}.Run(n, fn)
}

// Map applies fn to every item and returns the results in input order.
func Map[T, R any](workers int, items []T, fn func(i int, item T) R) []R {
	results := make([]R, len(items))
	Run(workers, len(items), func(i int) {
		results[i] = fn(i, items[i])
	})
	return results
}

// Run calls fn once for every index in [0, n). Each index is handled by
// exactly one worker; Run returns after all calls finished.
func (p Pool) Run(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, n)

	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	var reporter sync.WaitGroup
	if p.Progress != nil {
		interval := p.Interval
		if interval <= 0 {
			interval = 2 * time.Second
		}
		reporter.Add(1)
		go func() {
			defer reporter.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if c := processed.Load(); c > 0 {
						p.Progress(int(c), n, float64(c)/time.Since(start).Seconds())
					}
				}
			}
		}()
	}

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				fn(idx)
				processed.Add(1)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)
	reporter.Wait()

	if p.Progress != nil {
		p.Progress(n, n, float64(n)/time.Since(start).Seconds())
	}
}
