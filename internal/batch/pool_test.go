package batch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunVisitsEveryIndexOnce(t *testing.T) {
	const n = 500
	var counts [n]atomic.Int32
	Run(8, n, func(i int) {
		counts[i].Add(1)
	})
	for i := range counts {
		assert.Equal(t, int32(1), counts[i].Load(), "index %d", i)
	}
}

func TestRunEmptyAndDefaultWorkers(t *testing.T) {
	called := false
	Run(4, 0, func(int) { called = true })
	assert.False(t, called)

	var total atomic.Int64
	Run(0, 10, func(i int) { total.Add(int64(i)) })
	assert.Equal(t, int64(45), total.Load())
}

func TestMapKeepsOrder(t *testing.T) {
	in := []string{"a", "bb", "ccc", "dddd"}
	out := Map(3, in, func(i int, s string) int {
		time.Sleep(time.Duration(len(in)-i) * time.Millisecond)
		return len(s)
	})
	assert.Equal(t, []int{1, 2, 3, 4}, out)
}

func TestPoolReportsFinalProgress(t *testing.T) {
	var mu sync.Mutex
	var last [2]int
	Pool{Workers: 2, Interval: time.Millisecond, Progress: func(done, total int, _ float64) {
		mu.Lock()
		last = [2]int{done, total}
		mu.Unlock()
	}}.Run(20, func(int) { time.Sleep(100 * time.Microsecond) })
	assert.Equal(t, [2]int{20, 20}, last)
}
