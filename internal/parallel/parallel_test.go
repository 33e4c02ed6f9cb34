package parallel

import (
	"sync/atomic"
	"testing"
)

func TestRange_CoversEveryIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 10}

	n := 103
	hits := make([]int32, n)
	Range(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	}, cfg)

	for i, h := range hits {
		if h != 1 {
			t.Errorf("index %d visited %d times", i, h)
		}
	}
}

func TestRange_SequentialRunsInline(t *testing.T) {
	calls := 0
	Range(100, func(start, end int) {
		calls++
		if start != 0 || end != 100 {
			t.Errorf("unexpected chunk [%d, %d)", start, end)
		}
	}, Sequential())

	if calls != 1 {
		t.Errorf("Expected a single inline call, got %d", calls)
	}
}

func TestRange_SmallInputRunsInline(t *testing.T) {
	cfg := DefaultConfig()

	calls := 0
	Range(cfg.MinChunkSize-1, func(start, end int) {
		calls++
		if start != 0 || end != cfg.MinChunkSize-1 {
			t.Errorf("unexpected chunk [%d, %d)", start, end)
		}
	}, cfg)

	if calls != 1 {
		t.Errorf("Expected a single inline call, got %d", calls)
	}
}

func TestRange_Empty(t *testing.T) {
	Range(0, func(_, _ int) {
		t.Error("f must not be called for n == 0")
	}, DefaultConfig())
}
