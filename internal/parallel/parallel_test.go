package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	var counter int64
	n := 1000
	seen := make([]int32, n)

	For(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
		atomic.AddInt64(&counter, int64(end-start))
	}, cfg)

	assert.Equal(t, int64(n), counter)
	for i, s := range seen {
		assert.Equal(t, int32(1), s, "index %d visited %d times", i, s)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	calls := 0
	For(100, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 100, end)
	}, cfg)

	assert.Equal(t, 1, calls)
}

func TestFor_SmallInput(t *testing.T) {
	cfg := DefaultConfig()

	calls := 0
	For(cfg.MinChunkSize, func(_, _ int) { calls++ }, cfg)
	assert.Equal(t, 1, calls)

	For(0, func(_, _ int) { calls++ }, cfg)
	assert.Equal(t, 1, calls)
}

func TestWorkers(t *testing.T) {
	assert.Positive(t, Workers())
	assert.Equal(t, Workers(), DefaultConfig().NumWorkers)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	data := make([]float64, 1<<20)

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			For(len(data), func(s, e int) {
				for j := s; j < e; j++ {
					data[j] = float64(j) * 0.5
				}
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			For(len(data), func(s, e int) {
				for j := s; j < e; j++ {
					data[j] = float64(j) * 0.5
				}
			}, cfgSeq)
		}
	})
}
