package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// visits runs For over n indices and returns how often each was visited.
func visits(n int, cfg Config) []int32 {
	seen := make([]int32, n)
	For(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	}, cfg)
	return seen
}

func TestFor_EachIndexOnce(t *testing.T) {
	for name, cfg := range map[string]Config{
		"default":    DefaultConfig(),
		"sequential": {Enabled: false},
		"uneven":     {Enabled: true, NumWorkers: 3, MinChunkSize: 1},
		"manyWorker": {Enabled: true, NumWorkers: 64, MinChunkSize: 1},
	} {
		t.Run(name, func(t *testing.T) {
			for _, n := range []int{1, 7, 100, 1001} {
				for i, c := range visits(n, cfg) {
					require.Equal(t, int32(1), c, "n=%d, index %d", n, i)
				}
			}
		})
	}
}

func TestWorkers(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 3}
	assert.Equal(t, 1, cfg.Workers(2), "below the minimum chunk size")
	assert.Equal(t, 4, cfg.Workers(12))
	assert.Equal(t, 3, cfg.Workers(9), "chunks of at least MinChunkSize")
	assert.Equal(t, 4, cfg.Workers(1000))

	cfg.Enabled = false
	assert.Equal(t, 1, cfg.Workers(1000))
}

func TestForWorkers_ChunksAreExclusive(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2}
	n := 37
	workers := cfg.Workers(n)
	require.Equal(t, 4, workers)

	owner := make([]int, n)
	perWorker := make([]int, workers) // written only by its own worker
	ForWorkers(n, func(w, i int) {
		owner[i] = w
		perWorker[w]++
	}, cfg)

	total := 0
	for _, c := range perWorker {
		total += c
	}
	assert.Equal(t, n, total)
	for i := 1; i < n; i++ {
		assert.GreaterOrEqual(t, owner[i], owner[i-1], "chunks are contiguous")
	}
}

func TestForWorkers_Empty(t *testing.T) {
	called := false
	ForWorkers(0, func(_, _ int) { called = true }, DefaultConfig())
	assert.False(t, called)
	assert.Equal(t, 1, DefaultConfig().Workers(0))
}
