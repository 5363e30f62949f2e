package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_StartsAtOne(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, int64(0), seq.Current())
	assert.Equal(t, int64(1), seq.Next())
	assert.Equal(t, int64(2), seq.Next())
	assert.Equal(t, int64(2), seq.Current())
}

func TestSequence_Reset(t *testing.T) {
	seq := NewSequence()
	seq.Next()
	seq.Next()

	seq.Reset()
	assert.Equal(t, int64(0), seq.Current())
	assert.Equal(t, int64(1), seq.Next())
}

func TestSequence_ConcurrentNumbersAreUnique(t *testing.T) {
	seq := NewSequence()
	const workers = 50
	const perWorker = 100

	var wg sync.WaitGroup
	results := make([][]int64, workers)
	for i := range results {
		results[i] = make([]int64, perWorker)
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := range results[idx] {
				results[idx][j] = seq.Next()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, workers*perWorker)
	for _, r := range results {
		for _, n := range r {
			require.False(t, seen[n], "duplicate %d", n)
			seen[n] = true
		}
	}
	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), seq.Current())
}
