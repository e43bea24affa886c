package ids_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GitSid-glitch/cobuild/tools/ids"
)

func TestGenerateMonotonic(t *testing.T) {
	prev := ids.Generate()
	for i := 0; i < 1000; i++ {
		id := ids.Generate()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestGenerateConcurrentUnique(t *testing.T) {
	const (
		workers = 8
		each    = 500
	)
	out := make(chan int64, workers*each)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				out <- ids.Generate()
			}
		}()
	}
	wg.Wait()
	close(out)

	seen := make(map[int64]struct{}, workers*each)
	for id := range out {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
}

func TestGenerateString(t *testing.T) {
	require.NotEmpty(t, ids.GenerateString())
	require.NotEqual(t, ids.GenerateString(), ids.GenerateString())
}

func TestSetNodeIDClampsRange(t *testing.T) {
	ids.SetNodeID(5000)
	require.NotZero(t, ids.Generate())
	ids.SetNodeID(1)
}
