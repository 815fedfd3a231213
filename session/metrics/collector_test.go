package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectorCountsAreSafeForConcurrentUse(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncSimulations()
			c.IncNodesCreated()
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	require.Equal(t, int64(50), snap.Simulations)
	require.Equal(t, int64(50), snap.NodesCreated)
}

func TestDummyCollectorNeverAccumulates(t *testing.T) {
	c := Dummy()
	c.IncSimulations()
	c.IncNodesCreated()
	require.Equal(t, Snapshot{}, c.Snapshot())
}
