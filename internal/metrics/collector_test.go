package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
)

func TestCollectorRecordQuery(t *testing.T) {
	c := NewCollector()
	c.RecordQuery(client.QueryTaskLogs, 30*time.Millisecond, nil)
	c.RecordQuery(client.QueryTaskLogs, 10*time.Millisecond, &client.QueryError{Kind: client.ErrNotFound})
	c.RecordQuery(client.QueryPatchVersion, 5*time.Millisecond, errors.New("boom"))

	snap := c.Snapshot()
	assert.Equal(t, int64(3), snap.TotalQueries)
	assert.Equal(t, int64(2), snap.TotalErrors)
	require.Len(t, snap.Queries, 2)

	// sorted by name
	assert.Equal(t, client.QueryPatchVersion, snap.Queries[0].Query)
	assert.Equal(t, map[string]int64{"unknown": 1}, snap.Queries[0].ErrorKinds)

	logs := snap.Queries[1]
	assert.Equal(t, client.QueryTaskLogs, logs.Query)
	assert.Equal(t, int64(2), logs.Count)
	assert.Equal(t, int64(1), logs.Errors)
	assert.Equal(t, int64(40), logs.TotalTimeMs)
	assert.InDelta(t, 20.0, logs.AvgTimeMs, 0.001)
	assert.Equal(t, int64(10), logs.MinTimeMs)
	assert.Equal(t, int64(30), logs.MaxTimeMs)
	assert.Equal(t, map[string]int64{"not_found": 1}, logs.ErrorKinds)
}

func TestCollectorEmptySnapshot(t *testing.T) {
	snap := NewCollector().Snapshot()
	assert.Empty(t, snap.Queries)
	assert.NotNil(t, snap.Queries)
	assert.Zero(t, snap.TotalQueries)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestCollectorConcurrentUse(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				c.RecordQuery(client.QueryTaskTestCounts, time.Millisecond, nil)
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	require.Len(t, snap.Queries, 1)
	assert.Equal(t, int64(1000), snap.Queries[0].Count)
}
