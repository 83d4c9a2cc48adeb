// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
)

// QueryMetrics holds aggregated metrics for a single named query.
type QueryMetrics struct {
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Failures by kind (not_found, auth, transport, ...)
	ErrorKinds map[string]int64
}

// QuerySnapshot provides computed stats from raw metrics.
type QuerySnapshot struct {
	Query       string           `json:"query"`
	Count       int64            `json:"count"`
	Errors      int64            `json:"errors"`
	TotalTimeMs int64            `json:"total_time_ms"`
	AvgTimeMs   float64          `json:"avg_time_ms"`
	MinTimeMs   int64            `json:"min_time_ms"`
	MaxTimeMs   int64            `json:"max_time_ms"`
	ErrorKinds  map[string]int64 `json:"error_kinds,omitempty"`
}

// Snapshot represents the full server statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64         `json:"uptime_seconds"`
	TotalQueries  int64           `json:"total_queries"`
	TotalErrors   int64           `json:"total_errors"`
	Queries       []QuerySnapshot `json:"queries"`
}

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	queries   map[string]*QueryMetrics
}

var _ client.Recorder = (*Collector)(nil)

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		queries:   make(map[string]*QueryMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for a query.
// Caller must hold write lock.
func (c *Collector) getOrCreate(query string) *QueryMetrics {
	m, ok := c.queries[query]
	if !ok {
		m = &QueryMetrics{
			MinTime:    time.Duration(math.MaxInt64),
			ErrorKinds: make(map[string]int64),
		}
		c.queries[query] = m
	}
	return m
}

// RecordQuery records timing and outcome for a query.
func (c *Collector) RecordQuery(query string, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(query)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}

	if err != nil {
		m.Errors++
		m.ErrorKinds[client.KindName(err)]++
	}
}

// snapshotQuery creates a snapshot for a query, returning nil if no data.
func snapshotQuery(name string, m *QueryMetrics) *QuerySnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &QuerySnapshot{
		Query:       name,
		Count:       m.Count,
		Errors:      m.Errors,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
	if len(m.ErrorKinds) > 0 {
		snap.ErrorKinds = make(map[string]int64, len(m.ErrorKinds))
		for k, v := range m.ErrorKinds {
			snap.ErrorKinds[k] = v
		}
	}
	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics, queries sorted by name.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Queries:       []QuerySnapshot{},
	}
	for name, m := range c.queries {
		qs := snapshotQuery(name, m)
		if qs == nil {
			continue
		}
		snap.TotalQueries += qs.Count
		snap.TotalErrors += qs.Errors
		snap.Queries = append(snap.Queries, *qs)
	}
	sort.Slice(snap.Queries, func(i, j int) bool {
		return snap.Queries[i].Query < snap.Queries[j].Query
	})
	return snap
}
