// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Attempt metrics (only for captcha-gated operations)
	TotalAttempts int64
	MinAttempts   int64
	MaxAttempts   int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64

	// Attempt stats (nil if not applicable)
	TotalAttempts *int64
	AvgAttempts   *float64
	MinAttempts   *int64
	MaxAttempts   *int64
}

// Snapshot represents the full runtime statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64
	Acquisition   *OperationSnapshot
	Parse         *OperationSnapshot
	Store         *OperationSnapshot
}

// Operation names for the collector.
const (
	OpAcquisition = "acquisition"
	OpParse       = "parse"
	OpStore       = "store"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{
			MinTime:     time.Duration(math.MaxInt64),
			MinAttempts: math.MaxInt64,
		}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordAcquisition records timing and captcha attempts for one
// acquisition run.
func (c *Collector) RecordAcquisition(duration time.Duration, attempts int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(OpAcquisition)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}

	n := int64(attempts)
	m.TotalAttempts += n
	if n < m.MinAttempts {
		m.MinAttempts = n
	}
	if n > m.MaxAttempts {
		m.MaxAttempts = n
	}
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics, includeAttempts bool) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if includeAttempts && m.TotalAttempts > 0 {
		total := m.TotalAttempts
		avg := float64(m.TotalAttempts) / float64(m.Count)
		minA := m.MinAttempts
		maxA := m.MaxAttempts

		// Reset sentinel values for display
		if minA == math.MaxInt64 {
			minA = 0
		}

		snap.TotalAttempts = &total
		snap.AvgAttempts = &avg
		snap.MinAttempts = &minA
		snap.MaxAttempts = &maxA
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Acquisition:   snapshotOp(c.ops[OpAcquisition], true),
		Parse:         snapshotOp(c.ops[OpParse], false),
		Store:         snapshotOp(c.ops[OpStore], false),
	}
}
