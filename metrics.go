package pqueue

import (
	"fmt"
	"sync/atomic"
)

// MetricsPolicy defines hooks used by the channel to report
// queueing and completion activity.
//
// Implementations must be safe for concurrent use.
// All methods are called with the channel lock held, so they are
// expected to be lightweight and non-blocking.
type MetricsPolicy interface {

	// IncPut counts an accepted item.
	IncPut()

	// IncGet counts an item withdrawn by a consumer.
	IncGet()

	// IncDone counts a completion signal.
	IncDone()

	// ObservePending reports the number of pending items right after
	// a put or a get changed it.
	ObservePending(n int)
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	puts atomic.Uint64
	gets atomic.Uint64

	_ [48]byte // padding to avoid false sharing

	done atomic.Uint64

	// peak is the highest pending count ever observed.
	peak atomic.Int64
}

// Puts returns the total number of accepted items.
func (m *AtomicMetrics) Puts() uint64 { return m.puts.Load() }

// Gets returns the total number of withdrawn items.
func (m *AtomicMetrics) Gets() uint64 { return m.gets.Load() }

// Done returns the total number of completion signals.
func (m *AtomicMetrics) Done() uint64 { return m.done.Load() }

// PeakPending returns the largest pending count observed so far.
func (m *AtomicMetrics) PeakPending() int { return int(m.peak.Load()) }

func (m *AtomicMetrics) IncPut()  { m.puts.Add(1) }
func (m *AtomicMetrics) IncGet()  { m.gets.Add(1) }
func (m *AtomicMetrics) IncDone() { m.done.Add(1) }

// ObservePending raises the recorded peak when n exceeds it.
func (m *AtomicMetrics) ObservePending(n int) {
	v := int64(n)
	for {
		cur := m.peak.Load()
		if v <= cur || m.peak.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Snapshot formats the counters for logs and debugging.
func (m *AtomicMetrics) Snapshot() string {
	return fmt.Sprintf("puts=%d gets=%d done=%d peak=%d",
		m.Puts(), m.Gets(), m.Done(), m.PeakPending())
}

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (NoopMetrics) IncPut()            {}
func (NoopMetrics) IncGet()            {}
func (NoopMetrics) IncDone()           {}
func (NoopMetrics) ObservePending(int) {}
