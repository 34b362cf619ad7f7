package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks session counters.
type Metrics struct {
	// Key handling
	eventCount   atomic.Uint64
	eventTotalNs atomic.Int64
	eventMaxNs   atomic.Int64

	// Serial writes
	writeCount   atomic.Uint64
	writeTotalNs atomic.Int64
	writeMaxNs   atomic.Int64
	writeErrors  atomic.Uint64

	// Largest number of commands waiting for the link
	queueHigh atomic.Int64

	modeChanges atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordEvent records the time spent translating one key event.
func (m *Metrics) RecordEvent(d time.Duration) {
	m.eventCount.Add(1)
	m.eventTotalNs.Add(d.Nanoseconds())
	storeMax(&m.eventMaxNs, d.Nanoseconds())
}

// RecordWrite records one command write.
func (m *Metrics) RecordWrite(d time.Duration, err error) {
	if err != nil {
		m.writeErrors.Add(1)
		return
	}
	m.writeCount.Add(1)
	m.writeTotalNs.Add(d.Nanoseconds())
	storeMax(&m.writeMaxNs, d.Nanoseconds())
}

// RecordQueueDepth records the pending command count.
func (m *Metrics) RecordQueueDepth(n int) {
	storeMax(&m.queueHigh, int64(n))
}

// RecordModeChange counts a mode transition.
func (m *Metrics) RecordModeChange() {
	m.modeChanges.Add(1)
}

// storeMax raises v to n if n is larger.
func storeMax(v *atomic.Int64, n int64) {
	for {
		old := v.Load()
		if n <= old || v.CompareAndSwap(old, n) {
			return
		}
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Uptime:      time.Since(m.startTime),
		EventCount:  m.eventCount.Load(),
		MaxEventNs:  m.eventMaxNs.Load(),
		WriteCount:  m.writeCount.Load(),
		MaxWriteNs:  m.writeMaxNs.Load(),
		WriteErrors: m.writeErrors.Load(),
		QueueHigh:   m.queueHigh.Load(),
		ModeChanges: m.modeChanges.Load(),
	}
	if s.EventCount > 0 {
		s.AvgEventNs = m.eventTotalNs.Load() / int64(s.EventCount)
	}
	if s.WriteCount > 0 {
		s.AvgWriteNs = m.writeTotalNs.Load() / int64(s.WriteCount)
	}
	return s
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime      time.Duration
	EventCount  uint64
	AvgEventNs  int64
	MaxEventNs  int64
	WriteCount  uint64
	AvgWriteNs  int64
	MaxWriteNs  int64
	WriteErrors uint64
	QueueHigh   int64
	ModeChanges uint64
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
