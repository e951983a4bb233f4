package bus

import "sync/atomic"

// MetricsSnapshot is a point-in-time view of bus counters.
type MetricsSnapshot struct {
	Subscribers      int64
	Invocations      int64
	InFlight         int64
	Dropped          int64
	ObserverFailures int64
}

type metrics struct {
	subscribers      atomic.Int64
	invocations      atomic.Int64
	inFlight         atomic.Int64
	dropped          atomic.Int64
	observerFailures atomic.Int64
}

func (m *metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Subscribers:      m.subscribers.Load(),
		Invocations:      m.invocations.Load(),
		InFlight:         m.inFlight.Load(),
		Dropped:          m.dropped.Load(),
		ObserverFailures: m.observerFailures.Load(),
	}
}
