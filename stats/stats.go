// Package stats aggregates session statistics from tool execution events.
package stats

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/tailored-agentic-units/feasibility/observability"
)

// Snapshot is a consistent point-in-time copy of the session counters.
type Snapshot struct {
	TotalCalls      int64            `json:"total_calls"`
	SectionCalls    map[string]int64 `json:"section_calls"`
	AvgResponseTime float64          `json:"avg_response_time"`
	SessionStart    time.Time        `json:"session_start"`
}

// Calls returns the call count for section.
func (s Snapshot) Calls(section string) int64 {
	return s.SectionCalls[section]
}

// Aggregator derives session statistics from complete events. Start and
// error events are ignored. It is safe for concurrent use; every update
// changes all counters under one lock.
type Aggregator struct {
	total        int64
	sections     map[string]int64
	avg          float64
	sessionStart time.Time
	mu           sync.RWMutex
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{sections: make(map[string]int64)}
}

// OnEvent implements observability.Observer.
func (a *Aggregator) OnEvent(_ context.Context, event observability.Event) {
	if event.Type == observability.EventToolComplete {
		a.OnComplete(event)
	}
}

// OnComplete folds one complete event into the running counters. The
// average uses the incremental mean so no history is retained. The session
// starts when the first counted invocation began.
func (a *Aggregator) OnComplete(event observability.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sessionStart.IsZero() {
		a.sessionStart = event.Timestamp.Add(-event.Duration)
	}
	a.total++
	a.sections[event.Section]++
	a.avg += (event.DurationSeconds() - a.avg) / float64(a.total)
}

// Snapshot returns a copy of the current counters.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return Snapshot{
		TotalCalls:      a.total,
		SectionCalls:    maps.Clone(a.sections),
		AvgResponseTime: a.avg,
		SessionStart:    a.sessionStart,
	}
}

// Reset clears every counter and the session start.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total = 0
	a.sections = make(map[string]int64)
	a.avg = 0
	a.sessionStart = time.Time{}
}
