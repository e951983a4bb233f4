package stats_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tailored-agentic-units/feasibility/observability"
	"github.com/tailored-agentic-units/feasibility/stats"
)

var epoch = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

func complete(section string, at time.Time, d time.Duration) observability.Event {
	return observability.Event{
		Type:      observability.EventToolComplete,
		Section:   section,
		Timestamp: at,
		Duration:  d,
	}
}

func TestAggregator_Empty(t *testing.T) {
	snap := stats.New().Snapshot()

	assert.Zero(t, snap.TotalCalls)
	assert.Empty(t, snap.SectionCalls)
	assert.Zero(t, snap.AvgResponseTime)
	assert.True(t, snap.SessionStart.IsZero())
}

func TestAggregator_CountsCompleteEvents(t *testing.T) {
	a := stats.New()
	ctx := context.Background()

	a.OnEvent(ctx, complete("S-2", epoch.Add(1*time.Second), 1*time.Second))
	a.OnEvent(ctx, complete("S-4", epoch.Add(3*time.Second), 2*time.Second))
	a.OnEvent(ctx, complete("S-4", epoch.Add(5*time.Second), 3*time.Second))

	snap := a.Snapshot()
	assert.Equal(t, int64(3), snap.TotalCalls)
	assert.Equal(t, int64(1), snap.Calls("S-2"))
	assert.Equal(t, int64(2), snap.Calls("S-4"))
	assert.Zero(t, snap.Calls("S-1"))
	assert.InDelta(t, 2.0, snap.AvgResponseTime, 1e-9)
	assert.Equal(t, epoch, snap.SessionStart)
}

func TestAggregator_IgnoresStartAndError(t *testing.T) {
	a := stats.New()
	ctx := context.Background()

	a.OnEvent(ctx, observability.Event{Type: observability.EventToolStart, Section: "S-2", Timestamp: epoch})
	a.OnEvent(ctx, observability.Event{Type: observability.EventToolError, Section: "S-2", Timestamp: epoch, Duration: time.Second})

	snap := a.Snapshot()
	assert.Zero(t, snap.TotalCalls)
	assert.True(t, snap.SessionStart.IsZero())
}

func TestAggregator_SnapshotIsCopy(t *testing.T) {
	a := stats.New()
	a.OnComplete(complete("S-3", epoch, time.Second))

	snap := a.Snapshot()
	snap.SectionCalls["S-3"] = 99

	assert.Equal(t, int64(1), a.Snapshot().Calls("S-3"))
}

func TestAggregator_Concurrent(t *testing.T) {
	a := stats.New()
	sections := []string{"S-1", "S-2", "S-3", "S-4"}

	const perSection = 250
	var wg sync.WaitGroup
	for _, section := range sections {
		for range perSection {
			wg.Go(func() {
				a.OnEvent(context.Background(), complete(section, epoch.Add(time.Second), 500*time.Millisecond))
			})
		}
	}

	var readers sync.WaitGroup
	for range 4 {
		readers.Go(func() {
			for range 50 {
				snap := a.Snapshot()
				var sum int64
				for _, n := range snap.SectionCalls {
					sum += n
				}
				assert.Equal(t, snap.TotalCalls, sum)
			}
		})
	}

	wg.Wait()
	readers.Wait()

	snap := a.Snapshot()
	assert.Equal(t, int64(len(sections)*perSection), snap.TotalCalls)
	for _, section := range sections {
		assert.Equal(t, int64(perSection), snap.Calls(section))
	}
	assert.InDelta(t, 0.5, snap.AvgResponseTime, 1e-9)
}

func TestAggregator_Reset(t *testing.T) {
	a := stats.New()
	a.OnComplete(complete("S-2", epoch.Add(time.Second), time.Second))
	a.Reset()

	snap := a.Snapshot()
	assert.Zero(t, snap.TotalCalls)
	assert.Empty(t, snap.SectionCalls)
	assert.True(t, snap.SessionStart.IsZero())

	later := epoch.Add(time.Hour)
	a.OnComplete(complete("S-1", later, 0))
	assert.Equal(t, later, a.Snapshot().SessionStart)
}
