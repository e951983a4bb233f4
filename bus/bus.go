// Package bus wraps provider invocations with start, complete and error
// events and broadcasts them to registered observers.
//
// Every invocation emits exactly one start event followed by exactly one
// complete or error event carrying the same invocation id. Each observer
// sees an invocation's events in that order; events of different
// invocations may interleave. Emission never fails or blocks the provider
// call: a mailbox subscriber that is full drops the start event, and then
// also the matching terminal event, so it never sees half an invocation.
// A panicking observer is recovered and logged.
//
//	b := bus.New()
//	b.Subscribe(stats.New(), bus.Inline())
//	result, err := b.Invoke(ctx, bus.Call{Tool: "check_comms_status", Section: "S-3"}, fn)
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/feasibility/observability"
)

const defaultMailboxSize = 64

// Call identifies a provider invocation.
type Call struct {
	Tool       string
	Section    string
	Parameters map[string]any
}

// Func is the provider call wrapped by Invoke.
type Func func(ctx context.Context) (any, error)

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for observer failures and drops.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) { b.logger = logger }
}

// WithMailboxSize sets the default capacity of asynchronous mailboxes.
func WithMailboxSize(size int) Option {
	return func(b *Bus) {
		if size > 0 {
			b.mailboxSize = size
		}
	}
}

// WithClock overrides the time source used for timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) { b.now = now }
}

// WithIDGenerator overrides invocation id generation.
func WithIDGenerator(newID func() string) Option {
	return func(b *Bus) { b.newID = newID }
}

// Bus is the execution event bus. All methods are safe for concurrent use.
type Bus struct {
	subs   []*subscription
	closed bool
	mu     sync.RWMutex

	inflight  sync.WaitGroup
	mailboxes sync.WaitGroup
	closeOnce sync.Once

	logger      *slog.Logger
	mailboxSize int
	now         func() time.Time
	newID       func() string
	metrics     metrics
}

// New creates a Bus with no subscribers.
func New(opts ...Option) *Bus {
	b := &Bus{
		logger:      slog.Default(),
		mailboxSize: defaultMailboxSize,
		now:         time.Now,
		newID:       newInvocationID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func newInvocationID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Subscribe registers obs and returns its subscription id. Subscriptions
// are asynchronous by default: events are queued to a per-subscriber
// mailbox drained by a dedicated goroutine.
func (b *Bus) Subscribe(obs observability.Observer, opts ...SubscribeOption) (string, error) {
	if obs == nil {
		return "", fmt.Errorf("subscribe: observer is nil")
	}

	s := &subscription{
		id:       uuid.Must(uuid.NewV7()).String(),
		observer: obs,
		size:     b.mailboxSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return "", ErrClosed
	}

	if !s.inline {
		s.mailbox = newMailbox(s.size)
		b.mailboxes.Add(1)
		go b.drain(s)
	}

	b.subs = append(b.subs, s)
	b.metrics.subscribers.Add(1)
	return s.id, nil
}

// Unsubscribe removes a subscription. Events already queued to its mailbox
// are still delivered. Reports whether the id was registered.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.subs, func(s *subscription) bool { return s.id == id })
	if i < 0 {
		return false
	}

	s := b.subs[i]
	b.subs = slices.Delete(b.subs, i, i+1)
	if s.mailbox != nil {
		s.mailbox.close()
	}
	b.metrics.subscribers.Add(-1)
	return true
}

// Invoke runs fn, emitting a start event before it and a complete or error
// event after it. The provider's result and error are returned unchanged.
// A panic in fn emits an error event and is re-raised.
func (b *Bus) Invoke(ctx context.Context, call Call, fn Func) (result any, err error) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil, ErrClosed
	}
	b.inflight.Add(1)
	b.mu.RUnlock()
	defer b.inflight.Done()

	b.metrics.invocations.Add(1)
	b.metrics.inFlight.Add(1)
	defer b.metrics.inFlight.Add(-1)

	base := observability.Event{
		InvocationID: b.newID(),
		Tool:         call.Tool,
		Section:      call.Section,
		Parameters:   maps.Clone(call.Parameters),
	}

	start := b.now()
	b.publish(ctx, phaseEvent(base, observability.EventToolStart, start))

	finished := false
	defer func() {
		if finished {
			return
		}
		r := recover()
		end, elapsed := b.elapsed(start)
		e := phaseEvent(base, observability.EventToolError, end)
		e.Duration = elapsed
		if r == nil {
			e.Error = "invocation aborted"
		} else {
			e.Error = fmt.Sprintf("panic: %v", r)
		}
		b.publish(ctx, e)
		if r != nil {
			panic(r)
		}
	}()

	result, err = fn(ctx)
	finished = true

	end, elapsed := b.elapsed(start)
	if err != nil {
		e := phaseEvent(base, observability.EventToolError, end)
		e.Duration = elapsed
		e.Error = err.Error()
		b.publish(ctx, e)
		return result, err
	}

	e := phaseEvent(base, observability.EventToolComplete, end)
	e.Duration = elapsed
	e.Result = result
	b.publish(ctx, e)
	return result, nil
}

// Metrics returns a snapshot of the bus counters.
func (b *Bus) Metrics() MetricsSnapshot {
	return b.metrics.snapshot()
}

// Close rejects new invocations and subscriptions, waits for in-flight
// invocations to finish, then drains and stops every mailbox.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()

		b.inflight.Wait()

		b.mu.Lock()
		for _, s := range b.subs {
			if s.mailbox != nil {
				s.mailbox.close()
			}
		}
		b.metrics.subscribers.Add(-int64(len(b.subs)))
		b.subs = nil
		b.mu.Unlock()

		b.mailboxes.Wait()
	})
	return nil
}

func (b *Bus) elapsed(start time.Time) (time.Time, time.Duration) {
	end := b.now()
	d := end.Sub(start)
	if d < 0 {
		return start, 0
	}
	return end, d
}

// publish delivers e to inline subscribers first, with the lock released
// so an observer may itself subscribe or unsubscribe, then queues it to
// mailbox subscribers. Inline observers such as statistics have therefore
// seen an event before any mailbox observer does.
func (b *Bus) publish(ctx context.Context, e observability.Event) {
	b.mu.RLock()
	var inline []*subscription
	for _, s := range b.subs {
		if s.inline {
			inline = append(inline, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range inline {
		b.deliver(ctx, s, e)
	}

	d := delivery{ctx: context.WithoutCancel(ctx), event: e}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.inline || s.mailbox.offer(d) {
			continue
		}
		b.metrics.dropped.Add(1)
		b.logger.Warn("event dropped for mailbox observer",
			"subscription", s.id,
			"event", e.Type,
			"invocation_id", e.InvocationID,
			"tool", e.Tool,
		)
	}
}

func (b *Bus) drain(s *subscription) {
	defer b.mailboxes.Done()
	for {
		batch, ok := s.mailbox.next()
		if !ok {
			return
		}
		for _, d := range batch {
			b.deliver(d.ctx, s, d.event)
		}
	}
}

func (b *Bus) deliver(ctx context.Context, s *subscription, e observability.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.observerFailures.Add(1)
			b.logger.Error("observer failed",
				"subscription", s.id,
				"event", e.Type,
				"invocation_id", e.InvocationID,
				"tool", e.Tool,
				"panic", r,
			)
		}
	}()
	s.observer.OnEvent(ctx, e)
}
