package bus

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/feasibility/observability"
)

// SubscribeOption configures how a subscription receives events.
type SubscribeOption func(*subscription)

// Inline delivers events synchronously in the invoking goroutine. Use only
// for observers that return quickly; a slow inline observer slows the
// provider call it observes.
func Inline() SubscribeOption {
	return func(s *subscription) { s.inline = true }
}

// Buffer sets the mailbox capacity for an asynchronous subscription.
func Buffer(size int) SubscribeOption {
	return func(s *subscription) {
		if size > 0 {
			s.size = size
		}
	}
}

type delivery struct {
	ctx   context.Context
	event observability.Event
}

type subscription struct {
	id       string
	observer observability.Observer
	inline   bool
	size     int
	mailbox  *mailbox
}

// mailbox is a FIFO of pending deliveries that keeps each invocation's
// events paired. Start events are admitted only while fewer than size
// deliveries are pending. A terminal event is admitted exactly when its
// start was, even past capacity, so the observer sees both or neither.
// The overflow is bounded by the number of invocations in flight.
type mailbox struct {
	size    int
	queue   []delivery
	started map[string]struct{}
	closed  bool
	mu      sync.Mutex
	cond    *sync.Cond
}

func newMailbox(size int) *mailbox {
	m := &mailbox{
		size:    size,
		started: make(map[string]struct{}),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// offer enqueues without blocking. Reports false when the event was
// dropped, either for lack of room or because its start was dropped.
func (m *mailbox) offer(d delivery) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}

	id := d.event.InvocationID
	if d.event.Type.Terminal() {
		if _, ok := m.started[id]; !ok {
			return false
		}
		delete(m.started, id)
	} else {
		if len(m.queue) >= m.size {
			return false
		}
		m.started[id] = struct{}{}
	}

	m.queue = append(m.queue, d)
	m.cond.Signal()
	return true
}

// next blocks until deliveries are pending and takes all of them. Returns
// false once the mailbox is closed and empty.
func (m *mailbox) next() ([]delivery, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.queue) == 0 && !m.closed {
		m.cond.Wait()
	}
	if len(m.queue) == 0 {
		return nil, false
	}
	batch := m.queue
	m.queue = nil
	return batch, true
}

// close stops admission. Deliveries already queued are still returned by
// next.
func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cond.Broadcast()
}
