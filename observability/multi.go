package observability

import "context"

// NoOpObserver discards all events.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}

// MultiObserver forwards each event to a fixed list of observers in order.
// A panic in one observer is recovered so the rest still see the event;
// OnFailure, when set, receives the recovered value.
type MultiObserver struct {
	observers []Observer
	OnFailure func(obs Observer, event Event, recovered any)
}

// NewMultiObserver creates a MultiObserver over the non-nil observers.
// NoOpObserver entries are dropped.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		switch obs.(type) {
		case nil, NoOpObserver, *NoOpObserver:
			continue
		}
		filtered = append(filtered, obs)
	}
	return &MultiObserver{observers: filtered}
}

// Len returns the number of observers events are forwarded to.
func (m *MultiObserver) Len() int {
	return len(m.observers)
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		m.forward(ctx, obs, event)
	}
}

func (m *MultiObserver) forward(ctx context.Context, obs Observer, event Event) {
	defer func() {
		if r := recover(); r != nil {
			if m.OnFailure == nil {
				return
			}
			m.OnFailure(obs, event, r)
		}
	}()
	obs.OnEvent(ctx, event)
}
