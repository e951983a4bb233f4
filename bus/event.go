package bus

import (
	"time"

	"github.com/tailored-agentic-units/feasibility/observability"
)

func phaseEvent(base observability.Event, typ observability.EventType, at time.Time) observability.Event {
	e := base
	e.Type = typ
	e.Level = typ.Level()
	e.Timestamp = at
	return e
}
