// Package observability defines tool execution events and the observers
// that receive them. Level values align with OpenTelemetry SeverityNumbers
// for zero-translation compatibility with OTel collectors.
package observability

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"
)

// Level represents event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8), maps to slog.LevelDebug
	LevelInfo    Level = 9  // OTel INFO (9-12), maps to slog.LevelInfo
	LevelWarning Level = 13 // OTel WARN (13-16), maps to slog.LevelWarn
	LevelError   Level = 17 // OTel ERROR (17-20), maps to slog.LevelError
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps this level to the corresponding slog.Level for log emission.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType is the phase of a tool invocation.
type EventType string

const (
	EventToolStart    EventType = "tool.start"
	EventToolComplete EventType = "tool.complete"
	EventToolError    EventType = "tool.error"
)

// Level returns the default severity for the phase.
func (t EventType) Level() Level {
	switch t {
	case EventToolStart:
		return LevelVerbose
	case EventToolError:
		return LevelWarning
	default:
		return LevelInfo
	}
}

// Terminal reports whether t closes an invocation.
func (t EventType) Terminal() bool {
	return t == EventToolComplete || t == EventToolError
}

// Event describes one phase of one provider invocation. Every start event
// is followed by exactly one complete or error event with the same
// InvocationID. Result is set on complete, Error on error, and Duration on
// both.
type Event struct {
	Type         EventType      `json:"type"`
	Level        Level          `json:"level"`
	Timestamp    time.Time      `json:"timestamp"`
	InvocationID string         `json:"invocation_id"`
	Tool         string         `json:"tool_name"`
	Section      string         `json:"section"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Result       any            `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
	Duration     time.Duration  `json:"-"`
}

// DurationSeconds returns Duration in fractional seconds.
func (e Event) DurationSeconds() float64 {
	return e.Duration.Seconds()
}

// MarshalJSON adds duration_seconds to complete and error events.
func (e Event) MarshalJSON() ([]byte, error) {
	type fields Event
	out := struct {
		fields
		DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	}{fields: fields(e)}
	if e.Type.Terminal() {
		d := e.DurationSeconds()
		out.DurationSeconds = &d
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores Duration from duration_seconds.
func (e *Event) UnmarshalJSON(data []byte) error {
	type fields Event
	var in struct {
		fields
		DurationSeconds *float64 `json:"duration_seconds"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Event(in.fields)
	if in.DurationSeconds != nil {
		e.Duration = time.Duration(math.Round(*in.DurationSeconds * float64(time.Second)))
	}
	return nil
}

// Observer receives tool execution events for logging, metrics, or UI push.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) OnEvent(ctx context.Context, event Event) {
	f(ctx, event)
}
