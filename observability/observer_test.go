package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/feasibility/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  slog.Level
	}{
		{name: "verbose maps to Debug", level: observability.LevelVerbose, want: slog.LevelDebug},
		{name: "info maps to Info", level: observability.LevelInfo, want: slog.LevelInfo},
		{name: "warning maps to Warn", level: observability.LevelWarning, want: slog.LevelWarn},
		{name: "error maps to Error", level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_OTelAlignment(t *testing.T) {
	if observability.LevelVerbose != 5 {
		t.Errorf("LevelVerbose = %d, want 5 (OTel DEBUG range)", observability.LevelVerbose)
	}
	if observability.LevelInfo != 9 {
		t.Errorf("LevelInfo = %d, want 9 (OTel INFO range)", observability.LevelInfo)
	}
	if observability.LevelWarning != 13 {
		t.Errorf("LevelWarning = %d, want 13 (OTel WARN range)", observability.LevelWarning)
	}
	if observability.LevelError != 17 {
		t.Errorf("LevelError = %d, want 17 (OTel ERROR range)", observability.LevelError)
	}
}

func TestNoOpObserver(t *testing.T) {
	obs := observability.NoOpObserver{}
	obs.OnEvent(context.Background(), observability.Event{
		Type:         observability.EventToolStart,
		Level:        observability.LevelInfo,
		Timestamp:    time.Now(),
		InvocationID: "inv-1",
		Tool:         "get_weather_conditions",
		Parameters:   map[string]any{"grid_reference": "MC 12345 67890"},
	})
}

func TestMultiObserver(t *testing.T) {
	var events1, events2 []observability.Event

	obs1 := &captureObserver{events: &events1}
	obs2 := &captureObserver{events: &events2}

	multi := observability.NewMultiObserver(obs1, obs2)

	event := observability.Event{
		Type:         observability.EventToolComplete,
		Level:        observability.LevelInfo,
		Timestamp:    time.Now(),
		InvocationID: "inv-1",
		Tool:         "check_comms_status",
		Section:      "S-3",
	}

	multi.OnEvent(context.Background(), event)

	if len(events1) != 1 {
		t.Errorf("observer 1 received %d events, want 1", len(events1))
	}
	if len(events2) != 1 {
		t.Errorf("observer 2 received %d events, want 1", len(events2))
	}
	if events1[0].Type != observability.EventToolComplete {
		t.Errorf("observer 1 event type = %q, want %q", events1[0].Type, observability.EventToolComplete)
	}
}

func TestMultiObserver_NilFiltering(t *testing.T) {
	var events []observability.Event
	obs := &captureObserver{events: &events}

	multi := observability.NewMultiObserver(nil, obs, nil)

	multi.OnEvent(context.Background(), observability.Event{
		Type:  observability.EventToolStart,
		Level: observability.LevelInfo,
	})

	if len(events) != 1 {
		t.Errorf("received %d events, want 1 (nil observers should be filtered)", len(events))
	}
}

func TestMultiObserver_DropsNoOp(t *testing.T) {
	var events []observability.Event
	multi := observability.NewMultiObserver(observability.NoOpObserver{}, &captureObserver{events: &events})

	if multi.Len() != 1 {
		t.Errorf("Len() = %d, want 1", multi.Len())
	}
}

func TestMultiObserver_PanicIsolation(t *testing.T) {
	var events []observability.Event
	var failures int

	multi := observability.NewMultiObserver(
		observability.ObserverFunc(func(context.Context, observability.Event) { panic("broken sink") }),
		&captureObserver{events: &events},
	)
	multi.OnFailure = func(_ observability.Observer, _ observability.Event, recovered any) {
		if recovered != "broken sink" {
			t.Errorf("recovered = %v, want %q", recovered, "broken sink")
		}
		failures++
	}

	multi.OnEvent(context.Background(), observability.Event{Type: observability.EventToolComplete})

	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
	if len(events) != 1 {
		t.Errorf("received %d events, want 1 after a sibling panicked", len(events))
	}
}

func TestSlogObserver_LevelMapping(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.Level
		minLevel  slog.Level
		expectLog bool
	}{
		{name: "verbose at debug handler", level: observability.LevelVerbose, minLevel: slog.LevelDebug, expectLog: true},
		{name: "verbose at info handler", level: observability.LevelVerbose, minLevel: slog.LevelInfo, expectLog: false},
		{name: "info at info handler", level: observability.LevelInfo, minLevel: slog.LevelInfo, expectLog: true},
		{name: "info at warn handler", level: observability.LevelInfo, minLevel: slog.LevelWarn, expectLog: false},
		{name: "warning at warn handler", level: observability.LevelWarning, minLevel: slog.LevelWarn, expectLog: true},
		{name: "error at error handler", level: observability.LevelError, minLevel: slog.LevelError, expectLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
				Level: tt.minLevel,
			}))

			obs := observability.NewSlogObserver(logger)
			obs.OnEvent(context.Background(), observability.Event{
				Type:      observability.EventToolStart,
				Level:     tt.level,
				Timestamp: time.Now(),
				Tool:      "check_supply_inventory",
			})

			hasOutput := buf.Len() > 0
			if hasOutput != tt.expectLog {
				t.Errorf("log output = %v, want %v (buf: %q)", hasOutput, tt.expectLog, buf.String())
			}
		})
	}
}

func TestSlogObserver_EventTypeAsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	obs := observability.NewSlogObserver(logger)
	obs.OnEvent(context.Background(), observability.Event{
		Type:         observability.EventToolError,
		Level:        observability.LevelWarning,
		Timestamp:    time.Now(),
		InvocationID: "inv-42",
		Tool:         "check_vehicle_status",
		Section:      "S-4",
		Parameters:   map[string]any{"vehicle_type": "LAV"},
		Error:        "provider unavailable",
		Duration:     1500 * time.Millisecond,
	})

	output := buf.String()
	for _, want := range []string{
		"tool.error",
		"invocation_id=inv-42",
		"tool=check_vehicle_status",
		"section=S-4",
		"vehicle_type=LAV",
		"duration_seconds=1.5",
		`error="provider unavailable"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestSlogObserver_StartOmitsDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:  observability.EventToolStart,
		Level: observability.EventToolStart.Level(),
		Tool:  "get_terrain_analysis",
	})

	if strings.Contains(buf.String(), "duration_seconds") {
		t.Errorf("start event should not log a duration, got: %s", buf.String())
	}
}

func TestEventType_Level(t *testing.T) {
	tests := []struct {
		typ      observability.EventType
		want     observability.Level
		terminal bool
	}{
		{typ: observability.EventToolStart, want: observability.LevelVerbose, terminal: false},
		{typ: observability.EventToolComplete, want: observability.LevelInfo, terminal: true},
		{typ: observability.EventToolError, want: observability.LevelWarning, terminal: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.Level(); got != tt.want {
				t.Errorf("%s.Level() = %v, want %v", tt.typ, got, tt.want)
			}
			if got := tt.typ.Terminal(); got != tt.terminal {
				t.Errorf("%s.Terminal() = %v, want %v", tt.typ, got, tt.terminal)
			}
		})
	}
}

func TestEvent_DurationSeconds(t *testing.T) {
	e := observability.Event{Duration: 250 * time.Millisecond}
	if got := e.DurationSeconds(); got != 0.25 {
		t.Errorf("DurationSeconds() = %v, want 0.25", got)
	}
}

func TestEvent_JSONDurationSeconds(t *testing.T) {
	tests := []struct {
		name        string
		event       observability.Event
		wantPresent bool
		want        float64
	}{
		{
			name:        "complete",
			event:       observability.Event{Type: observability.EventToolComplete, Duration: 1500 * time.Millisecond},
			wantPresent: true,
			want:        1.5,
		},
		{
			name:        "error with zero duration",
			event:       observability.Event{Type: observability.EventToolError, Error: "provider down"},
			wantPresent: true,
			want:        0,
		},
		{
			name:  "start",
			event: observability.Event{Type: observability.EventToolStart},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			var raw map[string]any
			if err := json.Unmarshal(data, &raw); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			got, present := raw["duration_seconds"]
			if present != tt.wantPresent {
				t.Fatalf("duration_seconds present = %v, want %v in %s", present, tt.wantPresent, data)
			}
			if present && got != tt.want {
				t.Errorf("duration_seconds = %v, want %v", got, tt.want)
			}
			if raw["type"] != string(tt.event.Type) {
				t.Errorf("type = %v, want %s", raw["type"], tt.event.Type)
			}
		})
	}
}

func TestEvent_JSONRestoresDuration(t *testing.T) {
	in := observability.Event{
		Type:         observability.EventToolComplete,
		InvocationID: "inv-7",
		Tool:         "check_vehicle_status",
		Section:      "S-4",
		Duration:     250 * time.Millisecond,
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out observability.Event
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.Duration != in.Duration {
		t.Errorf("Duration = %v, want %v", out.Duration, in.Duration)
	}
	if out.InvocationID != "inv-7" || out.Tool != "check_vehicle_status" {
		t.Errorf("got %s/%s, want inv-7/check_vehicle_status", out.InvocationID, out.Tool)
	}
}

func TestRegistry_GetObserver(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "noop exists", key: "noop", wantErr: false},
		{name: "slog exists", key: "slog", wantErr: false},
		{name: "unknown fails", key: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := observability.GetObserver(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetObserver(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if !tt.wantErr && obs == nil {
				t.Errorf("GetObserver(%q) returned nil observer", tt.key)
			}
		})
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	var events []observability.Event
	custom := &captureObserver{events: &events}

	observability.RegisterObserver("test-custom", custom)

	obs, err := observability.GetObserver("test-custom")
	if err != nil {
		t.Fatalf("GetObserver failed: %v", err)
	}

	obs.OnEvent(context.Background(), observability.Event{
		Type:  observability.EventToolStart,
		Level: observability.LevelInfo,
	})

	if len(events) != 1 {
		t.Errorf("received %d events, want 1", len(events))
	}
}

type captureObserver struct {
	events *[]observability.Event
}

func (c *captureObserver) OnEvent(ctx context.Context, event observability.Event) {
	*c.events = append(*c.events, event)
}
