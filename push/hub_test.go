package push_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/feasibility/bus"
	"github.com/tailored-agentic-units/feasibility/observability"
	"github.com/tailored-agentic-units/feasibility/push"
	"github.com/tailored-agentic-units/feasibility/stats"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) push.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg push.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_StreamsToolEventsAndStats(t *testing.T) {
	agg := stats.New()
	hub := push.New(push.WithStats(agg.Snapshot))
	t.Cleanup(hub.Close)

	b := bus.New()
	_, err := b.Subscribe(agg, bus.Inline())
	require.NoError(t, err)
	_, err = b.Subscribe(hub, bus.Inline())
	require.NoError(t, err)

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	conn := dial(t, srv)

	initial := read(t, conn)
	assert.Equal(t, push.TypeStatsUpdate, initial.Type)
	require.NotNil(t, initial.Stats)
	assert.Zero(t, initial.Stats.TotalCalls)
	assert.Equal(t, 1, hub.Clients())

	_, err = b.Invoke(context.Background(), bus.Call{
		Tool:       "check_supply_inventory",
		Section:    "S-4",
		Parameters: map[string]any{"supply_type": "fuel"},
	}, func(context.Context) (any, error) {
		return map[string]any{"quantity": 4000}, nil
	})
	require.NoError(t, err)

	start := read(t, conn)
	assert.Equal(t, push.TypeToolStart, start.Type)
	assert.Equal(t, "check_supply_inventory", start.ToolName)
	assert.Equal(t, "S-4", start.Section)
	assert.Equal(t, "fuel", start.Parameters["supply_type"])
	assert.NotEmpty(t, start.InvocationID)

	done := read(t, conn)
	assert.Equal(t, push.TypeToolComplete, done.Type)
	assert.Equal(t, start.InvocationID, done.InvocationID)
	assert.NotNil(t, done.Result)

	update := read(t, conn)
	assert.Equal(t, push.TypeStatsUpdate, update.Type)
	require.NotNil(t, update.Stats)
	assert.Equal(t, int64(1), update.Stats.TotalCalls)
	assert.Equal(t, int64(1), update.Stats.Calls("S-4"))
}

func TestHub_ToolError(t *testing.T) {
	hub := push.New()
	t.Cleanup(hub.Close)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	hub.OnEvent(context.Background(), observability.Event{
		Type:         observability.EventToolError,
		InvocationID: "inv-1",
		Tool:         "get_weather_conditions",
		Section:      "S-2",
		Error:        "weather feed offline",
		Duration:     1500 * time.Millisecond,
	})

	msg := read(t, conn)
	assert.Equal(t, push.TypeToolError, msg.Type)
	assert.Equal(t, "weather feed offline", msg.Error)
	assert.InDelta(t, 1.5, msg.DurationSeconds, 1e-9)
}

func TestHub_InboundMessages(t *testing.T) {
	agg := stats.New()
	hub := push.New(push.WithStats(agg.Snapshot))
	t.Cleanup(hub.Close)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	conn := dial(t, srv)

	assert.Equal(t, push.TypeStatsUpdate, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, push.TypePong, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "stats"}))
	assert.Equal(t, push.TypeStatsUpdate, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe"}))
	msg := read(t, conn)
	assert.Equal(t, push.TypeError, msg.Type)
	assert.Contains(t, msg.Message, "subscribe")
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := push.New()
	t.Cleanup(hub.Close)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 5*time.Second, 10*time.Millisecond)

	hub.Broadcast(push.Message{Type: push.TypeStatsUpdate})
}
