// Package push streams tool execution events and session statistics to UI
// clients over WebSocket. A Hub is an observability.Observer; subscribe it
// to the bus with a mailbox so slow clients never hold up providers.
package push

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tailored-agentic-units/feasibility/observability"
	"github.com/tailored-agentic-units/feasibility/stats"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingEvery         = (pongWait * 9) / 10
	defaultBufferSize = 32
)

// Option configures a Hub.
type Option func(*Hub)

// WithStats makes the hub push a stats_update after every complete event
// and to each client on connect.
func WithStats(snapshot func() stats.Snapshot) Option {
	return func(h *Hub) { h.snapshot = snapshot }
}

// WithLogger sets the hub logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// WithBufferSize sets the per-client outbound buffer.
func WithBufferSize(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.bufferSize = size
		}
	}
}

// Hub fans events out to connected WebSocket clients.
type Hub struct {
	clients map[string]*client
	mu      sync.RWMutex

	upgrader   websocket.Upgrader
	snapshot   func() stats.Snapshot
	logger     *slog.Logger
	bufferSize int
}

// New creates a Hub with no clients.
func New(opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger:     slog.Default(),
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnEvent implements observability.Observer.
func (h *Hub) OnEvent(_ context.Context, event observability.Event) {
	msg, ok := fromEvent(event)
	if !ok {
		return
	}
	h.Broadcast(msg)

	if event.Type == observability.EventToolComplete && h.snapshot != nil {
		h.Broadcast(h.statsMessage())
	}
}

// Broadcast queues msg to every connected client.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.push(msg)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		c.stop()
	}
}

// ServeHTTP upgrades the request to a WebSocket and streams messages until
// the client disconnects. Clients may send {"type":"ping"}.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{
		id:   uuid.Must(uuid.NewV7()).String(),
		send: make(chan Message, h.bufferSize),
		done: make(chan struct{}),
	}

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Warn("websocket set read deadline failed", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(conn)
	}()

	h.register(c)
	defer h.unregister(c)

	if h.snapshot != nil {
		c.push(h.statsMessage())
	}

	for {
		var in inbound
		if err := conn.ReadJSON(&in); err != nil {
			c.stop()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			c.push(Message{Type: TypePong})
		case "stats":
			if h.snapshot != nil {
				c.push(h.statsMessage())
			}
		default:
			c.push(Message{Type: TypeError, Message: "unsupported type: " + in.Type})
		}
	}
}

func (h *Hub) statsMessage() Message {
	snap := h.snapshot()
	return Message{Type: TypeStatsUpdate, Stats: &snap}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.id)
}

type client struct {
	id       string
	send     chan Message
	done     chan struct{}
	stopOnce sync.Once
}

func (c *client) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// push never blocks: when the buffer is full the oldest message is dropped.
func (c *client) push(msg Message) {
	select {
	case c.send <- msg:
		return
	default:
	}
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (c *client) writeLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case msg := <-c.send:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
