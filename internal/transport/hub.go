package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/raj-sankey/chat-st/internal/pubsub"
	"github.com/raj-sankey/chat-st/internal/topics"
	"github.com/raj-sankey/chat-st/internal/wire"
)

// Hub owns all live transport connections. It routes outbound frames to
// individual transports or to all of them, and announces connection
// lifecycle on the bus so the chat core can react to disconnects.
//
// The hub never buffers for an absent or slow transport: a frame either
// lands in the connection's send buffer now or it is dropped.
type Hub struct {
	publisher pubsub.Publisher

	// conns maps transport IDs to live connections.
	conns map[string]*Conn

	// register is a channel for new connections to register.
	register chan *Conn

	// unregister is a channel for connections to unregister.
	unregister chan *Conn

	// done is closed when the run loop exits, releasing any pump still
	// trying to register or unregister.
	done chan struct{}

	// mu guards conns: the run loop mutates it, senders read it.
	mu sync.RWMutex
}

// NewHub initializes a new Hub, ready to handle connections.
func NewHub(pub pubsub.Publisher) *Hub {
	return &Hub{
		publisher:  pub,
		conns:      make(map[string]*Conn),
		register:   make(chan *Conn),
		unregister: make(chan *Conn),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's connection lifecycle loop. It must be run in a
// separate goroutine and stops when the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	slog.Info("Transport hub started")
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn.ID] = conn
			total := len(h.conns)
			h.mu.Unlock()
			slog.Info("Transport registered", "transportID", conn.ID, "total", total)
			h.publishLifecycle(topics.TransportClientReady.Name(), conn.ID, "")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[conn.ID]; ok {
				delete(h.conns, conn.ID)
				close(conn.send)
			}
			total := len(h.conns)
			h.mu.Unlock()
			slog.Info("Transport unregistered", "transportID", conn.ID, "total", total)
			h.publishLifecycle(topics.TransportClientDisconnected.Name(), conn.ID, "client_closed")

		case <-ctx.Done():
			slog.Info("Transport hub shutting down")
			close(h.done)
			h.closeAll()
			return
		}
	}
}

// Send delivers a frame to a single transport. An unknown transport ID is
// not an error: the recipient is simply gone and the frame is dropped.
func (h *Hub) Send(transportID string, f wire.Frame) {
	raw, err := f.Encode()
	if err != nil {
		slog.Error("Failed to encode outbound frame", "event", f.Event, "error", err)
		return
	}

	h.mu.RLock()
	conn, ok := h.conns[transportID]
	h.mu.RUnlock()
	if !ok {
		slog.Debug("Dropping frame for absent transport", "transportID", transportID, "event", f.Event)
		return
	}
	h.trySend(conn, raw)
}

// Broadcast delivers a frame to every connected transport except those
// listed in except.
func (h *Hub) Broadcast(f wire.Frame, except ...string) {
	raw, err := f.Encode()
	if err != nil {
		slog.Error("Failed to encode broadcast frame", "event", f.Event, "error", err)
		return
	}

	skip := make(map[string]bool, len(except))
	for _, id := range except {
		skip[id] = true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, conn := range h.conns {
		if skip[id] {
			continue
		}
		h.trySend(conn, raw)
	}
}

// trySend is a non-blocking send. A full buffer means the client is
// lagging or dead; the frame is dropped, never queued.
func (h *Hub) trySend(conn *Conn, raw []byte) {
	select {
	case conn.send <- raw:
	default:
		slog.Warn("Transport send buffer full, dropping frame", "transportID", conn.ID)
	}
}

// Handler returns an echo.HandlerFunc that upgrades requests to WebSocket
// transports and registers them with the hub.
func (h *Hub) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // In production, check origin.
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "WebSocket upgrade failed")
		}

		conn := &Conn{
			ID:   uuid.NewString(),
			conn: ws,
			send: make(chan []byte, sendBufferSize),
			hub:  h,
		}
		select {
		case h.register <- conn:
		case <-h.done:
			ws.Close(websocket.StatusGoingAway, "server shutting down")
			return nil
		}

		go conn.writePump()
		go conn.readPump()

		return nil
	}
}

// dropConn hands a connection back to the run loop for cleanup. After
// shutdown there is no loop to receive it, so the send must not block.
func (h *Hub) dropConn(c *Conn) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) publishLifecycle(topic, transportID, reason string) {
	payload, _ := json.Marshal(map[string]string{
		"transportID": transportID,
		"reason":      reason,
	})
	msg := pubsub.Message{
		Topic:       topic,
		TransportID: transportID,
		Payload:     payload,
	}
	if err := h.publisher.Publish(context.Background(), msg); err != nil {
		slog.Error("Failed to publish transport lifecycle event", "topic", topic, "error", err)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.conns {
		close(conn.send)
		delete(h.conns, id)
	}
}
