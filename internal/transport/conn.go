package transport

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/raj-sankey/chat-st/internal/pubsub"
	"github.com/raj-sankey/chat-st/internal/topics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Outbound buffer per connection. When it fills, events are dropped
	// for that connection rather than buffered for later delivery.
	sendBufferSize = 256
)

// Conn represents a single live transport connection. The ID is assigned
// server-side on upgrade and is the key the session registry and room
// membership track connections by.
type Conn struct {
	// ID is the unique transport identifier.
	ID string
	// conn is the underlying WebSocket connection.
	conn *websocket.Conn
	// send is a buffered channel of outbound frames for this connection.
	send chan []byte
	// hub is a reference back to the hub that manages this connection.
	hub *Hub
}

// readPump pumps raw frames from the WebSocket connection onto the bus.
// It runs until the connection drops and then unregisters the transport.
func (c *Conn) readPump() {
	defer func() {
		c.hub.dropConn(c)
		c.conn.Close(websocket.StatusNormalClosure, "Client disconnected")
	}()

	for {
		_, raw, err := c.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				slog.Info("WebSocket closed normally by client", "transportID", c.ID)
			} else if err != io.EOF {
				slog.Error("WebSocket read error", "transportID", c.ID, "error", err)
			}
			break
		}

		msg := pubsub.Message{
			Topic:       topics.ChatInbound.Name(),
			TransportID: c.ID,
			Payload:     raw,
			Metadata: map[string]string{
				"received_at": time.Now().UTC().Format(time.RFC3339),
			},
		}
		if err := c.hub.publisher.Publish(context.Background(), msg); err != nil {
			slog.Error("Failed to publish inbound frame", "transportID", c.ID, "error", err)
		}
	}
}

// writePump pumps frames from the connection's send channel to the peer.
func (c *Conn) writePump() {
	defer func() {
		c.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")
	}()

	for {
		raw, ok := <-c.send
		if !ok {
			// The hub closed the channel.
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := c.conn.Write(ctx, websocket.MessageText, raw)
		cancel()
		if err != nil {
			slog.Error("WebSocket write error", "transportID", c.ID, "error", err)
			return
		}
	}
}
