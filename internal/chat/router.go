package chat

import (
	"log/slog"

	"github.com/raj-sankey/chat-st/internal/wire"
)

// Sender is the outbound side of the transport layer as seen by the
// router. Both operations are best-effort: an absent or slow transport
// simply does not receive the frame.
type Sender interface {
	// Send delivers a frame to a single transport.
	Send(transportID string, f wire.Frame)
	// Broadcast delivers a frame to every connected transport except those listed.
	Broadcast(f wire.Frame, except ...string)
}

// Router makes the stateless per-message fan-out decision for inbound
// envelopes. It holds no message history and gives no ordering guarantee
// across recipients beyond "delivered in the order routed".
type Router struct {
	sessions *Registry
	rooms    *Rooms
	out      Sender
	logger   *slog.Logger
}

// NewRouter creates a router over the given registry, membership table and
// outbound transport.
func NewRouter(sessions *Registry, rooms *Rooms, out Sender) *Router {
	return &Router{
		sessions: sessions,
		rooms:    rooms,
		out:      out,
		logger:   slog.Default().With("component", "router"),
	}
}

// Route delivers an envelope. The priority order is a contract:
//
//  1. To set: deliver to that transport if online, and always send the
//     sender an acknowledgement copy -- even when the recipient is offline.
//  2. Room set: deliver to every member of the room, including the sender
//     if the sender is joined. No acknowledgement.
//  3. Neither: deliver to every other transport except the sender, plus an
//     acknowledgement to the sender.
//
// An offline direct recipient is a silent drop, not an error.
func (r *Router) Route(env wire.Envelope, senderID string) {
	receive := wire.MustFrame(wire.EventReceiveMessage, env)

	switch {
	case env.To != "":
		if transportID, ok := r.sessions.Lookup(env.To); ok {
			r.out.Send(transportID, receive)
		} else {
			r.logger.Debug("Direct recipient offline, dropping", "to", env.To, "from", env.From)
		}
		// Ack goes to the sender regardless of recipient presence.
		r.out.Send(senderID, wire.MustFrame(wire.EventMessageAck, env))

	case env.Room != "":
		for _, transportID := range r.rooms.Members(env.Room) {
			r.out.Send(transportID, receive)
		}

	default:
		r.out.Broadcast(receive, senderID)
		r.out.Send(senderID, wire.MustFrame(wire.EventMessageAck, env))
	}
}

// Typing forwards a typing-indicator signal. It follows the same to-vs-
// broadcast branching as Route but carries no content and no ack. The
// outbound signal names the sender's announced handle.
func (r *Router) Typing(t wire.Typing, senderID string) {
	from, ok := r.sessions.HandleOf(senderID)
	if !ok {
		// A transport that never announced itself has no handle to forward.
		return
	}
	signal := wire.MustFrame(wire.EventTyping, wire.Typing{From: from})

	if t.To != "" {
		if transportID, online := r.sessions.Lookup(t.To); online {
			r.out.Send(transportID, signal)
		}
		return
	}
	r.out.Broadcast(signal, senderID)
}
