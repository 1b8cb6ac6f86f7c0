package chat

import (
	"context"
	"log/slog"

	"github.com/raj-sankey/chat-st/internal/pubsub"
	"github.com/raj-sankey/chat-st/internal/topics"
	"github.com/raj-sankey/chat-st/internal/wire"
)

// Loop is the single-threaded event loop that owns the session registry
// and room membership. Inbound wire frames and transport disconnects are
// funneled into one channel and handled to completion, one at a time, so
// there is no parallel mutation of core state and no locking.
type Loop struct {
	subscriber pubsub.Subscriber
	sessions   *Registry
	rooms      *Rooms
	router     *Router
	out        Sender
	events     chan event
	logger     *slog.Logger
}

// event is one unit of work for the loop: either a raw frame from a
// transport or a disconnect notification.
type event struct {
	transportID string
	payload     []byte
	disconnect  bool
}

// NewLoop wires the core state machines over the given bus and transport.
func NewLoop(sub pubsub.Subscriber, out Sender) *Loop {
	sessions := NewRegistry()
	rooms := NewRooms()
	return &Loop{
		subscriber: sub,
		sessions:   sessions,
		rooms:      rooms,
		router:     NewRouter(sessions, rooms, out),
		out:        out,
		events:     make(chan event, 256),
		logger:     slog.Default().With("component", "chat_loop"),
	}
}

// Start subscribes to the inbound and lifecycle topics and begins
// processing. Processing stops when the context is canceled.
func (l *Loop) Start(ctx context.Context) error {
	err := l.subscriber.Subscribe(ctx, topics.ChatInbound.Name(), func(ctx context.Context, msg pubsub.Message) error {
		l.enqueue(ctx, event{transportID: msg.TransportID, payload: msg.Payload})
		return nil
	})
	if err != nil {
		return err
	}

	err = l.subscriber.Subscribe(ctx, topics.TransportClientDisconnected.Name(), func(ctx context.Context, msg pubsub.Message) error {
		l.enqueue(ctx, event{transportID: msg.TransportID, disconnect: true})
		return nil
	})
	if err != nil {
		return err
	}

	go l.run(ctx)
	l.logger.Info("Chat event loop started")
	return nil
}

func (l *Loop) enqueue(ctx context.Context, ev event) {
	select {
	case l.events <- ev:
	case <-ctx.Done():
	}
}

func (l *Loop) run(ctx context.Context) {
	for {
		select {
		case ev := <-l.events:
			l.handle(ev)
		case <-ctx.Done():
			l.logger.Info("Chat event loop shutting down")
			return
		}
	}
}

// handle processes one event to completion before the next is looked at.
func (l *Loop) handle(ev event) {
	if ev.disconnect {
		l.handleDisconnect(ev.transportID)
		return
	}

	frame, err := wire.DecodeFrame(ev.payload)
	if err != nil {
		l.logger.Warn("Dropping malformed frame", "transportID", ev.transportID, "error", err)
		return
	}

	switch frame.Event {
	case wire.EventJoin:
		var join wire.Join
		if err := wire.DecodeData(frame, &join); err != nil || join.Handle == "" {
			l.logger.Warn("Dropping malformed join", "transportID", ev.transportID, "error", err)
			return
		}
		l.sessions.Join(join.Handle, ev.transportID)
		l.logger.Info("Handle joined", "handle", join.Handle, "transportID", ev.transportID)
		l.broadcastPresence()

	case wire.EventSendMessage:
		var env wire.Envelope
		if err := wire.DecodeData(frame, &env); err != nil {
			l.logger.Warn("Dropping malformed envelope", "transportID", ev.transportID, "error", err)
			return
		}
		l.router.Route(env, ev.transportID)

	case wire.EventTyping:
		var typing wire.Typing
		if err := wire.DecodeData(frame, &typing); err != nil {
			l.logger.Warn("Dropping malformed typing signal", "transportID", ev.transportID, "error", err)
			return
		}
		l.router.Typing(typing, ev.transportID)

	case wire.EventJoinGroup:
		var ref wire.RoomRef
		if err := wire.DecodeData(frame, &ref); err != nil || ref.Room == "" {
			return
		}
		l.rooms.Join(ev.transportID, ref.Room)
		l.logger.Debug("Transport joined room", "transportID", ev.transportID, "room", ref.Room)

	case wire.EventLeaveGroup:
		var ref wire.RoomRef
		if err := wire.DecodeData(frame, &ref); err != nil || ref.Room == "" {
			return
		}
		l.rooms.Leave(ev.transportID, ref.Room)
		l.logger.Debug("Transport left room", "transportID", ev.transportID, "room", ref.Room)

	default:
		l.logger.Debug("Ignoring unknown event", "event", frame.Event, "transportID", ev.transportID)
	}
}

// handleDisconnect atomically clears a transport's registry entry and all
// of its room memberships. Partial cleanup states are never observable.
func (l *Loop) handleDisconnect(transportID string) {
	l.rooms.DropConn(transportID)
	handle, ok := l.sessions.Remove(transportID)
	if !ok {
		// The transport never announced a handle; nothing to broadcast.
		return
	}
	l.logger.Info("Handle disconnected", "handle", handle, "transportID", transportID)
	l.broadcastPresence()
}

// broadcastPresence sends the full current handle set to every connected
// transport. Clients replace their local online-set wholesale.
func (l *Loop) broadcastPresence() {
	l.out.Broadcast(wire.MustFrame(wire.EventOnlineUsers, wire.OnlineUsers{
		Handles: l.sessions.Handles(),
	}))
}
