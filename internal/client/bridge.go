// Package client implements the connection side of the chat protocol: a
// bridge that owns the WebSocket session, re-announces identity across
// reconnects, and feeds inbound frames into a conversation reconciler.
package client

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/raj-sankey/chat-st/internal/conversation"
	"github.com/raj-sankey/chat-st/internal/wire"
)

// State is the bridge's connection lifecycle phase.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	// typingInterval throttles outbound typing signals per target so a
	// burst of keystrokes produces one frame.
	typingInterval = 2 * time.Second
)

// ErrNotConnected is returned by send operations while the bridge has no
// live connection. Optimistic state changes still take effect.
var ErrNotConnected = errors.New("client: not connected")

// Options configures a Bridge. All callbacks are optional and are invoked
// from the bridge's read goroutine.
type Options struct {
	// URL is the WebSocket endpoint, e.g. ws://host:8080/ws.
	URL string
	// Handle is the identity announced on every (re)connect.
	Handle string

	// OnPresence receives the full replacement set of online handles.
	OnPresence func(handles []string)
	// OnMessage receives every reconciled inbound message.
	OnMessage func(rec conversation.Record)
	// OnAck receives delivery acknowledgements. Diagnostic only: the
	// acked message is already in the view from the optimistic insert.
	OnAck func(env wire.Envelope)
	// OnTyping receives the handle of a peer who is typing.
	OnTyping func(from string)

	Logger *slog.Logger
}

// Bridge drives one client session: dial, announce, read, reconnect. All
// exported methods are safe for concurrent use.
type Bridge struct {
	opts       Options
	logger     *slog.Logger
	reconciler *conversation.Reconciler

	mu         sync.Mutex
	state      State
	conn       *websocket.Conn
	rooms      map[string]struct{}
	online     []string
	lastTyping map[string]time.Time
	cancel     context.CancelFunc

	now func() time.Time
}

// New creates a bridge. Run must be called to connect.
func New(opts Options) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		opts:       opts,
		logger:     logger.With("component", "client", "handle", opts.Handle),
		reconciler: conversation.New(opts.Handle),
		rooms:      make(map[string]struct{}),
		lastTyping: make(map[string]time.Time),
		now:        time.Now,
	}
}

// State reports the current lifecycle phase.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reconciler exposes the session's message store for view rendering.
func (b *Bridge) Reconciler() *conversation.Reconciler {
	return b.reconciler
}

// Online returns the last presence set received from the server.
func (b *Bridge) Online() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.online))
	copy(out, b.online)
	return out
}

// redialSchedule is the exponential backoff between connection attempts.
// It resets only once a connection proves usable.
type redialSchedule struct {
	wait time.Duration
}

func (r *redialSchedule) next() time.Duration {
	d := r.wait
	r.wait = min(r.wait*2, maxBackoff)
	return d
}

func (r *redialSchedule) reset() {
	r.wait = initialBackoff
}

// Run connects and serves the session until ctx is cancelled, redialing
// with exponential backoff after any connection loss. On every successful
// connect the bridge announces its handle first, then rejoins any rooms
// it was a member of, so server-side state is rebuilt from scratch.
func (b *Bridge) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()

	schedule := &redialSchedule{wait: initialBackoff}
	for {
		b.setState(StateConnecting)
		conn, _, err := websocket.Dial(ctx, b.opts.URL, nil)
		if err != nil {
			b.setState(StateDisconnected)
			if err := b.waitRedial(ctx, schedule, "dial failed", err); err != nil {
				return err
			}
			continue
		}

		b.attach(conn)
		if err := b.announce(ctx); err != nil {
			// The socket opened but the session never became usable;
			// the backoff keeps growing.
			b.detach()
			conn.Close(websocket.StatusNormalClosure, "")
			if err := b.waitRedial(ctx, schedule, "announce failed", err); err != nil {
				return err
			}
			continue
		}
		schedule.reset()

		err = b.readLoop(ctx, conn)
		b.logger.Info("Connection lost", "error", err)
		b.detach()
		conn.Close(websocket.StatusNormalClosure, "")
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (b *Bridge) waitRedial(ctx context.Context, schedule *redialSchedule, reason string, cause error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	wait := schedule.next()
	b.logger.Warn("Reconnecting after failure", "reason", reason, "backoff", wait, "error", cause)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
	}
	return nil
}

func (b *Bridge) attach(conn *websocket.Conn) {
	b.mu.Lock()
	b.conn = conn
	b.state = StateConnected
	b.mu.Unlock()
}

func (b *Bridge) detach() {
	b.mu.Lock()
	b.conn = nil
	b.state = StateDisconnected
	b.mu.Unlock()
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// announce sends the join frame and re-enters rooms. Join must go first:
// the server only routes for announced transports.
func (b *Bridge) announce(ctx context.Context) error {
	if err := b.write(ctx, wire.MustFrame(wire.EventJoin, wire.Join{Handle: b.opts.Handle})); err != nil {
		return err
	}
	for _, room := range b.roomList() {
		if err := b.write(ctx, wire.MustFrame(wire.EventJoinGroup, wire.RoomRef{Room: room})); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bridge) roomList() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.rooms))
	for room := range b.rooms {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}

func (b *Bridge) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, raw, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		b.handleFrame(raw)
	}
}

func (b *Bridge) handleFrame(raw []byte) {
	frame, err := wire.DecodeFrame(raw)
	if err != nil {
		b.logger.Warn("Dropping malformed frame", "error", err)
		return
	}

	switch frame.Event {
	case wire.EventOnlineUsers:
		var users wire.OnlineUsers
		if err := wire.DecodeData(frame, &users); err != nil {
			b.logger.Warn("Dropping bad presence payload", "error", err)
			return
		}
		b.mu.Lock()
		b.online = users.Handles
		b.mu.Unlock()
		if b.opts.OnPresence != nil {
			b.opts.OnPresence(users.Handles)
		}

	case wire.EventReceiveMessage:
		var env wire.Envelope
		if err := wire.DecodeData(frame, &env); err != nil {
			b.logger.Warn("Dropping bad message payload", "error", err)
			return
		}
		rec := conversation.FromInbound(env, env.ID, b.now())
		b.reconciler.Ingest(rec)
		if b.opts.OnMessage != nil {
			b.opts.OnMessage(rec)
		}

	case wire.EventMessageAck:
		var env wire.Envelope
		if err := wire.DecodeData(frame, &env); err != nil {
			return
		}
		if b.opts.OnAck != nil {
			b.opts.OnAck(env)
		}

	case wire.EventTyping:
		var t wire.Typing
		if err := wire.DecodeData(frame, &t); err != nil {
			return
		}
		if b.opts.OnTyping != nil && t.From != "" {
			b.opts.OnTyping(t.From)
		}

	default:
		b.logger.Debug("Ignoring unknown event", "event", frame.Event)
	}
}

// SendMessage validates and sends an envelope. The optimistic record is
// ingested before the write, so the local view shows the message even if
// the connection is down; the returned record carries the id the server
// echo will collapse onto.
func (b *Bridge) SendMessage(ctx context.Context, env wire.Envelope) (conversation.Record, error) {
	env.From = b.opts.Handle
	if err := env.Validate(); err != nil {
		return conversation.Record{}, err
	}
	rec := conversation.NewOptimistic(env, b.now())
	b.reconciler.Ingest(rec)

	if err := b.write(ctx, wire.MustFrame(wire.EventSendMessage, rec.Envelope)); err != nil {
		return rec, err
	}
	return rec, nil
}

// SendTyping emits a typing signal for the given target ("" broadcasts).
// Signals are throttled per target; a suppressed signal is not an error.
func (b *Bridge) SendTyping(ctx context.Context, to string) error {
	b.mu.Lock()
	now := b.now()
	if last, ok := b.lastTyping[to]; ok && now.Sub(last) < typingInterval {
		b.mu.Unlock()
		return nil
	}
	b.lastTyping[to] = now
	b.mu.Unlock()

	return b.write(ctx, wire.MustFrame(wire.EventTyping, wire.Typing{To: to}))
}

// JoinRoom enters a group room. Membership is remembered locally and
// re-announced after every reconnect.
func (b *Bridge) JoinRoom(ctx context.Context, room string) error {
	b.mu.Lock()
	b.rooms[room] = struct{}{}
	b.mu.Unlock()
	return b.write(ctx, wire.MustFrame(wire.EventJoinGroup, wire.RoomRef{Room: room}))
}

// LeaveRoom exits a group room.
func (b *Bridge) LeaveRoom(ctx context.Context, room string) error {
	b.mu.Lock()
	delete(b.rooms, room)
	b.mu.Unlock()
	return b.write(ctx, wire.MustFrame(wire.EventLeaveGroup, wire.RoomRef{Room: room}))
}

// JoinGroups enters every named room, typically the group list fetched
// from the directory API after login. Rooms already joined are skipped.
func (b *Bridge) JoinGroups(ctx context.Context, rooms []string) error {
	for _, room := range rooms {
		b.mu.Lock()
		_, joined := b.rooms[room]
		b.mu.Unlock()
		if joined {
			continue
		}
		if err := b.JoinRoom(ctx, room); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the run loop and drops the current connection. Safe to call
// whether or not Run is active.
func (b *Bridge) Close() {
	b.mu.Lock()
	cancel := b.cancel
	conn := b.conn
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "client closed")
	}
}

func (b *Bridge) write(ctx context.Context, f wire.Frame) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	raw, err := f.Encode()
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, raw)
}
