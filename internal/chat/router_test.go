package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raj-sankey/chat-st/internal/wire"
)

// mockSender records every outbound frame for inspection.
type mockSender struct {
	sent       []sentFrame
	broadcasts []broadcastFrame
}

type sentFrame struct {
	transportID string
	frame       wire.Frame
}

type broadcastFrame struct {
	frame  wire.Frame
	except []string
}

func (m *mockSender) Send(transportID string, f wire.Frame) {
	m.sent = append(m.sent, sentFrame{transportID: transportID, frame: f})
}

func (m *mockSender) Broadcast(f wire.Frame, except ...string) {
	m.broadcasts = append(m.broadcasts, broadcastFrame{frame: f, except: except})
}

// sentTo filters recorded direct sends by transport and event name.
func (m *mockSender) sentTo(transportID, event string) []wire.Frame {
	var out []wire.Frame
	for _, s := range m.sent {
		if s.transportID == transportID && s.frame.Event == event {
			out = append(out, s.frame)
		}
	}
	return out
}

func newTestRouter() (*Router, *Registry, *Rooms, *mockSender) {
	sessions := NewRegistry()
	rooms := NewRooms()
	out := &mockSender{}
	return NewRouter(sessions, rooms, out), sessions, rooms, out
}

func TestRouter_DirectMessageOnlineRecipient(t *testing.T) {
	router, sessions, _, out := newTestRouter()
	sessions.Join("ada", "t1")
	sessions.Join("lin", "t2")

	env := wire.Envelope{From: "ada", To: "lin", Content: "hi"}
	router.Route(env, "t1")

	received := out.sentTo("t2", wire.EventReceiveMessage)
	require.Len(t, received, 1, "exactly one receive_message to the recipient")

	acks := out.sentTo("t1", wire.EventMessageAck)
	require.Len(t, acks, 1, "exactly one ack to the sender")

	var got wire.Envelope
	require.NoError(t, wire.DecodeData(received[0], &got))
	assert.Equal(t, env, got)

	assert.Empty(t, out.broadcasts)
}

func TestRouter_DirectMessageToSelf(t *testing.T) {
	router, sessions, _, out := newTestRouter()
	sessions.Join("ada", "t1")

	router.Route(wire.Envelope{From: "ada", To: "ada", Content: "note"}, "t1")

	assert.Len(t, out.sentTo("t1", wire.EventReceiveMessage), 1)
	assert.Len(t, out.sentTo("t1", wire.EventMessageAck), 1)
}

func TestRouter_DirectMessageOfflineRecipientStillAcked(t *testing.T) {
	router, sessions, _, out := newTestRouter()
	sessions.Join("ada", "t1")

	router.Route(wire.Envelope{From: "ada", To: "ghost", Content: "hi"}, "t1")

	// No delivery anywhere, but the sender still gets its ack. This mirrors
	// the observed behavior of fire-confirmation acks for the direct case.
	for _, s := range out.sent {
		assert.NotEqual(t, wire.EventReceiveMessage, s.frame.Event)
	}
	assert.Len(t, out.sentTo("t1", wire.EventMessageAck), 1)
	assert.Empty(t, out.broadcasts)
}

func TestRouter_RoomDeliveryIncludesSender(t *testing.T) {
	router, sessions, rooms, out := newTestRouter()
	sessions.Join("ada", "t1")
	sessions.Join("lin", "t2")
	sessions.Join("bo", "t3")
	rooms.Join("t1", "ops")
	rooms.Join("t2", "ops")

	router.Route(wire.Envelope{From: "ada", Room: "ops", Content: "standup"}, "t1")

	assert.Len(t, out.sentTo("t1", wire.EventReceiveMessage), 1, "sender is a member: included")
	assert.Len(t, out.sentTo("t2", wire.EventReceiveMessage), 1)
	assert.Empty(t, out.sentTo("t3", wire.EventReceiveMessage), "non-member gets nothing")

	// Room delivery carries no ack.
	assert.Empty(t, out.sentTo("t1", wire.EventMessageAck))
}

func TestRouter_RoomDeliveryExcludesNonJoinedSender(t *testing.T) {
	router, sessions, rooms, out := newTestRouter()
	sessions.Join("ada", "t1")
	sessions.Join("lin", "t2")
	rooms.Join("t2", "ops")

	router.Route(wire.Envelope{From: "ada", Room: "ops", Content: "hi"}, "t1")

	assert.Empty(t, out.sentTo("t1", wire.EventReceiveMessage))
	assert.Len(t, out.sentTo("t2", wire.EventReceiveMessage), 1)
}

func TestRouter_BroadcastExcludesSenderAndAcks(t *testing.T) {
	router, sessions, _, out := newTestRouter()
	sessions.Join("ada", "t1")

	router.Route(wire.Envelope{From: "ada", Content: "hello all"}, "t1")

	require.Len(t, out.broadcasts, 1)
	assert.Equal(t, wire.EventReceiveMessage, out.broadcasts[0].frame.Event)
	assert.Equal(t, []string{"t1"}, out.broadcasts[0].except)

	assert.Len(t, out.sentTo("t1", wire.EventMessageAck), 1)
}

func TestRouter_PriorityToBeforeRoom(t *testing.T) {
	router, sessions, rooms, out := newTestRouter()
	sessions.Join("ada", "t1")
	sessions.Join("lin", "t2")
	rooms.Join("t1", "ops")
	rooms.Join("t2", "ops")

	// Both to and room set never happens from a well-behaved client, but the
	// first-match-wins order is a contract: to wins.
	router.Route(wire.Envelope{From: "ada", To: "lin", Room: "ops", Content: "x"}, "t1")

	assert.Len(t, out.sentTo("t2", wire.EventReceiveMessage), 1)
	assert.Empty(t, out.sentTo("t1", wire.EventReceiveMessage), "room fan-out must not run")
	assert.Len(t, out.sentTo("t1", wire.EventMessageAck), 1)
}

func TestRouter_TypingDirect(t *testing.T) {
	router, sessions, _, out := newTestRouter()
	sessions.Join("ada", "t1")
	sessions.Join("lin", "t2")

	router.Typing(wire.Typing{To: "lin"}, "t1")

	signals := out.sentTo("t2", wire.EventTyping)
	require.Len(t, signals, 1)

	var got wire.Typing
	require.NoError(t, wire.DecodeData(signals[0], &got))
	assert.Equal(t, "ada", got.From)

	// No ack for typing signals.
	assert.Empty(t, out.sentTo("t1", wire.EventMessageAck))
}

func TestRouter_TypingBroadcast(t *testing.T) {
	router, sessions, _, out := newTestRouter()
	sessions.Join("ada", "t1")

	router.Typing(wire.Typing{}, "t1")

	require.Len(t, out.broadcasts, 1)
	assert.Equal(t, wire.EventTyping, out.broadcasts[0].frame.Event)
	assert.Equal(t, []string{"t1"}, out.broadcasts[0].except)
}

func TestRouter_TypingFromUnannouncedTransport(t *testing.T) {
	router, _, _, out := newTestRouter()

	router.Typing(wire.Typing{}, "t1")

	assert.Empty(t, out.sent)
	assert.Empty(t, out.broadcasts)
}
