package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raj-sankey/chat-st/internal/pubsub"
	"github.com/raj-sankey/chat-st/internal/wire"
)

// mockSubscriber satisfies pubsub.Subscriber; the tests drive the loop by
// calling handle directly, so no messages ever flow through it.
type mockSubscriber struct{}

func (m *mockSubscriber) Subscribe(ctx context.Context, topic string, handler pubsub.Handler) error {
	return nil
}

func (m *mockSubscriber) Close() error { return nil }

func frameEvent(t *testing.T, transportID, name string, data any) event {
	t.Helper()
	f, err := wire.NewFrame(name, data)
	require.NoError(t, err)
	raw, err := f.Encode()
	require.NoError(t, err)
	return event{transportID: transportID, payload: raw}
}

func TestLoop_JoinBroadcastsFullPresenceSet(t *testing.T) {
	out := &mockSender{}
	loop := NewLoop(&mockSubscriber{}, out)

	loop.handle(frameEvent(t, "t1", wire.EventJoin, wire.Join{Handle: "ada"}))
	loop.handle(frameEvent(t, "t2", wire.EventJoin, wire.Join{Handle: "lin"}))

	require.Len(t, out.broadcasts, 2)
	last := out.broadcasts[1]
	assert.Equal(t, wire.EventOnlineUsers, last.frame.Event)
	assert.Empty(t, last.except, "presence goes to every connection, sender included")

	var users wire.OnlineUsers
	require.NoError(t, wire.DecodeData(last.frame, &users))
	assert.Equal(t, []string{"ada", "lin"}, users.Handles)
}

func TestLoop_DisconnectClearsSessionAndRooms(t *testing.T) {
	out := &mockSender{}
	loop := NewLoop(&mockSubscriber{}, out)

	loop.handle(frameEvent(t, "t1", wire.EventJoin, wire.Join{Handle: "ada"}))
	loop.handle(frameEvent(t, "t1", wire.EventJoinGroup, wire.RoomRef{Room: "ops"}))

	loop.handle(event{transportID: "t1", disconnect: true})

	_, ok := loop.sessions.Lookup("ada")
	assert.False(t, ok)
	assert.Empty(t, loop.rooms.Members("ops"))

	// join + disconnect each broadcast the full set.
	require.Len(t, out.broadcasts, 2)
	var users wire.OnlineUsers
	require.NoError(t, wire.DecodeData(out.broadcasts[1].frame, &users))
	assert.Empty(t, users.Handles)
}

func TestLoop_DisconnectOfUnannouncedTransportIsSilent(t *testing.T) {
	out := &mockSender{}
	loop := NewLoop(&mockSubscriber{}, out)

	loop.handle(event{transportID: "t9", disconnect: true})

	assert.Empty(t, out.broadcasts)
}

func TestLoop_SendMessageIsRouted(t *testing.T) {
	out := &mockSender{}
	loop := NewLoop(&mockSubscriber{}, out)

	loop.handle(frameEvent(t, "t1", wire.EventJoin, wire.Join{Handle: "ada"}))
	loop.handle(frameEvent(t, "t2", wire.EventJoin, wire.Join{Handle: "lin"}))
	loop.handle(frameEvent(t, "t1", wire.EventSendMessage, wire.Envelope{From: "ada", To: "lin", Content: "hi"}))

	assert.Len(t, out.sentTo("t2", wire.EventReceiveMessage), 1)
	assert.Len(t, out.sentTo("t1", wire.EventMessageAck), 1)
}

func TestLoop_MalformedFrameIsDropped(t *testing.T) {
	out := &mockSender{}
	loop := NewLoop(&mockSubscriber{}, out)

	loop.handle(event{transportID: "t1", payload: []byte("not json")})
	loop.handle(event{transportID: "t1", payload: []byte(`{"data":{}}`)})

	assert.Empty(t, out.sent)
	assert.Empty(t, out.broadcasts)
}

func TestLoop_JoinAndLeaveGroup(t *testing.T) {
	out := &mockSender{}
	loop := NewLoop(&mockSubscriber{}, out)

	loop.handle(frameEvent(t, "t1", wire.EventJoinGroup, wire.RoomRef{Room: "ops"}))
	assert.Equal(t, []string{"t1"}, loop.rooms.Members("ops"))

	loop.handle(frameEvent(t, "t1", wire.EventLeaveGroup, wire.RoomRef{Room: "ops"}))
	assert.Empty(t, loop.rooms.Members("ops"))
}
