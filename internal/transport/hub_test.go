package transport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raj-sankey/chat-st/internal/pubsub"
	"github.com/raj-sankey/chat-st/internal/topics"
	"github.com/raj-sankey/chat-st/internal/wire"
)

type mockPublisher struct {
	mu   sync.Mutex
	msgs []pubsub.Message
}

func (m *mockPublisher) Publish(_ context.Context, msg pubsub.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) topicsSeen() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.msgs))
	for i, msg := range m.msgs {
		out[i] = msg.Topic
	}
	return out
}

func TestHub_LifecycleEventsOnBus(t *testing.T) {
	pub := &mockPublisher{}
	h := NewHub(pub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	conn := &Conn{ID: "t1", send: make(chan []byte, 1), hub: h}
	h.register <- conn

	require.Eventually(t, func() bool {
		return len(pub.topicsSeen()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, topics.TransportClientReady.Name(), pub.topicsSeen()[0])

	h.dropConn(conn)

	require.Eventually(t, func() bool {
		return len(pub.topicsSeen()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, topics.TransportClientDisconnected.Name(), pub.topicsSeen()[1])
}

func TestHub_ShutdownReleasesPendingDisconnects(t *testing.T) {
	h := NewHub(&mockPublisher{})
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	// A connection dropping after shutdown has no run loop to report to;
	// its cleanup must return instead of blocking forever.
	conn := &Conn{ID: "t1", send: make(chan []byte, 1), hub: h}
	released := make(chan struct{})
	go func() {
		h.dropConn(conn)
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("disconnect cleanup blocked after hub shutdown")
	}
}

func TestHub_SendToAbsentTransportDrops(t *testing.T) {
	h := NewHub(&mockPublisher{})

	// Must not panic or block; the recipient is simply gone.
	h.Send("nope", wire.MustFrame(wire.EventOnlineUsers, wire.OnlineUsers{}))
}
