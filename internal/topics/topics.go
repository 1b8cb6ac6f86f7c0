// Package topics defines the typed topic identifiers used on the pub/sub bus.
// Components publish and subscribe through these instead of raw strings so
// the full event surface of the server is visible in one place.
package topics

// Topic is a strongly-typed topic identifier.
type Topic struct {
	name        string
	description string
	example     string
}

// Define creates a new topic definition.
func Define(name, description, example string) Topic {
	return Topic{name: name, description: description, example: example}
}

// Name returns the unique string identifier for this topic.
func (t Topic) Name() string { return t.name }

// Description returns human-readable documentation.
func (t Topic) Description() string { return t.description }

// Example returns a usage example payload.
func (t Topic) Example() string { return t.example }

// String returns the topic name for easy debugging.
func (t Topic) String() string { return t.name }

var (
	// TransportClientReady is published when a WebSocket transport finishes
	// its upgrade handshake and both pumps are running.
	TransportClientReady = Define(
		"transport.client.ready",
		"Published when a new WebSocket transport connects and is ready",
		`{"transportID":"d3b0..."}`,
	)

	// TransportClientDisconnected is published when a transport drops, for
	// any reason. The session registry and room membership react to this.
	TransportClientDisconnected = Define(
		"transport.client.disconnected",
		"Published when a WebSocket transport disconnects",
		`{"transportID":"d3b0...","reason":"client_closed"}`,
	)

	// ChatInbound carries every raw wire frame received from a client. The
	// router loop is the sole consumer; frames are processed one at a time.
	ChatInbound = Define(
		"chat.events.inbound",
		"Raw client wire frames destined for the message router",
		`{"event":"send_message","data":{"from":"ada","to":"lin","content":"hi"}}`,
	)
)
