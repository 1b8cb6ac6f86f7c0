// Package wire defines the JSON payloads exchanged between clients and the
// server. Every WebSocket message is a Frame: a tagged event name plus the
// raw event payload. The envelope shape doubles as the routing contract --
// the router derives the fan-out set solely from which destination fields
// are set.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Event names carried in Frame.Event.
const (
	EventJoin           = "join"
	EventOnlineUsers    = "online_users"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventMessageAck     = "message_sent_ack"
	EventTyping         = "typing"
	EventJoinGroup      = "join_group"
	EventLeaveGroup     = "leave_group"
)

// Message content types.
const (
	TypeText  = "text"
	TypeImage = "image"
	TypeVideo = "video"
	TypeAudio = "audio"
	TypeFile  = "file"
)

// Frame is a single tagged wire event.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Envelope is an immutable message payload. Exactly one of To or Room is
// set, or neither; a bare envelope is a global broadcast.
type Envelope struct {
	// ID is the client-assigned message id, passed through untouched by
	// the server so echoes collapse onto the optimistic local copy.
	ID       string `json:"id,omitempty"`
	From     string `json:"from"`
	To       string `json:"to,omitempty"`
	Room     string `json:"room,omitempty"`
	Content  string `json:"content"`
	Type     string `json:"type,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// Join announces the client's identity after (re)connecting.
type Join struct {
	Handle string `json:"handle"`
}

// OnlineUsers is the full current handle set, replacing any previous set.
type OnlineUsers struct {
	Handles []string `json:"handles"`
}

// Typing is the typing-indicator signal. Outbound carries the optional
// target; inbound carries the originating handle.
type Typing struct {
	To   string `json:"to,omitempty"`
	From string `json:"from,omitempty"`
}

// RoomRef names a room for join_group / leave_group.
type RoomRef struct {
	Room string `json:"room"`
}

// Validate performs the local defensive checks a sender runs before
// emitting an envelope. The server does not enforce these.
func (e *Envelope) Validate() error {
	if e.From == "" {
		return errors.New("envelope: missing from")
	}
	if e.To != "" && e.Room != "" {
		return errors.New("envelope: to and room are mutually exclusive")
	}
	switch e.Type {
	case "", TypeText:
		if e.Content == "" {
			return errors.New("envelope: empty content")
		}
	case TypeImage, TypeVideo, TypeAudio, TypeFile:
		if e.FileURL == "" {
			return fmt.Errorf("envelope: %s message without fileUrl", e.Type)
		}
	default:
		return fmt.Errorf("envelope: unknown type %q", e.Type)
	}
	return nil
}

// NewFrame encodes an event payload into a Frame.
func NewFrame(event string, data any) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return Frame{Event: event, Data: raw}, nil
}

// Encode serializes a frame for the transport.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// DecodeFrame parses a raw transport message into a Frame.
func DecodeFrame(raw []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if f.Event == "" {
		return Frame{}, errors.New("decode frame: missing event")
	}
	return f, nil
}

// DecodeData parses a frame's payload into the given event struct.
func DecodeData(f Frame, v any) error {
	if err := json.Unmarshal(f.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", f.Event, err)
	}
	return nil
}

// MustFrame is NewFrame for payloads that cannot fail to marshal.
func MustFrame(event string, data any) Frame {
	f, err := NewFrame(event, data)
	if err != nil {
		panic(err)
	}
	return f
}
