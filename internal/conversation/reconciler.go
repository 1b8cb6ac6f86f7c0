// Package conversation merges locally-optimistic sends with server-echoed
// and peer-received messages into one de-duplicated, time-ordered view per
// conversation.
//
// The core correctness problem: a locally sent message appears in the view
// immediately, and the same logical message may later arrive back from the
// server as a broadcast echo or a group fan-out the sender is part of. The
// message id is the sole de-duplication key across that race.
package conversation

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/raj-sankey/chat-st/internal/wire"
)

// Record is a message as held client-side: the wire envelope plus the
// local receipt timestamp and the de-duplication id.
type Record struct {
	wire.Envelope
	ID        string
	Timestamp time.Time
}

// NewOptimistic builds the record added to the view at send time, before
// any server round trip. A client-generated id is stamped onto the
// envelope so the server echo carries it back.
func NewOptimistic(env wire.Envelope, now time.Time) Record {
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	return Record{
		Envelope:  env,
		ID:        env.ID,
		Timestamp: now,
	}
}

// FromInbound builds a record for a message received off the wire. If the
// envelope carried an id it is reused; otherwise a stable composite key is
// derived so a repeated delivery collapses onto the same record.
func FromInbound(env wire.Envelope, id string, now time.Time) Record {
	if id == "" {
		id = env.ID
	}
	if id == "" {
		id = compositeKey(env, now)
	}
	return Record{
		Envelope:  env,
		ID:        id,
		Timestamp: now,
	}
}

func compositeKey(env wire.Envelope, ts time.Time) string {
	dest := env.To
	if env.Room != "" {
		dest = env.Room
	}
	return fmt.Sprintf("%s|%s|%d|%s", env.From, dest, ts.Unix(), env.Content)
}

// Reconciler holds all messages for a session keyed by id. Insertion order
// is irrelevant for storage; views sort by timestamp on the way out.
type Reconciler struct {
	self    string
	records map[string]Record
}

// New creates a reconciler for the local handle.
func New(self string) *Reconciler {
	return &Reconciler{
		self:    self,
		records: make(map[string]Record),
	}
}

// Ingest stores a record. Inserting under an existing id overwrites rather
// than duplicates; this is what collapses the optimistic-echo race.
func (r *Reconciler) Ingest(rec Record) {
	r.records[rec.ID] = rec
}

// Len reports the number of distinct messages held.
func (r *Reconciler) Len() int {
	return len(r.records)
}

// DirectView returns the conversation with peer: exactly the messages
// where (from=self, to=peer) or (from=peer, to=self), time-ascending.
func (r *Reconciler) DirectView(peer string) []Record {
	return r.view(func(rec Record) bool {
		if rec.Room != "" {
			return false
		}
		return (rec.From == r.self && rec.To == peer) ||
			(rec.From == peer && rec.To == r.self)
	})
}

// RoomView returns the conversation for a group room: exactly the messages
// carrying that room, time-ascending.
func (r *Reconciler) RoomView(room string) []Record {
	return r.view(func(rec Record) bool {
		return rec.Room == room
	})
}

func (r *Reconciler) view(include func(Record) bool) []Record {
	var out []Record
	for _, rec := range r.records {
		if include(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
