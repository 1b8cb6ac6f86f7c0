// Package chat implements the presence-and-message-routing core: the
// session registry (who is online), room membership, and the router that
// decides the fan-out set for each inbound envelope.
//
// All state in this package is owned by the event loop in loop.go. Every
// inbound transport event is handled to completion before the next one, so
// none of these structures carry locks.
package chat

import "sort"

// Registry maps a logical user handle to its single live transport
// connection. It is the source of truth for "who is online".
type Registry struct {
	byHandle    map[string]string // handle -> transportID
	byTransport map[string]string // transportID -> handle
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		byHandle:    make(map[string]string),
		byTransport: make(map[string]string),
	}
}

// Join registers or overwrites the mapping for handle. A second join under
// the same handle supersedes the previous session; a re-join on the same
// transport is a no-op.
func (r *Registry) Join(handle, transportID string) {
	if prev, ok := r.byHandle[handle]; ok && prev != transportID {
		delete(r.byTransport, prev)
	}
	r.byHandle[handle] = transportID
	r.byTransport[transportID] = handle
}

// Lookup resolves a handle to its transport. A missing handle is not an
// error: it signals the recipient is offline.
func (r *Registry) Lookup(handle string) (string, bool) {
	id, ok := r.byHandle[handle]
	return id, ok
}

// HandleOf returns the handle announced on a transport, if any.
func (r *Registry) HandleOf(transportID string) (string, bool) {
	h, ok := r.byTransport[transportID]
	return h, ok
}

// Remove drops the entry whose transport matches, returning the removed
// handle. Called on transport disconnect.
func (r *Registry) Remove(transportID string) (string, bool) {
	handle, ok := r.byTransport[transportID]
	if !ok {
		return "", false
	}
	delete(r.byTransport, transportID)
	// Only clear the forward mapping if it still points at this transport;
	// a superseding join may already have claimed the handle.
	if current, exists := r.byHandle[handle]; exists && current == transportID {
		delete(r.byHandle, handle)
	}
	return handle, true
}

// Handles returns the full current handle set, sorted for stable output.
func (r *Registry) Handles() []string {
	out := make([]string, 0, len(r.byHandle))
	for h := range r.byHandle {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
