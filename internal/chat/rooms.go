package chat

import "sort"

// Rooms tracks which transports belong to which group rooms, independent
// of the session registry. Membership is many-to-many and lives only as
// long as the transport connection: a reconnecting client must re-join
// every room it cares about.
type Rooms struct {
	byRoom map[string]map[string]struct{} // roomID -> set of transportIDs
	byConn map[string]map[string]struct{} // transportID -> set of roomIDs
}

// NewRooms creates an empty membership table.
func NewRooms() *Rooms {
	return &Rooms{
		byRoom: make(map[string]map[string]struct{}),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Join adds a membership. Re-joining is a no-op.
func (r *Rooms) Join(transportID, roomID string) {
	if r.byRoom[roomID] == nil {
		r.byRoom[roomID] = make(map[string]struct{})
	}
	r.byRoom[roomID][transportID] = struct{}{}

	if r.byConn[transportID] == nil {
		r.byConn[transportID] = make(map[string]struct{})
	}
	r.byConn[transportID][roomID] = struct{}{}
}

// Leave removes a membership. Leaving a room you are not in is a no-op.
func (r *Rooms) Leave(transportID, roomID string) {
	if members, ok := r.byRoom[roomID]; ok {
		delete(members, transportID)
		if len(members) == 0 {
			delete(r.byRoom, roomID)
		}
	}
	if rooms, ok := r.byConn[transportID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.byConn, transportID)
		}
	}
}

// DropConn removes all memberships for a transport. Called on disconnect;
// no explicit leave events are required from the client.
func (r *Rooms) DropConn(transportID string) {
	for roomID := range r.byConn[transportID] {
		if members, ok := r.byRoom[roomID]; ok {
			delete(members, transportID)
			if len(members) == 0 {
				delete(r.byRoom, roomID)
			}
		}
	}
	delete(r.byConn, transportID)
}

// Members returns the transports currently joined to a room, sorted for
// stable fan-out order.
func (r *Rooms) Members(roomID string) []string {
	members := r.byRoom[roomID]
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
