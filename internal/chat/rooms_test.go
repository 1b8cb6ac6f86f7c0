package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRooms_JoinLeave(t *testing.T) {
	r := NewRooms()

	r.Join("t1", "ops")
	r.Join("t2", "ops")
	assert.Equal(t, []string{"t1", "t2"}, r.Members("ops"))

	r.Leave("t1", "ops")
	assert.Equal(t, []string{"t2"}, r.Members("ops"))
}

func TestRooms_RejoinIsNoOp(t *testing.T) {
	r := NewRooms()

	r.Join("t1", "ops")
	r.Join("t1", "ops")

	assert.Equal(t, []string{"t1"}, r.Members("ops"))
}

func TestRooms_LeaveWithoutJoinIsNoOp(t *testing.T) {
	r := NewRooms()

	r.Leave("t1", "ops")
	assert.Empty(t, r.Members("ops"))
}

func TestRooms_MultipleRoomsPerTransport(t *testing.T) {
	r := NewRooms()

	r.Join("t1", "ops")
	r.Join("t1", "general")

	assert.Equal(t, []string{"t1"}, r.Members("ops"))
	assert.Equal(t, []string{"t1"}, r.Members("general"))
}

func TestRooms_DropConnClearsAllMemberships(t *testing.T) {
	r := NewRooms()

	r.Join("t1", "ops")
	r.Join("t1", "general")
	r.Join("t2", "ops")

	r.DropConn("t1")

	assert.Equal(t, []string{"t2"}, r.Members("ops"))
	assert.Empty(t, r.Members("general"))
}
