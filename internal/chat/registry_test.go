package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_JoinRemoveLookup(t *testing.T) {
	r := NewRegistry()

	r.Join("ada", "t1")

	id, ok := r.Lookup("ada")
	assert.True(t, ok)
	assert.Equal(t, "t1", id)

	handle, ok := r.Remove("t1")
	assert.True(t, ok)
	assert.Equal(t, "ada", handle)

	_, ok = r.Lookup("ada")
	assert.False(t, ok)
}

func TestRegistry_SecondJoinSupersedes(t *testing.T) {
	r := NewRegistry()

	r.Join("ada", "t1")
	r.Join("ada", "t2")

	id, ok := r.Lookup("ada")
	assert.True(t, ok)
	assert.Equal(t, "t2", id, "later join must supersede, not duplicate")

	// The superseded transport no longer resolves to the handle.
	_, ok = r.HandleOf("t1")
	assert.False(t, ok)

	// Disconnect of the old transport must not evict the new session.
	_, removed := r.Remove("t1")
	assert.False(t, removed)
	id, ok = r.Lookup("ada")
	assert.True(t, ok)
	assert.Equal(t, "t2", id)
}

func TestRegistry_JoinIsIdempotent(t *testing.T) {
	r := NewRegistry()

	r.Join("ada", "t1")
	r.Join("ada", "t1")

	assert.Equal(t, []string{"ada"}, r.Handles())
}

func TestRegistry_Handles(t *testing.T) {
	r := NewRegistry()

	r.Join("lin", "t2")
	r.Join("ada", "t1")
	r.Join("bo", "t3")

	assert.Equal(t, []string{"ada", "bo", "lin"}, r.Handles())
}

func TestRegistry_RemoveUnknownTransport(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Remove("ghost")
	assert.False(t, ok)
}
