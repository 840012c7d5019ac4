package world

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/walkersim/internal/model"
)

func TestRegistry_AddGetRemove(t *testing.T) {
	r := NewRegistry()
	h := NewHome(uuid.Nil, "Farm", model.NewGridPoint(2, 3))
	require.NotEqual(t, uuid.Nil, h.ID(), "zero id replaced")

	require.NoError(t, r.Add(h))
	assert.Equal(t, 1, r.Count())
	assert.Error(t, r.Add(h), "duplicate id")

	got, ok := r.Get(h.ID())
	require.True(t, ok)
	assert.Same(t, h, got)

	r.Remove(h.ID())
	assert.Equal(t, 0, r.Count())
	assert.False(t, h.IsAlive())
	_, ok = r.Get(h.ID())
	assert.False(t, ok)

	// removing twice is a no-op
	r.Remove(h.ID())
	assert.Equal(t, 0, r.Count())
}

func TestHomeRef_Liveness(t *testing.T) {
	r := NewRegistry()
	h := NewHome(uuid.New(), "Well", model.NewGridPoint(0, 0))
	require.NoError(t, r.Add(h))

	ref := r.Ref(h.ID())
	assert.False(t, ref.IsEmpty())
	assert.True(t, ref.IsValid())

	resolved, ok := ref.Resolve()
	require.True(t, ok)
	assert.Equal(t, model.NewGridPoint(0, 0), resolved.Entrance())

	r.Remove(h.ID())
	assert.False(t, ref.IsValid(), "ref to a removed home degrades to invalid")
	_, ok = ref.Resolve()
	assert.False(t, ok)
	assert.Equal(t, h.ID(), ref.ID(), "id is kept for persistence")
}

func TestHomeRef_Empty(t *testing.T) {
	var ref HomeRef
	assert.True(t, ref.IsEmpty())
	assert.False(t, ref.IsValid())

	dangling := NewHomeRef(nil, uuid.New())
	_, ok := dangling.Resolve()
	assert.False(t, ok)
}
