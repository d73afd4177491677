package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/braid/ecs"
)

func TestEntityIdPacking(t *testing.T) {
	e := ecs.NewEntityId(42, 7)
	assert.Equal(t, uint64(42), e.Index())
	assert.Equal(t, uint16(7), e.Generation())
	assert.Equal(t, e, ecs.NewEntityId(e.Index(), e.Generation()))

	big := ecs.NewEntityId((uint64(1)<<48)-1, 65535)
	assert.Equal(t, (uint64(1)<<48)-1, big.Index())
	assert.Equal(t, uint16(65535), big.Generation())
}

func TestFirstEntityIndexIsOne(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()
	assert.Equal(t, uint64(1), e.Index())
	assert.False(t, w.Alive(ecs.NewEntityId(0, 0)))
}

func TestEntityRecycling(t *testing.T) {
	w := ecs.NewWorld()
	e1 := w.CreateEntity()
	idx, gen := e1.Index(), e1.Generation()

	w.RemoveEntity(e1)
	require.False(t, w.Alive(e1))

	e2 := w.CreateEntity()
	assert.Equal(t, idx, e2.Index())
	assert.Equal(t, gen+1, e2.Generation())
	assert.False(t, w.Alive(e1), "stale ID must stay dead after its index is recycled")
	assert.True(t, w.Alive(e2))
}

func TestEntityDestroyIsIdempotent(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()
	other := w.CreateEntity()

	w.RemoveEntity(e)
	w.RemoveEntity(e) // second destroy is a no-op
	assert.True(t, w.Alive(other))
	assert.Equal(t, 1, w.EntityCount())
}

func TestDeadEntityOperationsAreNoOps(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity(Position{X: 1})
	w.RemoveEntity(e)

	assert.Nil(t, ecs.GetComponent[Position](w, e))
	assert.False(t, ecs.HasComponent[Position](w, e))
	assert.Equal(t, -1, w.EntityRow(e))

	// Adds and removes on a dead entity change nothing.
	ecs.AddComponent(w, e, Velocity{DX: 1})
	ecs.RemoveComponent[Position](w, e)
	assert.False(t, w.Alive(e))
	assert.Equal(t, 0, w.EntityCount())
}

func TestCreateEntitiesBatch(t *testing.T) {
	w := ecs.NewWorld()
	entities := w.CreateEntities(10, Position{X: 3}, Velocity{})
	require.Len(t, entities, 10)
	for _, e := range entities {
		require.True(t, w.Alive(e))
		pos := ecs.GetComponent[Position](w, e)
		require.NotNil(t, pos)
		assert.Equal(t, float32(3), pos.X)
	}
	assert.Same(t, w.EntityArchetype(entities[0]), w.EntityArchetype(entities[9]))
}
