package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/braid/ecs"
)

func TestPairEncodingRoundTrip(t *testing.T) {
	p := ecs.MakePairId(5, 99)
	assert.True(t, ecs.IsPair(p))
	assert.Equal(t, uint32(5), ecs.PairRelation(p))
	assert.Equal(t, uint32(99), ecs.PairTarget(p))
	assert.Equal(t, p, ecs.MakePairId(ecs.PairRelation(p), ecs.PairTarget(p)))

	edge := ecs.MakePairId(32767, 65535)
	assert.Equal(t, uint32(32767), ecs.PairRelation(edge))
	assert.Equal(t, uint32(65535), ecs.PairTarget(edge))
}

func TestPairEncodingOverflow(t *testing.T) {
	assert.Panics(t, func() { ecs.MakePairId(1<<15, 0) })
	assert.Panics(t, func() { ecs.MakePairId(0, 1<<16) })
}

func TestPairsSortAbovePlainIds(t *testing.T) {
	plain := ecs.ComponentId(12345)
	pair := ecs.MakePairId(0, 0)
	assert.Greater(t, uint32(pair), uint32(plain))
}

func TestEntityTargetPairs(t *testing.T) {
	w := ecs.NewWorld()
	parent := w.CreateEntity()
	other := w.CreateEntity()
	child := w.CreateEntity(Position{})

	ecs.AddPair[ChildOf](w, child, parent)

	assert.True(t, ecs.HasPair[ChildOf](w, child, parent))
	assert.False(t, ecs.HasPair[ChildOf](w, child, other))

	targets := ecs.GetRelationTargets[ChildOf](w, child)
	require.Len(t, targets, 1)
	assert.Equal(t, parent, targets[0])

	ecs.RemovePair[ChildOf](w, child, parent)
	assert.False(t, ecs.HasPair[ChildOf](w, child, parent))
	assert.Empty(t, ecs.GetRelationTargets[ChildOf](w, child))
}

func TestDataPairPayload(t *testing.T) {
	w := ecs.NewWorld()
	bank := w.CreateEntity()
	debtor := w.CreateEntity()

	ecs.AddPairValue(w, debtor, bank, Owes{Amount: 50})
	owed := ecs.GetPair[Owes](w, debtor, bank)
	require.NotNil(t, owed)
	assert.Equal(t, int32(50), owed.Amount)

	// Re-adding the same pair is idempotent on the archetype but
	// overwrites the payload.
	arch := w.EntityArchetype(debtor)
	ecs.AddPairValue(w, debtor, bank, Owes{Amount: 75})
	assert.Same(t, arch, w.EntityArchetype(debtor))
	assert.Equal(t, int32(75), ecs.GetPair[Owes](w, debtor, bank).Amount)
}

func TestTypeTargetPairs(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()

	ecs.AddTypePair[Likes, Position](w, e)
	assert.True(t, ecs.HasTypePair[Likes, Position](w, e))
	assert.False(t, ecs.HasTypePair[Likes, Velocity](w, e))

	ecs.RemoveTypePair[Likes, Position](w, e)
	assert.False(t, ecs.HasTypePair[Likes, Position](w, e))
}

func TestTypeTargetPairPayload(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()

	ecs.AddTypePairValue[Owes, Position](w, e, Owes{Amount: 12})
	owed := ecs.GetTypePair[Owes, Position](w, e)
	require.NotNil(t, owed)
	assert.Equal(t, int32(12), owed.Amount)
	assert.Nil(t, ecs.GetTypePair[Owes, Velocity](w, e))
}

func TestEntityRelationTypeTargetPairs(t *testing.T) {
	w := ecs.NewWorld()
	relation := w.CreateEntity()
	e := w.CreateEntity()

	ecs.AddEntityTypePair[Position](w, e, relation)
	assert.True(t, ecs.HasEntityTypePair[Position](w, e, relation))
	assert.False(t, ecs.HasEntityTypePair[Velocity](w, e, relation))

	ecs.RemoveEntityTypePair[Position](w, e, relation)
	assert.False(t, ecs.HasEntityTypePair[Position](w, e, relation))
}

func TestEntityRelationPairsCarryNoData(t *testing.T) {
	w := ecs.NewWorld()
	relation := w.CreateEntity()
	target := w.CreateEntity()
	e := w.CreateEntity()

	ecs.AddEntityPair(w, e, relation, target)
	assert.True(t, ecs.HasEntityPair(w, e, relation, target))

	targets := ecs.GetEntityRelationTargets(w, e, relation)
	require.Len(t, targets, 1)
	assert.Equal(t, target, targets[0])

	ecs.RemoveEntityPair(w, e, relation, target)
	assert.False(t, ecs.HasEntityPair(w, e, relation, target))
}

func TestMultipleTargetsSameRelation(t *testing.T) {
	w := ecs.NewWorld()
	a := w.CreateEntity()
	b := w.CreateEntity()
	e := w.CreateEntity()

	ecs.AddPair[Likes](w, e, a)
	ecs.AddPair[Likes](w, e, b)

	targets := ecs.GetRelationTargets[Likes](w, e)
	assert.ElementsMatch(t, []ecs.EntityId{a, b}, targets)
}
