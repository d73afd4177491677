package ecs_test

import (
	"testing"

	"github.com/plus3/braid/ecs"
)

func TestExclusiveRelation(t *testing.T) {
	w := ecs.NewWorld()
	ecs.AddRelationTrait[Likes, ecs.Exclusive](w)

	t1 := w.CreateEntity()
	t2 := w.CreateEntity()
	t3 := w.CreateEntity()
	e := w.CreateEntity(Position{})

	ecs.AddPair[Likes](w, e, t1)
	ecs.AddPair[Likes](w, e, t2)
	ecs.AddPair[Likes](w, e, t3)

	if ecs.HasPair[Likes](w, e, t1) || ecs.HasPair[Likes](w, e, t2) {
		t.Error("exclusive relation must drop earlier targets")
	}
	if !ecs.HasPair[Likes](w, e, t3) {
		t.Error("latest target must remain")
	}
	if targets := ecs.GetRelationTargets[Likes](w, e); len(targets) != 1 || targets[0] != t3 {
		t.Errorf("expected exactly [t3], got %v", targets)
	}
}

func TestExclusiveReplacementInsideFlush(t *testing.T) {
	w := ecs.NewWorld()
	ecs.AddRelationTrait[Likes, ecs.Exclusive](w)

	t1 := w.CreateEntity()
	t2 := w.CreateEntity()
	e := w.CreateEntity(Position{})
	ecs.AddPair[Likes](w, e, t1)

	// The replacement happens as part of the deferred add when it flushes.
	it := w.QueryIter(ecs.C[Position]())
	for it.Next() {
		ecs.AddPair[Likes](w, e, t2)
	}

	if ecs.HasPair[Likes](w, e, t1) {
		t.Error("old target must be gone after the flush")
	}
	if !ecs.HasPair[Likes](w, e, t2) {
		t.Error("new target must be present after the flush")
	}
}

func TestNonExclusiveRelationKeepsAllTargets(t *testing.T) {
	w := ecs.NewWorld()
	t1 := w.CreateEntity()
	t2 := w.CreateEntity()
	e := w.CreateEntity()

	ecs.AddPair[Likes](w, e, t1)
	ecs.AddPair[Likes](w, e, t2)
	if targets := ecs.GetRelationTargets[Likes](w, e); len(targets) != 2 {
		t.Errorf("untraited relation must keep both targets, got %v", targets)
	}
}

func TestCascadeDestroyChain(t *testing.T) {
	w := ecs.NewWorld()
	ecs.AddRelationTrait[ChildOf, ecs.Cascade](w)

	grandparent := w.CreateEntity(Position{})
	parent := w.CreateEntity(Position{})
	ecs.AddPair[ChildOf](w, parent, grandparent)
	child := w.CreateEntity(Position{})
	ecs.AddPair[ChildOf](w, child, parent)

	w.RemoveEntity(grandparent)

	for _, e := range []ecs.EntityId{grandparent, parent, child} {
		if w.Alive(e) {
			t.Errorf("entity %v must be dead after the cascade", e)
		}
	}
}

func TestCascadeSparesUnrelatedEntities(t *testing.T) {
	w := ecs.NewWorld()
	ecs.AddRelationTrait[ChildOf, ecs.Cascade](w)

	parent := w.CreateEntity()
	child := w.CreateEntity()
	ecs.AddPair[ChildOf](w, child, parent)
	bystander := w.CreateEntity(Position{})
	liked := w.CreateEntity()
	fan := w.CreateEntity()
	ecs.AddPair[Likes](w, fan, parent) // Likes carries no cascade trait

	w.RemoveEntity(parent)

	if w.Alive(child) {
		t.Error("child must cascade with its parent")
	}
	for _, e := range []ecs.EntityId{bystander, liked, fan} {
		if !w.Alive(e) {
			t.Errorf("entity %v must survive", e)
		}
	}
}

func TestCascadeDuringIteration(t *testing.T) {
	w := ecs.NewWorld()
	ecs.AddRelationTrait[ChildOf, ecs.Cascade](w)

	parent := w.CreateEntity(Position{})
	child := w.CreateEntity()
	ecs.AddPair[ChildOf](w, child, parent)

	it := w.QueryIter(ecs.C[Position]())
	for it.Next() {
		w.RemoveEntity(parent)
		if !w.Alive(parent) || !w.Alive(child) {
			t.Error("cascade must wait for the flush")
		}
	}

	if w.Alive(parent) || w.Alive(child) {
		t.Error("cascade must complete once the scope closes")
	}
}

func TestCascadeCycleTerminates(t *testing.T) {
	w := ecs.NewWorld()
	ecs.AddRelationTrait[ChildOf, ecs.Cascade](w)

	a := w.CreateEntity()
	b := w.CreateEntity()
	ecs.AddPair[ChildOf](w, a, b)
	ecs.AddPair[ChildOf](w, b, a)

	w.RemoveEntity(a) // must not loop forever

	if w.Alive(a) || w.Alive(b) {
		t.Error("both members of the cycle should be destroyed")
	}
}

func TestTypeEntityIsStable(t *testing.T) {
	w := ecs.NewWorld()
	first := ecs.TypeEntity[Likes](w)
	second := ecs.TypeEntity[Likes](w)
	if first != second {
		t.Errorf("type entity must be stable: %v != %v", first, second)
	}
	if !w.Alive(first) {
		t.Error("type entity must be alive")
	}
}
