package ecs_test

import (
	"testing"

	"github.com/plus3/braid/ecs"
)

func TestObserverOnAdd(t *testing.T) {
	w := ecs.NewWorld()
	var added []ecs.EntityId
	w.Observe(ecs.OnAddObserver(ecs.C[Position]()), func(w *ecs.World, e ecs.EntityId) {
		added = append(added, e)
	})

	e1 := w.CreateEntity(Position{}) // None -> {Position}
	e2 := w.CreateEntity()
	ecs.AddComponent(w, e2, Position{}) // {} -> {Position}
	e3 := w.CreateEntity(Velocity{})
	ecs.AddComponent(w, e3, Health{}) // never matches

	if len(added) != 2 || added[0] != e1 || added[1] != e2 {
		t.Errorf("expected OnAdd for %v and %v, got %v", e1, e2, added)
	}

	// Already matching: adding more components must not re-fire.
	ecs.AddComponent(w, e1, Velocity{})
	if len(added) != 2 {
		t.Errorf("observer re-fired on a transition that kept the match: %v", added)
	}
}

func TestObserverOnRemove(t *testing.T) {
	w := ecs.NewWorld()
	var removed []ecs.EntityId
	w.Observe(ecs.OnRemoveObserver(ecs.C[Position]()), func(w *ecs.World, e ecs.EntityId) {
		removed = append(removed, e)
		// The departing data is still readable.
		if ecs.GetComponent[Position](w, e) == nil {
			t.Error("OnRemove callback must still see the component")
		}
	})

	e1 := w.CreateEntity(Position{X: 1})
	ecs.RemoveComponent[Position](w, e1)

	e2 := w.CreateEntity(Position{X: 2})
	w.RemoveEntity(e2) // {Position} -> None

	if len(removed) != 2 || removed[0] != e1 || removed[1] != e2 {
		t.Errorf("expected OnRemove for %v and %v, got %v", e1, e2, removed)
	}
}

func TestObserverExclusionTerms(t *testing.T) {
	w := ecs.NewWorld()
	fired := 0
	w.Observe(ecs.OnAddObserver(ecs.C[Position](), ecs.Not(ecs.C[Velocity]())), func(w *ecs.World, e ecs.EntityId) {
		fired++
	})

	w.CreateEntity(Position{})             // matches
	w.CreateEntity(Position{}, Velocity{}) // excluded
	if fired != 1 {
		t.Errorf("expected 1 firing, got %d", fired)
	}
}

func TestObserverRegistrationOrder(t *testing.T) {
	w := ecs.NewWorld()
	var order []int
	w.Observe(ecs.OnAddObserver(ecs.C[Position]()), func(w *ecs.World, e ecs.EntityId) {
		order = append(order, 1)
	})
	w.Observe(ecs.OnAddObserver(ecs.C[Position]()), func(w *ecs.World, e ecs.EntityId) {
		order = append(order, 2)
	})

	w.CreateEntity(Position{})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("observers fired out of registration order: %v", order)
	}
}

func TestObserverMutationIsDeferred(t *testing.T) {
	w := ecs.NewWorld()
	w.Observe(ecs.OnAddObserver(ecs.C[Position]()), func(w *ecs.World, e ecs.EntityId) {
		ecs.AddComponent(w, e, Velocity{DX: 9})
		if ecs.HasComponent[Velocity](w, e) {
			t.Error("structural change inside a callback must be deferred")
		}
	})

	e := w.CreateEntity(Position{})
	vel := ecs.GetComponent[Velocity](w, e)
	if vel == nil || vel.DX != 9 {
		t.Errorf("callback's deferred add must apply once the operation settles, got %+v", vel)
	}
}

func TestUnobserve(t *testing.T) {
	w := ecs.NewWorld()
	fired := 0
	id := w.Observe(ecs.OnAddObserver(ecs.C[Position]()), func(w *ecs.World, e ecs.EntityId) {
		fired++
	})

	w.CreateEntity(Position{})
	if !w.Unobserve(id) {
		t.Fatal("Unobserve returned false for a live observer")
	}
	w.CreateEntity(Position{})
	if fired != 1 {
		t.Errorf("observer fired after removal: %d", fired)
	}
	if w.Unobserve(id) {
		t.Error("Unobserve must return false for an unknown ID")
	}
}

func TestObserverOnPairTransition(t *testing.T) {
	w := ecs.NewWorld()
	parent := w.CreateEntity()
	fired := 0
	w.Observe(ecs.OnAddObserver(ecs.Pair[ChildOf](ecs.TargetEntity(parent))), func(w *ecs.World, e ecs.EntityId) {
		fired++
	})

	child := w.CreateEntity(Position{})
	ecs.AddPair[ChildOf](w, child, parent)
	if fired != 1 {
		t.Errorf("expected pair observer to fire once, got %d", fired)
	}
}
