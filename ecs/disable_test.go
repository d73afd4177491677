package ecs_test

import (
	"testing"

	"github.com/plus3/braid/ecs"
)

func TestDisableComponentMasksQueries(t *testing.T) {
	w := ecs.NewWorld()
	e1 := w.CreateEntity(Position{X: 1})
	e2 := w.CreateEntity(Position{X: 2})

	ecs.DisableComponent[Position](w, e1)

	if !ecs.IsComponentDisabled[Position](w, e1) {
		t.Fatal("component must report disabled")
	}
	if ecs.IsComponentDisabled[Position](w, e2) {
		t.Fatal("other entities must be unaffected")
	}

	// Disabling does not move the entity or drop its data.
	if !ecs.HasComponent[Position](w, e1) {
		t.Error("disabled component must still be present")
	}
	if pos := ecs.GetComponent[Position](w, e1); pos == nil || pos.X != 1 {
		t.Errorf("disabled component data must survive, got %+v", pos)
	}

	it := w.QueryIter(ecs.C[Position]())
	for it.Next() {
		if it.Entity() == e1 {
			t.Error("masked entity must not be yielded")
		}
	}

	got := countResults(w.QueryIterFlags(ecs.IncludeDisabled, ecs.C[Position]()))
	if got != 2 {
		t.Errorf("IncludeDisabled must yield both entities, got %d", got)
	}

	ecs.EnableComponent[Position](w, e1)
	if got := countResults(w.QueryIter(ecs.C[Position]())); got != 2 {
		t.Errorf("expected both entities after enable, got %d", got)
	}
}

func TestDisableIsPerEntityAndPerKind(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity(Position{}, Velocity{})
	ecs.DisableComponent[Position](w, e)

	if got := countResults(w.QueryIter(ecs.C[Velocity]())); got != 1 {
		t.Errorf("masking Position must not affect Velocity queries, got %d", got)
	}
	if got := countResults(w.QueryIter(ecs.C[Position](), ecs.C[Velocity]())); got != 0 {
		t.Errorf("any masked required kind hides the entity, got %d", got)
	}
}

func TestDisableStateDiesWithEntity(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity(Position{})
	ecs.DisableComponent[Position](w, e)
	w.RemoveEntity(e)

	// The recycled index must not inherit the mask.
	e2 := w.CreateEntity(Position{})
	if e2.Index() != e.Index() {
		t.Fatalf("expected index recycling, got %d and %d", e.Index(), e2.Index())
	}
	if ecs.IsComponentDisabled[Position](w, e2) {
		t.Error("disable state leaked across recycling")
	}
	if got := countResults(w.QueryIter(ecs.C[Position]())); got != 1 {
		t.Errorf("expected 1 entity, got %d", got)
	}
}
