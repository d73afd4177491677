/*
Package ecs is an archetype-based Entity-Component-System data engine.

Entities are 64-bit identifiers with recycled indices and generation
counters. Component data lives in contiguous columns grouped by archetype
(the exact set of component kinds an entity holds), so entities sharing a
layout iterate cache-friendly. Relations between entities or types are
encoded as pairs, single ComponentIds packing a relation and a target.

Queries are declarative term lists over components and pairs, with
negation, any-of groups, wildcard targets, capture slots, and hierarchy
ordering along a relation. Matched archetype lists are cached and
invalidated by an archetype generation counter.

Structural mutation requested while a query iterates is deferred to a FIFO
log and flushed when the outermost iteration scope closes; reads in the
meantime see the snapshot state. Observers fire on archetype transitions,
and relation traits (Exclusive, Cascade) alter pair semantics.

Basic usage:

	w := ecs.NewWorld()
	e := w.CreateEntity(Position{X: 1}, Velocity{DX: 2})

	it := w.QueryIter(ecs.C[Position](), ecs.C[Velocity]())
	for it.Next() {
		pos := ecs.GetComponent[Position](w, it.Entity())
		vel := ecs.GetComponent[Velocity](w, it.Entity())
		pos.X += vel.DX
	}

A World is single-threaded; independent worlds are fully independent.
*/
package ecs
