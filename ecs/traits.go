package ecs

import "reflect"

// Relation traits alter pair semantics. A trait is an ordinary marker
// component added to the relation's anchor entity: the lazily created
// type-entity for type-valued relations, or the relation entity itself for
// entity-valued ones.

var (
	exclusiveType = reflect.TypeOf(Exclusive{})
	cascadeType   = reflect.TypeOf(Cascade{})
)

// Exclusive marks a relation as single-target: adding a pair on the
// relation removes every other pair with the same relation first.
type Exclusive struct{}

// Cascade marks a relation for cascading destruction: destroying the
// target of a pair on the relation destroys the holder as well.
type Cascade struct{}

// TypeEntity returns the shadow entity anchoring traits for the relation
// type R, creating it on first use.
func TypeEntity[R any](w *World) EntityId {
	ord := uint32(RegisterComponent[R](w))
	if e, ok := w.typeEntities.Get(ord); ok && w.Alive(e) {
		return e
	}
	e := w.CreateEntity()
	w.typeEntities.Put(ord, e)
	return e
}

// AddRelationTrait attaches the trait component T to the type-entity of
// relation R.
func AddRelationTrait[R any, T any](w *World) {
	AddComponent(w, TypeEntity[R](w), *new(T))
}

// traitAnchor resolves the entity carrying traits for a relation field:
// the registered type-entity when one exists, otherwise the live entity at
// that index (entity-valued relations share the field with type ordinals).
func (w *World) traitAnchor(relation uint32) (EntityId, bool) {
	if e, ok := w.typeEntities.Get(relation); ok && w.Alive(e) {
		return e, true
	}
	return w.index.entityAt(uint64(relation))
}

// hasRelationTrait reports whether the relation's anchor entity carries the
// given trait component.
func (w *World) hasRelationTrait(relation uint32, traitCid ComponentId) bool {
	if traitCid == 0 {
		return false
	}
	anchor, ok := w.traitAnchor(relation)
	if !ok {
		return false
	}
	rec := &w.records[anchor.Index()]
	return rec.arch != nil && rec.arch.Contains(traitCid)
}

// applyExclusive strips every pair sharing cid's relation from the entity
// before cid itself is added. Runs immediately, even mid-flush: it is part
// of the same add op.
func (w *World) applyExclusive(e EntityId, cid ComponentId) {
	rel := PairRelation(cid)
	excl, ok := w.registry.lookup(exclusiveType)
	if !ok || !w.hasRelationTrait(rel, excl) {
		return
	}
	for {
		rec := &w.records[e.Index()]
		if rec.arch == nil {
			return
		}
		var scratch [4]ComponentId
		pairs := rec.arch.pairsWithRelation(rel, scratch[:0])
		removed := false
		for _, pid := range pairs {
			if pid != cid {
				w.applyRemove(e, pid)
				removed = true
				break // the move invalidated rec; rescan
			}
		}
		if !removed {
			return
		}
	}
}

// enqueueCascadeDestroys collects every entity holding a pair that points at the
// dying entity through a cascade relation, and queues their destruction.
// The queue doubles as the work list, so destruction chains recurse without
// unbounded stack growth; alive checks skip entities already gone.
func (w *World) enqueueCascadeDestroys(target EntityId) {
	casc, ok := w.registry.lookup(cascadeType)
	if !ok {
		return
	}
	idx := target.Index()
	if idx > maxPairTarget {
		return
	}
	tgt := uint32(idx)
	for _, a := range w.archetypes {
		if len(a.entities) == 0 {
			continue
		}
		for _, pid := range a.signature {
			if !IsPair(pid) || PairTarget(pid) != tgt {
				continue
			}
			if !w.hasRelationTrait(PairRelation(pid), casc) {
				continue
			}
			for _, e := range a.entities {
				w.queue.enqueue(deferredOp{kind: opDestroyEntity, entity: e})
			}
			break
		}
	}
}
