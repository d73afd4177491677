package ecs

import (
	"reflect"
	"unsafe"
)

// Pair operations come in the four relation×target shapes the encoding
// supports: the relation is a component type or an entity, and the target
// is an entity or a component type. Data-carrying variants exist only for
// type-valued relations; a pair whose relation is an entity never stores a
// payload.

// pairIdEntity resolves the pair ID for a type-valued relation and an
// entity target, registering the pair kind on first use.
func pairIdEntity[R any](w *World, target EntityId) ComponentId {
	rel := w.relationOrdinal(RegisterComponent[R](w))
	idx := target.Index()
	if idx > maxPairTarget {
		panic("pair encoding overflow (target entity index)")
	}
	pid := MakePairId(rel, uint32(idx))
	w.registry.registerPair(pid, reflect.TypeFor[R]())
	return pid
}

// pairIdType resolves the pair ID for a type-valued relation and a
// type-valued target.
func pairIdType[R, T any](w *World) ComponentId {
	rel := w.relationOrdinal(RegisterComponent[R](w))
	tgt := uint32(RegisterComponent[T](w))
	if tgt > maxPairTarget {
		panic("pair encoding overflow (target ordinal)")
	}
	pid := MakePairId(rel, tgt)
	w.registry.registerPair(pid, reflect.TypeFor[R]())
	return pid
}

// pairIdEntityRel resolves the pair ID for an entity-valued relation. The
// pair carries no data regardless of target.
func (w *World) pairIdEntityRel(relation EntityId, target uint32) ComponentId {
	idx := relation.Index()
	if idx > maxPairRelation {
		panic("pair encoding overflow (relation entity index)")
	}
	pid := MakePairId(uint32(idx), target)
	w.registry.registerPair(pid, nil)
	return pid
}

// AddPair attaches the pair (R, target). A newly attached pair starts with
// a zeroed payload; re-adding a pair the entity holds leaves its payload
// unchanged.
func AddPair[R any](w *World, e, target EntityId) {
	w.addComponentId(e, pairIdEntity[R](w, target), nil, 0)
}

// AddPairValue attaches the pair (R, target) carrying a value of the
// relation's backing type.
func AddPairValue[R any](w *World, e, target EntityId, value R) {
	w.addComponentId(e, pairIdEntity[R](w, target), unsafe.Pointer(&value), int(unsafe.Sizeof(value)))
}

// AddTypePair attaches the pair (R, T) between two component types.
func AddTypePair[R, T any](w *World, e EntityId) {
	w.addComponentId(e, pairIdType[R, T](w), nil, 0)
}

// AddTypePairValue attaches the pair (R, T) carrying a relation value.
func AddTypePairValue[R, T any](w *World, e EntityId, value R) {
	w.addComponentId(e, pairIdType[R, T](w), unsafe.Pointer(&value), int(unsafe.Sizeof(value)))
}

// AddEntityPair attaches a pair whose relation and target are both
// entities.
func AddEntityPair(w *World, e, relation, target EntityId) {
	idx := target.Index()
	if idx > maxPairTarget {
		panic("pair encoding overflow (target entity index)")
	}
	w.addComponentId(e, w.pairIdEntityRel(relation, uint32(idx)), nil, 0)
}

// AddEntityTypePair attaches a pair with an entity relation and a type
// target.
func AddEntityTypePair[T any](w *World, e, relation EntityId) {
	tgt := uint32(RegisterComponent[T](w))
	if tgt > maxPairTarget {
		panic("pair encoding overflow (target ordinal)")
	}
	w.addComponentId(e, w.pairIdEntityRel(relation, tgt), nil, 0)
}

// HasPair reports whether the entity holds the pair (R, target).
func HasPair[R any](w *World, e, target EntityId) bool {
	if !w.index.alive(e) {
		return false
	}
	rec := &w.records[e.Index()]
	return rec.arch != nil && rec.arch.Contains(pairIdEntity[R](w, target))
}

// HasTypePair reports whether the entity holds the pair (R, T).
func HasTypePair[R, T any](w *World, e EntityId) bool {
	if !w.index.alive(e) {
		return false
	}
	rec := &w.records[e.Index()]
	return rec.arch != nil && rec.arch.Contains(pairIdType[R, T](w))
}

// HasEntityPair reports whether the entity holds a pair of two entities.
func HasEntityPair(w *World, e, relation, target EntityId) bool {
	if !w.index.alive(e) {
		return false
	}
	idx := target.Index()
	if idx > maxPairTarget {
		return false
	}
	rec := &w.records[e.Index()]
	return rec.arch != nil && rec.arch.Contains(w.pairIdEntityRel(relation, uint32(idx)))
}

// GetPair returns a pointer to the payload of the pair (R, target), nil
// when the pair is absent or the relation is a tag.
func GetPair[R any](w *World, e, target EntityId) *R {
	return (*R)(w.componentPtr(e, pairIdEntity[R](w, target)))
}

// GetTypePair returns a pointer to the payload of the pair (R, T).
func GetTypePair[R, T any](w *World, e EntityId) *R {
	return (*R)(w.componentPtr(e, pairIdType[R, T](w)))
}

// HasEntityTypePair reports whether the entity holds a pair with an entity
// relation and a type target.
func HasEntityTypePair[T any](w *World, e, relation EntityId) bool {
	if !w.index.alive(e) {
		return false
	}
	tgt := uint32(RegisterComponent[T](w))
	if tgt > maxPairTarget {
		return false
	}
	rec := &w.records[e.Index()]
	return rec.arch != nil && rec.arch.Contains(w.pairIdEntityRel(relation, tgt))
}

// RemovePair detaches the pair (R, target).
func RemovePair[R any](w *World, e, target EntityId) {
	w.removeComponentId(e, pairIdEntity[R](w, target))
}

// RemoveTypePair detaches the pair (R, T).
func RemoveTypePair[R, T any](w *World, e EntityId) {
	w.removeComponentId(e, pairIdType[R, T](w))
}

// RemoveEntityPair detaches a pair of two entities.
func RemoveEntityPair(w *World, e, relation, target EntityId) {
	idx := target.Index()
	if idx > maxPairTarget {
		return
	}
	w.removeComponentId(e, w.pairIdEntityRel(relation, uint32(idx)))
}

// RemoveEntityTypePair detaches a pair with an entity relation and a type
// target.
func RemoveEntityTypePair[T any](w *World, e, relation EntityId) {
	tgt := uint32(RegisterComponent[T](w))
	if tgt > maxPairTarget {
		return
	}
	w.removeComponentId(e, w.pairIdEntityRel(relation, tgt))
}

// GetRelationTargets returns the entities the given entity is related to
// through R, in signature order. Targets are resolved by entity index: an
// index with no live entity is skipped, and a recycled index yields its
// current occupant.
func GetRelationTargets[R any](w *World, e EntityId) []EntityId {
	rel := w.relationOrdinal(RegisterComponent[R](w))
	return w.relationTargets(e, rel)
}

// GetEntityRelationTargets is GetRelationTargets for an entity-valued
// relation.
func GetEntityRelationTargets(w *World, e, relation EntityId) []EntityId {
	idx := relation.Index()
	if idx > maxPairRelation {
		return nil
	}
	return w.relationTargets(e, uint32(idx))
}

func (w *World) relationTargets(e EntityId, relation uint32) []EntityId {
	if !w.index.alive(e) {
		return nil
	}
	rec := &w.records[e.Index()]
	if rec.arch == nil {
		return nil
	}
	pairs := rec.arch.pairsWithRelation(relation, nil)
	if len(pairs) == 0 {
		return nil
	}
	out := make([]EntityId, 0, len(pairs))
	for _, pid := range pairs {
		if target, ok := w.index.entityAt(uint64(PairTarget(pid))); ok {
			out = append(out, target)
		}
	}
	return out
}
