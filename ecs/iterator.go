package ecs

import "iter"

// QueryFlag tunes query iteration.
type QueryFlag uint8

const (
	// IncludeDisabled yields entities even when one of the query's
	// required kinds is disabled on them.
	IncludeDisabled QueryFlag = 1 << 0
)

// Query returns the archetypes matching a term list, straight from the
// query cache. When a cascade term is present the archetypes come back in
// non-decreasing depth order. The result is valid until the next
// structural change; it does not open an iteration scope.
func (w *World) Query(terms ...Term) []*Archetype {
	return flattenQuery(w.lookupQuery(terms))
}

// QueryIter opens an entity-level iterator over the matching archetypes.
// Creating the iterator enters an iteration scope: structural mutation is
// deferred until the scope closes, which happens when Next returns false
// or Close is called (early exits must call Close exactly once).
func (w *World) QueryIter(terms ...Term) *QueryIter {
	return w.QueryIterFlags(0, terms...)
}

// QueryIterFlags is QueryIter with iteration flags.
func (w *World) QueryIterFlags(flags QueryFlag, terms ...Term) *QueryIter {
	w.enterIteration()
	cached := w.lookupQuery(terms)
	return &QueryIter{
		world:  w,
		cached: cached,
		flags:  flags,
		list:   flattenQuery(cached),
		row:    -1,
		arch:   nil,
	}
}

// WithQuery runs fn inside a bracketed iteration scope, closing the
// iterator on the way out even when fn exits early.
func (w *World) WithQuery(fn func(*QueryIter), terms ...Term) {
	it := w.QueryIter(terms...)
	defer it.Close()
	fn(it)
}

func flattenQuery(cq *cachedQuery) []*Archetype {
	if cq.cascadeRel == 0 {
		return cq.archetypes
	}
	out := make([]*Archetype, 0, len(cq.archetypes))
	for _, group := range cq.depthGroups {
		out = append(out, group...)
	}
	return out
}

// QueryIter walks the entities of every matched archetype. Reads during
// iteration see the snapshot state; mutations are deferred.
type QueryIter struct {
	world  *World
	cached *cachedQuery
	flags  QueryFlag

	list    []*Archetype
	archPos int
	row     int
	arch    *Archetype

	entity   EntityId
	bindings [MaxQueryBindings]EntityId
	closed   bool
}

// Next advances to the next result. It returns false when the iteration is
// exhausted, closing the scope.
func (it *QueryIter) Next() bool {
	if it.closed {
		return false
	}
	for {
		if it.arch != nil && it.row+1 < len(it.arch.entities) {
			it.row++
			e := it.arch.entities[it.row]
			if it.flags&IncludeDisabled == 0 && it.world.entityMasked(e, it.cached.required) {
				continue
			}
			it.entity = e
			return true
		}
		if it.archPos >= len(it.list) {
			it.Close()
			return false
		}
		it.arch = it.list[it.archPos]
		it.archPos++
		it.row = -1
		it.fillBindings()
	}
}

// Entity returns the current result's entity.
func (it *QueryIter) Entity() EntityId {
	return it.entity
}

// Archetype returns the current result's archetype.
func (it *QueryIter) Archetype() *Archetype {
	return it.arch
}

// Row returns the current result's row within its archetype.
func (it *QueryIter) Row() int {
	return it.row
}

// Binding returns the entity bound to a capture slot for the current
// archetype, 0 when the slot is unbound.
func (it *QueryIter) Binding(slot uint8) EntityId {
	if slot >= MaxQueryBindings {
		return 0
	}
	return it.bindings[slot]
}

// Close ends the iteration scope. Safe to call more than once; Next does
// it automatically on exhaustion.
func (it *QueryIter) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.world.exitIteration()
}

// fillBindings resolves capture slots against the current archetype. A
// bound slot holds the live entity occupying the matched target index, or
// the raw index when no such entity exists.
func (it *QueryIter) fillBindings() {
	for _, c := range it.cached.captures {
		pid, ok := it.arch.findPairWithRelation(c.relation)
		if !ok {
			it.bindings[c.slot] = 0
			continue
		}
		idx := uint64(PairTarget(pid))
		if e, live := it.world.index.entityAt(idx); live {
			it.bindings[c.slot] = e
		} else {
			it.bindings[c.slot] = EntityId(idx)
		}
	}
}

// Entities returns a range-func iterator over (entity, archetype row)
// results, closing the scope when the loop ends or breaks.
func (it *QueryIter) Entities() iter.Seq2[EntityId, int] {
	return func(yield func(EntityId, int) bool) {
		defer it.Close()
		for it.Next() {
			if !yield(it.entity, it.row) {
				return
			}
		}
	}
}
