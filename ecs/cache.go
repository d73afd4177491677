package ecs

import (
	"reflect"

	"github.com/kamstrup/intmap"
)

// cachedQuery is one query cache entry. An entry is valid while its
// generation matches the world's archetype generation; any archetype
// creation or removal invalidates it, and the next lookup rescans. The
// entry keeps the context it was built from; a lookup whose context hashes
// to the same key but differs replaces the entry.
type cachedQuery struct {
	ctx         *queryContext
	archetypes  []*Archetype
	generation  uint32
	captures    []captureInfo
	required    []ComponentId
	cascadeRel  uint32
	depthGroups [][]*Archetype
	maxDepth    int
}

type queryCache struct {
	entries *intmap.Map[uint64, *cachedQuery]
}

func newQueryCache() queryCache {
	return queryCache{entries: intmap.New[uint64, *cachedQuery](32)}
}

// lookupQuery resolves a term list and returns its cache entry, rebuilding
// the matched archetype list when the entry is stale or new.
func (w *World) lookupQuery(terms []Term) *cachedQuery {
	ctx := w.resolveTerms(terms)
	key := ctx.hash()
	cq, ok := w.cache.entries.Get(key)
	if !ok || !reflect.DeepEqual(cq.ctx, ctx) {
		// New key, or a different query whose context hashes to this key.
		cq = &cachedQuery{}
		w.cache.entries.Put(key, cq)
	}
	if cq.generation != w.archetypeGeneration {
		w.rebuildQuery(cq, ctx)
	}
	return cq
}

func (w *World) rebuildQuery(cq *cachedQuery, ctx *queryContext) {
	cq.archetypes = cq.archetypes[:0]
	cq.depthGroups = nil
	cq.maxDepth = 0
	for _, a := range w.archetypes {
		if archetypeMatches(a, ctx) {
			cq.archetypes = append(cq.archetypes, a)
		}
	}
	// The entry keeps the context for comparison on later lookups, and its
	// own copies of the captures and required list.
	cq.ctx = ctx
	cq.captures = append(cq.captures[:0], ctx.captures...)
	cq.required = append(cq.required[:0], ctx.required...)
	cq.cascadeRel = ctx.cascadeRel
	if cq.cascadeRel != 0 {
		w.buildDepthGroups(cq)
	}
	cq.generation = w.archetypeGeneration
}

// buildDepthGroups buckets the matched archetypes by cascade depth so that
// iteration visits parents before children. Depths are memoized per entity
// index for the duration of the build; traversal past the configured cap is
// treated as depth 0, which keeps relation cycles from hanging the build.
func (w *World) buildDepthGroups(cq *cachedQuery) {
	memo := intmap.New[uint64, int32](64)
	for _, a := range cq.archetypes {
		depth := w.archetypeDepth(a, cq.cascadeRel, memo, 0)
		if depth > cq.maxDepth {
			cq.maxDepth = depth
		}
		for len(cq.depthGroups) <= depth {
			cq.depthGroups = append(cq.depthGroups, nil)
		}
		cq.depthGroups[depth] = append(cq.depthGroups[depth], a)
	}
}

// archetypeDepth is the minimum cascade depth of the archetype's entities:
// zero without a pair on the relation, otherwise one more than the depth of
// the nearest parent.
func (w *World) archetypeDepth(a *Archetype, relation uint32, memo *intmap.Map[uint64, int32], guard int) int {
	if guard >= w.opts.CascadeDepthCap {
		return 0
	}
	var scratch [4]ComponentId
	pairs := a.pairsWithRelation(relation, scratch[:0])
	if len(pairs) == 0 {
		return 0
	}
	depth := -1
	for _, pid := range pairs {
		d := 1 + w.entityDepth(uint64(PairTarget(pid)), relation, memo, guard+1)
		if depth == -1 || d < depth {
			depth = d
		}
	}
	return depth
}

func (w *World) entityDepth(index uint64, relation uint32, memo *intmap.Map[uint64, int32], guard int) int {
	if guard >= w.opts.CascadeDepthCap {
		return 0
	}
	if d, ok := memo.Get(index); ok {
		return int(d)
	}
	e, ok := w.index.entityAt(index)
	if !ok {
		return 0
	}
	rec := &w.records[e.Index()]
	if rec.row == deadRow || rec.arch == nil {
		return 0
	}
	d := w.archetypeDepth(rec.arch, relation, memo, guard)
	memo.Put(index, int32(d))
	return d
}

// ClearQueryCache drops every cached query.
func (w *World) ClearQueryCache() {
	w.cache.entries.Clear()
}
