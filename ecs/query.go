package ecs

import "slices"

// wildcardTerm is a resolved pair predicate with an unspecified target.
type wildcardTerm struct {
	relation uint32
	negate   bool
}

// captureInfo binds the matched target of a wildcard pair to a variable
// slot.
type captureInfo struct {
	relation uint32
	slot     uint8
}

type resolvedKind uint8

const (
	rkExact resolvedKind = iota
	rkWildcard
	rkGroup
)

// resolvedTerm is a term reduced to ComponentIds, kept structurally for the
// recursive any-of matcher.
type resolvedTerm struct {
	kind     resolvedKind
	cid      ComponentId
	relation uint32
	negate   bool
	op       GroupOp
	sub      []resolvedTerm
}

// queryContext is the resolved form of a term list.
type queryContext struct {
	required   []ComponentId
	excluded   []ComponentId
	wildcards  []wildcardTerm
	anyOf      [][]resolvedTerm
	captures   []captureInfo
	cascadeRel uint32
}

// resolveTerms reduces a term list to a queryContext. Component kinds and
// exact pairs seen for the first time are registered on the way through;
// an unseen kind simply matches no archetype.
func (w *World) resolveTerms(terms []Term) *queryContext {
	w.terms.reset()
	ctx := &queryContext{}
	for i := range terms {
		w.resolveInto(ctx, terms[i])
	}
	return ctx
}

func (w *World) resolveInto(ctx *queryContext, t Term) {
	switch t.kind {
	case termComponent:
		cid := w.registry.register(t.typ)
		if t.negate {
			ctx.excluded = append(ctx.excluded, cid)
		} else {
			ctx.required = append(ctx.required, cid)
		}

	case termPair:
		rel := w.relationField(t)
		switch t.target.kind {
		case targetType, targetEntity:
			pid := w.registerPairTerm(t, rel)
			if t.negate {
				ctx.excluded = append(ctx.excluded, pid)
			} else {
				ctx.required = append(ctx.required, pid)
			}
		default:
			if t.cascade && !t.negate {
				// Only the first cascade term governs the query; later ones
				// are dropped. A cascade term orders iteration by depth but
				// does not constrain matching: entities without the pair
				// iterate at depth 0.
				if ctx.cascadeRel == 0 {
					ctx.cascadeRel = rel
				}
			} else {
				ctx.wildcards = append(ctx.wildcards, wildcardTerm{relation: rel, negate: t.negate})
			}
			if t.captureTo != VarNone {
				ctx.captures = append(ctx.captures, captureInfo{relation: rel, slot: t.captureTo})
			}
		}

	case termGroup:
		if t.negate {
			// De Morgan: a negated group resolves through its dual.
			switch t.op {
			case OpAll:
				// not(A ∧ B) holds when any negated sub-term holds, so it
				// becomes an any-of group; flat-resolving the negations
				// would conjoin them instead.
				group := make([]resolvedTerm, 0, len(t.sub))
				for _, sub := range t.sub {
					group = append(group, w.resolveSub(Not(sub)))
				}
				ctx.anyOf = append(ctx.anyOf, group)
			case OpNone:
				// not(none(A, B)) holds when any sub-term holds.
				group := make([]resolvedTerm, 0, len(t.sub))
				for _, sub := range t.sub {
					group = append(group, w.resolveSub(sub))
				}
				ctx.anyOf = append(ctx.anyOf, group)
			case OpAny:
				// not(A ∨ B) is the conjunction of the negations.
				for _, sub := range t.sub {
					w.resolveInto(ctx, Not(sub))
				}
			}
			return
		}
		switch t.op {
		case OpAll:
			for _, sub := range t.sub {
				w.resolveInto(ctx, sub)
			}
		case OpAny:
			group := make([]resolvedTerm, 0, len(t.sub))
			for _, sub := range t.sub {
				group = append(group, w.resolveSub(sub))
			}
			ctx.anyOf = append(ctx.anyOf, group)
		case OpNone:
			for _, sub := range t.sub {
				inv := w.terms.alloc(Not(sub))
				w.resolveInto(ctx, *inv)
			}
		}
	}
}

// resolveSub reduces a sub-term of an any-of group, keeping the structure
// for recursive matching.
func (w *World) resolveSub(t Term) resolvedTerm {
	switch t.kind {
	case termComponent:
		return resolvedTerm{kind: rkExact, cid: w.registry.register(t.typ), negate: t.negate}
	case termPair:
		rel := w.relationField(t)
		switch t.target.kind {
		case targetType, targetEntity:
			return resolvedTerm{kind: rkExact, cid: w.registerPairTerm(t, rel), negate: t.negate}
		default:
			return resolvedTerm{kind: rkWildcard, relation: rel, negate: t.negate}
		}
	default:
		sub := make([]resolvedTerm, 0, len(t.sub))
		for _, s := range t.sub {
			sub = append(sub, w.resolveSub(s))
		}
		return resolvedTerm{kind: rkGroup, op: t.op, negate: t.negate, sub: sub}
	}
}

// relationField resolves a pair term's relation to its 15-bit field value.
func (w *World) relationField(t Term) uint32 {
	if t.typ != nil {
		return w.relationOrdinal(w.registry.register(t.typ))
	}
	idx := t.relEntity.Index()
	if idx > maxPairRelation {
		panic("pair encoding overflow (relation entity index)")
	}
	return uint32(idx)
}

func (w *World) relationOrdinal(cid ComponentId) uint32 {
	if uint32(cid) > maxPairRelation {
		panic("pair encoding overflow (relation ordinal)")
	}
	return uint32(cid)
}

// registerPairTerm resolves an exact pair term to a concrete pair ID,
// registering the pair kind when it is new.
func (w *World) registerPairTerm(t Term, rel uint32) ComponentId {
	var target uint32
	if t.target.kind == targetType {
		target = uint32(w.registry.register(t.target.typ))
	} else {
		idx := t.target.entity.Index()
		if idx > maxPairTarget {
			panic("pair encoding overflow (target entity index)")
		}
		target = uint32(idx)
	}
	pid := MakePairId(rel, target)
	w.registry.registerPair(pid, t.typ)
	return pid
}

// archetypeMatches decides whether an archetype satisfies a resolved query.
func archetypeMatches(a *Archetype, ctx *queryContext) bool {
	for _, cid := range ctx.required {
		if !a.Contains(cid) {
			return false
		}
	}
	for _, cid := range ctx.excluded {
		if a.Contains(cid) {
			return false
		}
	}
	for _, wt := range ctx.wildcards {
		if _, ok := a.findPairWithRelation(wt.relation); ok == wt.negate {
			return false
		}
	}
	for _, group := range ctx.anyOf {
		satisfied := false
		for i := range group {
			if matchResolved(a, &group[i]) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}

func matchResolved(a *Archetype, rt *resolvedTerm) bool {
	var hit bool
	switch rt.kind {
	case rkExact:
		hit = a.Contains(rt.cid)
	case rkWildcard:
		_, hit = a.findPairWithRelation(rt.relation)
	case rkGroup:
		switch rt.op {
		case OpAll:
			hit = true
			for i := range rt.sub {
				if !matchResolved(a, &rt.sub[i]) {
					hit = false
					break
				}
			}
		case OpAny:
			for i := range rt.sub {
				if matchResolved(a, &rt.sub[i]) {
					hit = true
					break
				}
			}
		case OpNone:
			hit = true
			for i := range rt.sub {
				if matchResolved(a, &rt.sub[i]) {
					hit = false
					break
				}
			}
		}
	}
	if rt.negate {
		return !hit
	}
	return hit
}

const hashSeparator = uint64(0xFF)

// hash produces the cache key for a context: FNV-1a over the sorted
// required and excluded sets, the wildcard entries, the any-of group sizes
// as a cheap discriminator, the cascade relation and the captures.
// Collisions do not break correctness; the cache compares the stored
// context on lookup and rebuilds the entry when it differs.
func (ctx *queryContext) hash() uint64 {
	h := fnvOffset64
	mix := func(v uint64) {
		h ^= v
		h *= fnvPrime64
	}
	for _, cid := range sortedIds(ctx.required) {
		mix(uint64(cid))
	}
	mix(hashSeparator)
	for _, cid := range sortedIds(ctx.excluded) {
		mix(uint64(cid))
	}
	mix(hashSeparator)
	for _, wt := range ctx.wildcards {
		mix(uint64(wt.relation))
		if wt.negate {
			mix(1)
		} else {
			mix(0)
		}
	}
	mix(hashSeparator)
	for _, group := range ctx.anyOf {
		mix(uint64(len(group)))
	}
	mix(hashSeparator)
	mix(uint64(ctx.cascadeRel))
	for _, c := range ctx.captures {
		mix(uint64(c.relation))
		mix(uint64(c.slot))
	}
	return h
}

func sortedIds(ids []ComponentId) []ComponentId {
	if slices.IsSorted(ids) {
		return ids
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}
