package ecs

import (
	"reflect"
	"sync/atomic"
)

// Query variable slots. A query exposes MaxQueryBindings numbered slots that
// wildcard pairs can bind their matched target into.
const (
	// MaxQueryBindings is the number of variable slots per query.
	MaxQueryBindings = 8

	// VarThis is the implicit source of a term: the entity being iterated.
	VarThis = uint8(254)
	// VarNone marks a term that captures nothing.
	VarNone = uint8(255)
)

// encodedTermTableSize bounds the per-world term arena used while a query
// is being built.
const encodedTermTableSize = 65536

type termKind uint8

const (
	termComponent termKind = iota
	termPair
	termGroup
)

// GroupOp selects how a group combines its sub-terms.
type GroupOp uint8

const (
	// OpAll matches when every sub-term holds.
	OpAll GroupOp = iota
	// OpAny matches when at least one sub-term holds.
	OpAny
	// OpNone matches when no sub-term holds.
	OpNone
)

type targetKind uint8

const (
	targetType targetKind = iota
	targetEntity
	targetWildcard
	targetAny
	targetVar
)

// TargetSpec designates the target half of a pair term.
type TargetSpec struct {
	kind   targetKind
	typ    reflect.Type
	entity EntityId
	slot   uint8
}

// Wildcard matches any pair target without binding it.
var Wildcard = TargetSpec{kind: targetWildcard}

// AnyTarget matches any pair target without binding it; queries resolve,
// match and key it exactly as Wildcard.
var AnyTarget = TargetSpec{kind: targetAny}

// Var matches any pair target and binds the match to the given variable
// slot for retrieval from the query iterator.
func Var(slot uint8) TargetSpec {
	if slot >= MaxQueryBindings {
		panic("capture slot out of range")
	}
	return TargetSpec{kind: targetVar, slot: slot}
}

// Target designates a component type as the pair target.
func Target[T any]() TargetSpec {
	return TargetSpec{kind: targetType, typ: reflect.TypeFor[T]()}
}

// TargetEntity designates a concrete entity as the pair target.
func TargetEntity(e EntityId) TargetSpec {
	return TargetSpec{kind: targetEntity, entity: e}
}

// Term is one declarative query predicate. Terms compose through All/Any/
// None groups; a term list passed to a query is implicitly conjoined.
type Term struct {
	kind      termKind
	typ       reflect.Type // component type, or relation type for pairs
	relEntity EntityId     // entity-valued relation when typ is nil
	target    TargetSpec
	op        GroupOp
	sub       []Term
	negate    bool
	cascade   bool
	source    uint8
	captureTo uint8
}

// C builds a plain component term.
func C[T any]() Term {
	return Term{kind: termComponent, typ: reflect.TypeFor[T](), source: VarThis, captureTo: VarNone}
}

// Pair builds a pair term on a type-valued relation.
func Pair[R any](target TargetSpec) Term {
	t := Term{kind: termPair, typ: reflect.TypeFor[R](), target: target, source: VarThis, captureTo: VarNone}
	if target.kind == targetVar {
		t.captureTo = target.slot
	}
	return t
}

// EntityPair builds a pair term on an entity-valued relation.
func EntityPair(relation EntityId, target TargetSpec) Term {
	t := Term{kind: termPair, relEntity: relation, target: target, source: VarThis, captureTo: VarNone}
	if target.kind == targetVar {
		t.captureTo = target.slot
	}
	return t
}

// Not negates a term.
func Not(t Term) Term {
	t.negate = !t.negate
	return t
}

// All groups terms conjunctively.
func All(terms ...Term) Term {
	return Term{kind: termGroup, op: OpAll, sub: terms, source: VarThis, captureTo: VarNone}
}

// And is an alias for All.
func And(terms ...Term) Term { return All(terms...) }

// Or groups terms disjunctively: at least one sub-term must hold.
func Or(terms ...Term) Term {
	return Term{kind: termGroup, op: OpAny, sub: terms, source: VarThis, captureTo: VarNone}
}

// Some is an alias for Or.
func Some(terms ...Term) Term { return Or(terms...) }

// None groups terms so that none of them may hold.
func None(terms ...Term) Term {
	return Term{kind: termGroup, op: OpNone, sub: terms, source: VarThis, captureTo: VarNone}
}

// Hierarchy builds a cascade term: a wildcard pair on relation R that makes
// the query iterate in non-decreasing depth order along R. At most one
// cascade term governs a query; later ones are dropped.
func Hierarchy[R any]() Term {
	t := Pair[R](Wildcard)
	t.cascade = true
	return t
}

// Capture binds the matched target of a wildcard pair term to a variable
// slot.
func Capture(slot uint8, t Term) Term {
	if slot >= MaxQueryBindings {
		panic("capture slot out of range")
	}
	t.captureTo = slot
	return t
}

// On records a source variable on a term. The default is VarThis, the
// iterated entity. Query matching evaluates every term against the
// iterated entity, whatever source the term records.
func On(source uint8, t Term) Term {
	t.source = source
	return t
}

// termArena bump-allocates term records while a query is being built. The
// cursor is atomic so independent worlds on independent goroutines can
// build term lists without a lock; the arena itself belongs to one world.
type termArena struct {
	terms  []Term
	cursor atomic.Uint32
}

func newTermArena() *termArena {
	return &termArena{terms: make([]Term, encodedTermTableSize)}
}

func (a *termArena) reset() {
	a.cursor.Store(0)
}

func (a *termArena) alloc(t Term) *Term {
	i := a.cursor.Add(1) - 1
	if int(i) >= len(a.terms) {
		panic("encoded term table exhausted")
	}
	a.terms[i] = t
	return &a.terms[i]
}
