package ecs

import (
	"fmt"
	"unsafe"
)

// Pair ComponentIds pack a relation and a target into a single identifier:
//
//	[pair-flag:1 | relation:15 | target:16]
//
// The relation field holds either a component-kind ordinal or an entity
// index; the target field holds a component-kind ordinal or an entity index.
// Because the flag is the high bit, pair IDs sort above every plain ID in an
// archetype signature, and all pairs sharing a relation form one contiguous
// bucket.
const (
	pairFlag = ComponentId(1) << 31

	pairRelationBits = 15
	pairTargetBits   = 16

	maxPairRelation = (1 << pairRelationBits) - 1
	maxPairTarget   = (1 << pairTargetBits) - 1
)

// ptrAlign is the default alignment for pair columns.
const ptrAlign = uintptr(unsafe.Alignof(uintptr(0)))

// MakePairId encodes a relation and a target into a pair ComponentId.
// Panics with an encoding overflow when either field exceeds its capacity;
// the caller is handing us identifiers that cannot round-trip.
func MakePairId(relation, target uint32) ComponentId {
	if relation > maxPairRelation || target > maxPairTarget {
		panic(fmt.Sprintf("pair encoding overflow (relation %d, target %d)", relation, target))
	}
	return pairFlag | ComponentId(relation)<<pairTargetBits | ComponentId(target)
}

// PairRelation extracts the relation field from a pair ID.
func PairRelation(id ComponentId) uint32 {
	return uint32(id>>pairTargetBits) & maxPairRelation
}

// PairTarget extracts the target field from a pair ID.
func PairTarget(id ComponentId) uint32 {
	return uint32(id) & maxPairTarget
}

// IsPair reports whether the ID encodes a relation pair.
func IsPair(id ComponentId) bool {
	return id&pairFlag != 0
}

// pairBucket returns the inclusive ComponentId range covering every pair
// with the given relation.
func pairBucket(relation uint32) (lo, hi ComponentId) {
	lo = pairFlag | ComponentId(relation)<<pairTargetBits
	hi = lo | maxPairTarget
	return lo, hi
}
