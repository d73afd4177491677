package ecs

import (
	"slices"
	"sort"
)

// ArchetypeId is the FNV-1a hash of an archetype's sorted signature.
type ArchetypeId uint32

const (
	fnvOffset32 = uint32(2166136261)
	fnvPrime32  = uint32(16777619)

	fnvOffset64 = uint64(14695981039346656037)
	fnvPrime64  = uint64(1099511628211)
)

// tagColumn marks signature entries that carry no column.
const tagColumn = int16(-1)

// newColumn marks transition-map slots with no source column; the
// destination row is zero-initialized instead of copied.
const newColumn = int16(-1)

// Archetype groups every entity holding exactly the same set of component
// kinds. Component data lives in parallel columns indexed by row; the entity
// list defines the row numbering. Entities are appended on insert, and a
// removal moves the last row into the hole.
type Archetype struct {
	id        ArchetypeId
	signature []ComponentId // strictly sorted, no duplicates
	columns   []column
	// columnIndices maps a signature position to its column, or tagColumn
	// for zero-sized kinds.
	columnIndices []int16
	entities      []EntityId

	// Transition edges, created lazily on first use. Each edge knows, for
	// every column of its target, which source column to copy from.
	addEdges    map[ComponentId]*archetypeEdge
	removeEdges map[ComponentId]*archetypeEdge
}

type archetypeEdge struct {
	target    *Archetype
	columnMap []int16 // per target column: source column index or newColumn
}

// hashSignature computes the canonical ArchetypeId for a sorted signature.
func hashSignature(signature []ComponentId) ArchetypeId {
	h := fnvOffset32
	for _, cid := range signature {
		h ^= uint32(cid)
		h *= fnvPrime32
		h ^= uint32(cid) >> 16
		h *= fnvPrime32
	}
	return ArchetypeId(h)
}

func newArchetype(signature []ComponentId, reg *componentRegistry) *Archetype {
	a := &Archetype{
		id:            hashSignature(signature),
		signature:     signature,
		columnIndices: make([]int16, len(signature)),
		addEdges:      make(map[ComponentId]*archetypeEdge),
		removeEdges:   make(map[ComponentId]*archetypeEdge),
	}
	for i, cid := range signature {
		info, ok := reg.info(cid)
		if !ok || info.size == 0 {
			a.columnIndices[i] = tagColumn
			continue
		}
		a.columnIndices[i] = int16(len(a.columns))
		a.columns = append(a.columns, column{elemSize: int(info.size)})
	}
	return a
}

// Id returns the archetype's signature hash.
func (a *Archetype) Id() ArchetypeId {
	return a.id
}

// Signature returns the archetype's sorted component set. The slice is
// owned by the archetype and must not be mutated.
func (a *Archetype) Signature() []ComponentId {
	return a.signature
}

// Entities returns the archetype's entity list in row order. The slice is
// owned by the archetype and must not be mutated.
func (a *Archetype) Entities() []EntityId {
	return a.entities
}

// Len reports the number of entities stored in the archetype.
func (a *Archetype) Len() int {
	return len(a.entities)
}

// Contains reports whether the signature holds the given ComponentId.
func (a *Archetype) Contains(cid ComponentId) bool {
	_, ok := a.findComponent(cid)
	return ok
}

// findComponent binary-searches the sorted signature for cid and returns
// its position.
func (a *Archetype) findComponent(cid ComponentId) (int, bool) {
	return slices.BinarySearch(a.signature, cid)
}

// columnFor returns the column backing cid, or nil for tags and kinds the
// archetype does not hold.
func (a *Archetype) columnFor(cid ComponentId) *column {
	pos, ok := a.findComponent(cid)
	if !ok {
		return nil
	}
	ci := a.columnIndices[pos]
	if ci == tagColumn {
		return nil
	}
	return &a.columns[ci]
}

// findPairWithRelation returns the first pair ID in the signature whose
// relation field matches. Pairs with one relation form a contiguous bucket
// above all plain IDs, so the scan starts at the bucket's lower bound and
// stops as soon as it passes the upper one.
func (a *Archetype) findPairWithRelation(relation uint32) (ComponentId, bool) {
	lo, hi := pairBucket(relation)
	pos := sort.Search(len(a.signature), func(i int) bool { return a.signature[i] >= lo })
	if pos < len(a.signature) && a.signature[pos] <= hi {
		return a.signature[pos], true
	}
	return 0, false
}

// pairsWithRelation appends every pair ID in the relation's bucket to dst.
func (a *Archetype) pairsWithRelation(relation uint32, dst []ComponentId) []ComponentId {
	lo, hi := pairBucket(relation)
	pos := sort.Search(len(a.signature), func(i int) bool { return a.signature[i] >= lo })
	for ; pos < len(a.signature); pos++ {
		id := a.signature[pos]
		if id > hi {
			break
		}
		dst = append(dst, id)
	}
	return dst
}

// pushEntity appends an entity with zeroed component data and returns its
// row.
func (a *Archetype) pushEntity(e EntityId) int {
	row := len(a.entities)
	a.entities = append(a.entities, e)
	for i := range a.columns {
		a.columns[i].extend()
	}
	return row
}

// swapRemove removes the entity at row, moving the last row into the hole.
// It returns the entity that was moved there (0 when the removed row was
// last) so the caller can update its record.
func (a *Archetype) swapRemove(row int) EntityId {
	last := len(a.entities) - 1
	var moved EntityId
	if row != last {
		moved = a.entities[last]
		a.entities[row] = moved
	}
	a.entities = a.entities[:last]
	rows := last + 1
	for i := range a.columns {
		a.columns[i].swapRemove(row, rows)
	}
	return moved
}

// buildColumnMap precomputes, for every column of to, the source column in
// from (or newColumn when the component is newly introduced).
func buildColumnMap(from, to *Archetype) []int16 {
	cm := make([]int16, len(to.columns))
	for i := range cm {
		cm[i] = newColumn
	}
	for pos, cid := range to.signature {
		ci := to.columnIndices[pos]
		if ci == tagColumn {
			continue
		}
		fromPos, ok := from.findComponent(cid)
		if !ok {
			continue
		}
		if fc := from.columnIndices[fromPos]; fc != tagColumn {
			cm[ci] = fc
		}
	}
	return cm
}

// insertSorted returns a new signature with cid added in sort position.
// The input must not already contain cid.
func insertSorted(signature []ComponentId, cid ComponentId) []ComponentId {
	pos, _ := slices.BinarySearch(signature, cid)
	out := make([]ComponentId, 0, len(signature)+1)
	out = append(out, signature[:pos]...)
	out = append(out, cid)
	out = append(out, signature[pos:]...)
	return out
}

// removeSorted returns a new signature with cid removed.
func removeSorted(signature []ComponentId, cid ComponentId) []ComponentId {
	pos, ok := slices.BinarySearch(signature, cid)
	if !ok {
		return slices.Clone(signature)
	}
	out := make([]ComponentId, 0, len(signature)-1)
	out = append(out, signature[:pos]...)
	out = append(out, signature[pos+1:]...)
	return out
}
