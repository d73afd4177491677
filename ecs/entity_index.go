package ecs

// entityIndex is a sparse-dense set of entity identifiers. The dense array
// holds one ID for every index ever allocated: the prefix [0, aliveCount)
// is the alive set,
// and the suffix holds retired IDs (with their generation already bumped)
// waiting to be recycled. The sparse array maps an entity index to its
// position in dense.
type entityIndex struct {
	dense      []EntityId
	sparse     []uint32
	aliveCount int
	maxId      uint64
}

func newEntityIndex(capacity int) entityIndex {
	return entityIndex{
		dense:  make([]EntityId, 0, capacity),
		sparse: make([]uint32, 1, capacity+1), // slot 0 reserved
	}
}

// create returns a live EntityId, recycling a retired index when one is
// available. Amortized O(1).
func (idx *entityIndex) create() EntityId {
	if idx.aliveCount < len(idx.dense) {
		// The dead suffix starts right at aliveCount and already carries the
		// bumped generation from its destroy.
		e := idx.dense[idx.aliveCount]
		idx.sparse[e.Index()] = uint32(idx.aliveCount)
		idx.aliveCount++
		return e
	}

	idx.maxId++
	e := NewEntityId(idx.maxId, 0)
	idx.dense = append(idx.dense, e)
	for uint64(len(idx.sparse)) <= idx.maxId {
		idx.sparse = append(idx.sparse, 0)
	}
	idx.sparse[idx.maxId] = uint32(len(idx.dense) - 1)
	idx.aliveCount++
	return e
}

// destroy retires an entity. Idempotent on dead or stale IDs.
func (idx *entityIndex) destroy(e EntityId) {
	if !idx.alive(e) {
		return
	}
	pos := idx.sparse[e.Index()]
	last := uint32(idx.aliveCount - 1)

	lastId := idx.dense[last]
	idx.dense[pos] = lastId
	idx.sparse[lastId.Index()] = pos

	// Park the dying ID at the end of the alive prefix with its generation
	// bumped, ready for the next recycle.
	idx.dense[last] = NewEntityId(e.Index(), e.Generation()+1)
	idx.sparse[e.Index()] = last
	idx.aliveCount--
}

// alive reports whether e is a live identifier (index present in the alive
// prefix with a matching generation). O(1).
func (idx *entityIndex) alive(e EntityId) bool {
	i := e.Index()
	if i == reservedEntityIndex || i > idx.maxId {
		return false
	}
	pos := idx.sparse[i]
	return int(pos) < idx.aliveCount && idx.dense[pos] == e
}

// entityAt returns the live entity occupying the given index, if any.
func (idx *entityIndex) entityAt(index uint64) (EntityId, bool) {
	if index == reservedEntityIndex || index > idx.maxId {
		return 0, false
	}
	pos := idx.sparse[index]
	if int(pos) >= idx.aliveCount {
		return 0, false
	}
	e := idx.dense[pos]
	if e.Index() != index {
		return 0, false
	}
	return e, true
}
