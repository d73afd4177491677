package ecs

// EntityId encodes a 48-bit entity index and a 16-bit generation counter.
// The generation is bumped every time an index is recycled, so identifiers
// held across a destroy fail the liveness check instead of aliasing the
// new occupant of the slot.
type EntityId uint64

const (
	entityIndexBits = 48
	entityIndexMask = (uint64(1) << entityIndexBits) - 1

	// Index 0 is reserved and never alive; the first allocatable index is 1.
	reservedEntityIndex = 0
)

// NewEntityId creates an EntityId from an entity index and a generation.
func NewEntityId(index uint64, generation uint16) EntityId {
	return EntityId(index&entityIndexMask | uint64(generation)<<entityIndexBits)
}

// Index extracts the entity index from the ID.
func (e EntityId) Index() uint64 {
	return uint64(e) & entityIndexMask
}

// Generation extracts the generation counter from the ID.
func (e EntityId) Generation() uint16 {
	return uint16(uint64(e) >> entityIndexBits)
}

// entityRecord tracks where an entity currently lives.
// A row of -1 denotes a dead entity.
type entityRecord struct {
	arch *Archetype
	row  int32
}

const deadRow = int32(-1)
