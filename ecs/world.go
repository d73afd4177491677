package ecs

import (
	"fmt"
	"reflect"
	"slices"
	"unsafe"

	"github.com/kamstrup/intmap"
)

// WorldOptions configures a new World. Zero fields take their defaults.
type WorldOptions struct {
	// InitialCapacity pre-sizes the entity index and record table.
	InitialCapacity int
	// CascadeDepthCap bounds hierarchy traversal when building cascade
	// depth groups; nesting beyond the cap is treated as depth 0.
	CascadeDepthCap int
	// DisableAutoCleanup keeps empty archetypes alive after a flush.
	DisableAutoCleanup bool
}

// DefaultOptions are the options used by NewWorld.
var DefaultOptions = WorldOptions{
	InitialCapacity: 256,
	CascadeDepthCap: 1024,
}

// World owns every piece of ECS state: the component registry, the entity
// index and records, the archetype graph, the deferred operation queue, the
// observer list and the query cache. A World is single-threaded; distinct
// worlds are independent.
type World struct {
	registry *componentRegistry
	index    entityIndex
	records  []entityRecord

	archetypes   []*Archetype
	archetypeIds *intmap.Map[uint32, *Archetype]
	empty        *Archetype

	queue     operationQueue
	observers []*observer
	cache     queryCache
	terms     *termArena

	// typeEntities anchors relation traits for type-valued relations.
	typeEntities *intmap.Map[uint32, EntityId]
	// disabled masks ComponentIds from query iteration per entity index.
	disabled *intmap.Map[uint64, []ComponentId]

	nextObserverId      ObserverId
	archetypeGeneration uint32
	iterationDepth      int
	isFlushing          bool

	opts WorldOptions
}

// NewWorld creates a World with default options.
func NewWorld() *World {
	return NewWorldWithOptions(DefaultOptions)
}

// NewWorldWithOptions creates a World with the given options.
func NewWorldWithOptions(opts WorldOptions) *World {
	if opts.InitialCapacity <= 0 {
		opts.InitialCapacity = DefaultOptions.InitialCapacity
	}
	if opts.CascadeDepthCap <= 0 {
		opts.CascadeDepthCap = DefaultOptions.CascadeDepthCap
	}
	w := &World{
		registry:     newComponentRegistry(),
		index:        newEntityIndex(opts.InitialCapacity),
		records:      make([]entityRecord, 1, opts.InitialCapacity+1),
		archetypeIds: intmap.New[uint32, *Archetype](64),
		cache:        newQueryCache(),
		terms:        newTermArena(),
		typeEntities: intmap.New[uint32, EntityId](16),
		disabled:     intmap.New[uint64, []ComponentId](16),
		opts:         opts,
	}
	w.empty = w.archetypeFor(nil)
	return w
}

// Alive reports whether e is a live entity of this world.
func (w *World) Alive(e EntityId) bool {
	return w.index.alive(e)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return w.index.aliveCount
}

// EntityRow returns the entity's row within its archetype, -1 when dead.
func (w *World) EntityRow(e EntityId) int {
	if !w.index.alive(e) {
		return -1
	}
	return int(w.records[e.Index()].row)
}

// EntityArchetype returns the archetype a live entity belongs to.
func (w *World) EntityArchetype(e EntityId) *Archetype {
	if !w.index.alive(e) {
		return nil
	}
	return w.records[e.Index()].arch
}

// Archetypes returns the world's archetype list in creation order. The
// slice is owned by the world.
func (w *World) Archetypes() []*Archetype {
	return w.archetypes
}

// CreateEntity creates a live entity holding the given component values.
// With no components the entity lands in the empty archetype. During
// iteration the entity is created immediately but its components are
// applied through the deferred queue.
func (w *World) CreateEntity(components ...any) EntityId {
	e := w.index.create()
	w.ensureRecord(e.Index())

	if w.deferring() {
		w.placeInEmpty(e)
		w.dispatchTransition(nil, w.empty, e)
		for _, c := range components {
			typ, ptr := payloadOf(c)
			cid := w.registry.register(typ)
			w.enqueueAdd(e, cid, ptr, int(typ.Size()))
		}
		return e
	}

	if len(components) == 0 {
		w.placeInEmpty(e)
		w.dispatchTransition(nil, w.empty, e)
		w.maybeFlush()
		return e
	}

	cids := make([]ComponentId, len(components))
	ptrs := make([]unsafe.Pointer, len(components))
	for i, c := range components {
		typ, ptr := payloadOf(c)
		cids[i] = w.registry.register(typ)
		ptrs[i] = ptr
	}
	signature := slices.Clone(cids)
	slices.Sort(signature)
	signature = slices.Compact(signature)

	a := w.archetypeFor(signature)
	row := a.pushEntity(e)
	for i, cid := range cids {
		if col := a.columnFor(cid); col != nil {
			col.setCell(row, ptrs[i])
		}
	}
	rec := &w.records[e.Index()]
	rec.arch = a
	rec.row = int32(row)

	w.dispatchTransition(nil, a, e)
	w.maybeFlush()
	return e
}

// CreateEntities creates a batch of entities sharing one component layout.
func (w *World) CreateEntities(n int, components ...any) []EntityId {
	if n <= 0 {
		return nil
	}
	out := make([]EntityId, n)
	for i := range out {
		out[i] = w.CreateEntity(components...)
	}
	return out
}

// RemoveEntity destroys an entity. Dead or stale IDs are a no-op. During
// iteration the destroy is deferred; cascade relations may queue further
// destroys that drain in the same flush.
func (w *World) RemoveEntity(e EntityId) {
	if !w.index.alive(e) {
		return
	}
	if w.deferring() {
		w.queue.enqueue(deferredOp{kind: opDestroyEntity, entity: e})
		return
	}
	w.applyDestroy(e)
	w.maybeFlush()
}

// --- structural internals ---

func (w *World) ensureRecord(index uint64) {
	for uint64(len(w.records)) <= index {
		w.records = append(w.records, entityRecord{row: deadRow})
	}
}

func (w *World) placeInEmpty(e EntityId) {
	row := w.empty.pushEntity(e)
	rec := &w.records[e.Index()]
	rec.arch = w.empty
	rec.row = int32(row)
}

// archetypeFor returns the canonical archetype for a sorted signature,
// creating it when unseen. Creation bumps the archetype generation.
func (w *World) archetypeFor(signature []ComponentId) *Archetype {
	id := hashSignature(signature)
	if a, ok := w.archetypeIds.Get(uint32(id)); ok {
		if slices.Equal(a.signature, signature) {
			return a
		}
		// Hash collision; the map holds one winner, the rest are found by
		// scanning.
		for _, other := range w.archetypes {
			if slices.Equal(other.signature, signature) {
				return other
			}
		}
	}
	a := newArchetype(signature, w.registry)
	w.archetypeIds.Put(uint32(id), a)
	w.archetypes = append(w.archetypes, a)
	w.archetypeGeneration++
	return a
}

func (w *World) addEdgeFor(a *Archetype, cid ComponentId) *archetypeEdge {
	if edge, ok := a.addEdges[cid]; ok {
		return edge
	}
	target := w.archetypeFor(insertSorted(a.signature, cid))
	edge := &archetypeEdge{target: target, columnMap: buildColumnMap(a, target)}
	a.addEdges[cid] = edge
	if _, ok := target.removeEdges[cid]; !ok {
		target.removeEdges[cid] = &archetypeEdge{target: a, columnMap: buildColumnMap(target, a)}
	}
	return edge
}

func (w *World) removeEdgeFor(a *Archetype, cid ComponentId) *archetypeEdge {
	if edge, ok := a.removeEdges[cid]; ok {
		return edge
	}
	target := w.archetypeFor(removeSorted(a.signature, cid))
	edge := &archetypeEdge{target: target, columnMap: buildColumnMap(a, target)}
	a.removeEdges[cid] = edge
	if _, ok := target.addEdges[cid]; !ok {
		target.addEdges[cid] = &archetypeEdge{target: a, columnMap: buildColumnMap(target, a)}
	}
	return edge
}

// moveEntity transfers an entity across a transition edge, copying each
// target column cell from its mapped source (new columns stay zeroed), and
// swap-removes the source row. Returns the new row.
func (w *World) moveEntity(e EntityId, from *Archetype, row int, edge *archetypeEdge) int {
	to := edge.target
	if len(edge.columnMap) != len(to.columns) {
		panic(fmt.Sprintf("transition column map width %d does not match archetype %x", len(edge.columnMap), to.id))
	}
	newRow := to.pushEntity(e)
	for ci := range to.columns {
		if src := edge.columnMap[ci]; src != newColumn {
			copy(to.columns[ci].cell(newRow), from.columns[src].cell(row))
		}
	}
	moved := from.swapRemove(row)
	if moved != 0 {
		w.records[moved.Index()].row = int32(row)
	}
	rec := &w.records[e.Index()]
	rec.arch = to
	rec.row = int32(newRow)
	return newRow
}

// applyAdd performs a component add immediately. Adding a kind the entity
// already holds overwrites the payload in place without an archetype move.
func (w *World) applyAdd(e EntityId, cid ComponentId, src unsafe.Pointer) {
	if !w.index.alive(e) {
		return
	}
	if IsPair(cid) {
		w.applyExclusive(e, cid)
	}
	rec := &w.records[e.Index()]
	a := rec.arch
	if a == nil {
		return
	}
	if a.Contains(cid) {
		if col := a.columnFor(cid); col != nil {
			col.setCell(int(rec.row), src)
		}
		return
	}
	edge := w.addEdgeFor(a, cid)
	row := w.moveEntity(e, a, int(rec.row), edge)
	if col := edge.target.columnFor(cid); col != nil {
		col.setCell(row, src)
	}
	w.dispatchTransition(a, edge.target, e)
}

// applyRemove performs a component remove immediately. Removing an absent
// kind is a no-op.
func (w *World) applyRemove(e EntityId, cid ComponentId) {
	if !w.index.alive(e) {
		return
	}
	rec := &w.records[e.Index()]
	a := rec.arch
	if a == nil || !a.Contains(cid) {
		return
	}
	edge := w.removeEdgeFor(a, cid)
	w.dispatchTransition(a, edge.target, e)
	w.moveEntity(e, a, int(rec.row), edge)
}

// applyDestroy tears an entity down immediately and queues any cascade
// destroys its death triggers.
func (w *World) applyDestroy(e EntityId) {
	if !w.index.alive(e) {
		return
	}
	rec := &w.records[e.Index()]
	a := rec.arch
	w.dispatchTransition(a, nil, e)

	if a != nil {
		moved := a.swapRemove(int(rec.row))
		if moved != 0 {
			w.records[moved.Index()].row = rec.row
		}
	}
	rec.arch = nil
	rec.row = deadRow
	w.index.destroy(e)
	w.disabled.Del(e.Index())
	w.enqueueCascadeDestroys(e)
}

// addComponentId routes an add through the deferred queue when iteration
// is active.
func (w *World) addComponentId(e EntityId, cid ComponentId, src unsafe.Pointer, size int) {
	if !w.index.alive(e) {
		return
	}
	if w.deferring() {
		w.enqueueAdd(e, cid, src, size)
		return
	}
	w.applyAdd(e, cid, src)
	w.maybeFlush()
}

func (w *World) removeComponentId(e EntityId, cid ComponentId) {
	if !w.index.alive(e) {
		return
	}
	if w.deferring() {
		w.queue.enqueue(deferredOp{kind: opRemoveComponent, entity: e, cid: cid})
		return
	}
	w.applyRemove(e, cid)
	w.maybeFlush()
}

// componentPtr resolves a live entity's payload cell, nil for tags, absent
// kinds and dead entities.
func (w *World) componentPtr(e EntityId, cid ComponentId) unsafe.Pointer {
	if !w.index.alive(e) {
		return nil
	}
	rec := &w.records[e.Index()]
	if rec.arch == nil {
		return nil
	}
	col := rec.arch.columnFor(cid)
	if col == nil {
		return nil
	}
	return col.cellPointer(int(rec.row))
}

// payloadOf extracts a component value's type and an addressable copy of
// its bytes. Pointer arguments are dereferenced.
func payloadOf(v any) (reflect.Type, unsafe.Pointer) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	typ := rv.Type()
	if typ.Size() == 0 {
		return typ, nil
	}
	ptr := reflect.New(typ)
	ptr.Elem().Set(rv)
	return typ, ptr.UnsafePointer()
}
