package ecs

import "unsafe"

// Structural mutation requested while an iteration is active (or while the
// queue itself is flushing) is recorded here and applied in FIFO order when
// the iteration depth returns to zero. Until then every read reports the
// snapshot state, as if no deferred op had happened.

type opKind uint8

const (
	opAddComponent opKind = iota
	opRemoveComponent
	opDestroyEntity
)

type deferredOp struct {
	kind   opKind
	entity EntityId
	cid    ComponentId
	data   []byte // heap copy of the payload, nil for tags
}

type operationQueue struct {
	ops []deferredOp
}

func (q *operationQueue) enqueue(op deferredOp) {
	q.ops = append(q.ops, op)
}

func (q *operationQueue) reset() {
	q.ops = q.ops[:0]
}

// deferring reports whether structural mutation must go through the queue.
func (w *World) deferring() bool {
	return w.iterationDepth > 0 || w.isFlushing
}

// enqueueAdd records a deferred component add, heap-copying the payload so
// it survives until the flush.
func (w *World) enqueueAdd(e EntityId, cid ComponentId, src unsafe.Pointer, size int) {
	var data []byte
	if size > 0 && src != nil {
		data = make([]byte, size)
		copy(data, unsafe.Slice((*byte)(src), size))
	}
	w.queue.enqueue(deferredOp{kind: opAddComponent, entity: e, cid: cid, data: data})
}

// enterIteration opens an iteration scope. Opening the outermost scope
// flushes first so the iteration sees a settled world.
func (w *World) enterIteration() {
	if w.iterationDepth == 0 && !w.isFlushing {
		w.Flush()
	}
	w.iterationDepth++
}

// exitIteration closes an iteration scope; closing the outermost one
// flushes the queue.
func (w *World) exitIteration() {
	w.iterationDepth--
	if w.iterationDepth == 0 && !w.isFlushing {
		w.Flush()
	}
}

// maybeFlush drains ops that piled up behind a direct operation (observer
// callbacks, cascade destroys) once the operation has finished.
func (w *World) maybeFlush() {
	if w.iterationDepth == 0 && !w.isFlushing && len(w.queue.ops) > 0 {
		w.Flush()
	}
}

// Flush applies every queued op in enqueue order. Ops enqueued while the
// flush runs are appended to the same queue and processed in the same pass.
// Afterwards, archetypes left empty are removed unless auto-cleanup is off.
func (w *World) Flush() {
	if w.isFlushing {
		return
	}
	w.isFlushing = true
	for i := 0; i < len(w.queue.ops); i++ {
		op := w.queue.ops[i]
		switch op.kind {
		case opAddComponent:
			var src unsafe.Pointer
			if len(op.data) > 0 {
				src = unsafe.Pointer(&op.data[0])
			}
			w.applyAdd(op.entity, op.cid, src)
		case opRemoveComponent:
			w.applyRemove(op.entity, op.cid)
		case opDestroyEntity:
			w.applyDestroy(op.entity)
		}
	}
	w.queue.reset()
	w.isFlushing = false
	if !w.opts.DisableAutoCleanup {
		w.cleanupEmptyArchetypes()
	}
}

// cleanupEmptyArchetypes removes rowless archetypes other than the
// designated empty archetype, unlinking their transition edges from the
// rest of the graph. Removal bumps the archetype generation.
func (w *World) cleanupEmptyArchetypes() {
	removed := false
	kept := w.archetypes[:0]
	for _, a := range w.archetypes {
		if a == w.empty || len(a.entities) > 0 {
			kept = append(kept, a)
			continue
		}
		w.unlinkArchetype(a)
		if cur, ok := w.archetypeIds.Get(uint32(a.id)); ok && cur == a {
			w.archetypeIds.Del(uint32(a.id))
		}
		removed = true
	}
	w.archetypes = kept
	if removed {
		w.archetypeGeneration++
	}
}

// unlinkArchetype removes the reverse halves of a's transition edges.
// Edges are always installed in pairs, so the neighbors reachable from a
// are exactly the ones holding an edge back to it.
func (w *World) unlinkArchetype(a *Archetype) {
	for cid, edge := range a.addEdges {
		if edge.target.removeEdges[cid] != nil && edge.target.removeEdges[cid].target == a {
			delete(edge.target.removeEdges, cid)
		}
	}
	for cid, edge := range a.removeEdges {
		if edge.target.addEdges[cid] != nil && edge.target.addEdges[cid].target == a {
			delete(edge.target.addEdges, cid)
		}
	}
}
