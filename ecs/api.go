package ecs

import (
	"slices"
	"unsafe"
)

// AddComponent attaches a component value to an entity, moving it to the
// matching archetype. On a dead entity this is a no-op; on an entity that
// already holds the kind the payload is overwritten in place.
func AddComponent[T any](w *World, e EntityId, value T) {
	cid := RegisterComponent[T](w)
	w.addComponentId(e, cid, unsafe.Pointer(&value), int(unsafe.Sizeof(value)))
}

// AddComponents attaches several component values in one call.
func AddComponents(w *World, e EntityId, values ...any) {
	for _, v := range values {
		typ, ptr := payloadOf(v)
		cid := w.registry.register(typ)
		w.addComponentId(e, cid, ptr, int(typ.Size()))
	}
}

// GetComponent returns a pointer to the entity's component payload, nil
// for dead entities, unregistered kinds, tags, and kinds the entity does
// not hold. The pointer is invalidated by the entity's next archetype move.
func GetComponent[T any](w *World, e EntityId) *T {
	cid, ok := ComponentIdFor[T](w)
	if !ok {
		return nil
	}
	return (*T)(w.componentPtr(e, cid))
}

// HasComponent reports whether a live entity holds the component kind.
func HasComponent[T any](w *World, e EntityId) bool {
	cid, ok := ComponentIdFor[T](w)
	if !ok || !w.index.alive(e) {
		return false
	}
	rec := &w.records[e.Index()]
	return rec.arch != nil && rec.arch.Contains(cid)
}

// RemoveComponent detaches a component kind from an entity. Removing an
// absent kind, or from a dead entity, is a no-op.
func RemoveComponent[T any](w *World, e EntityId) {
	cid, ok := ComponentIdFor[T](w)
	if !ok {
		return
	}
	w.removeComponentId(e, cid)
}

// DisableComponent masks a component kind from query iteration for one
// entity without moving it out of its archetype.
func DisableComponent[T any](w *World, e EntityId) {
	cid := RegisterComponent[T](w)
	w.disableComponentId(e, cid)
}

// EnableComponent lifts a DisableComponent mask.
func EnableComponent[T any](w *World, e EntityId) {
	cid, ok := ComponentIdFor[T](w)
	if !ok {
		return
	}
	w.enableComponentId(e, cid)
}

// IsComponentDisabled reports whether the kind is masked on the entity.
func IsComponentDisabled[T any](w *World, e EntityId) bool {
	cid, ok := ComponentIdFor[T](w)
	if !ok {
		return false
	}
	return w.isComponentDisabled(e, cid)
}

func (w *World) disableComponentId(e EntityId, cid ComponentId) {
	if !w.index.alive(e) {
		return
	}
	ds, _ := w.disabled.Get(e.Index())
	if !slices.Contains(ds, cid) {
		w.disabled.Put(e.Index(), append(ds, cid))
	}
}

func (w *World) enableComponentId(e EntityId, cid ComponentId) {
	if !w.index.alive(e) {
		return
	}
	ds, ok := w.disabled.Get(e.Index())
	if !ok {
		return
	}
	pos := slices.Index(ds, cid)
	if pos < 0 {
		return
	}
	ds = append(ds[:pos], ds[pos+1:]...)
	if len(ds) == 0 {
		w.disabled.Del(e.Index())
	} else {
		w.disabled.Put(e.Index(), ds)
	}
}

func (w *World) isComponentDisabled(e EntityId, cid ComponentId) bool {
	if !w.index.alive(e) {
		return false
	}
	ds, ok := w.disabled.Get(e.Index())
	return ok && slices.Contains(ds, cid)
}

// entityMasked reports whether any of the query's required kinds is
// disabled on the entity.
func (w *World) entityMasked(e EntityId, required []ComponentId) bool {
	ds, ok := w.disabled.Get(e.Index())
	if !ok {
		return false
	}
	for _, cid := range required {
		if slices.Contains(ds, cid) {
			return true
		}
	}
	return false
}

// Table returns the archetype's column for T viewed as a typed slice. The
// slice aliases the column buffer: it is valid until the next structural
// change and writes through to the stored data. Tags and absent kinds
// yield nil.
func Table[T any](w *World, a *Archetype) []T {
	cid, ok := ComponentIdFor[T](w)
	if !ok || a == nil {
		return nil
	}
	col := a.columnFor(cid)
	if col == nil || len(a.entities) == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&col.data[0])), len(a.entities))
}
