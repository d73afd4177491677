package ecs

import (
	"reflect"

	"github.com/kamstrup/intmap"
)

// ComponentId is a unique identifier for a component kind. Plain component
// kinds are assigned monotonically from 1; IDs with the high bit set encode
// relation pairs (see pair.go).
type ComponentId uint32

// componentInfo carries the storage descriptor for one ComponentId.
// Tag kinds have size 0 and no column. For pair IDs typ refers to the
// relation's backing type, or nil when the relation is an entity.
type componentInfo struct {
	id    ComponentId
	size  uintptr
	align uintptr
	typ   reflect.Type
}

// componentRegistry assigns ComponentIds and keeps both directions of the
// type mapping so trait and table lookups stay O(1).
type componentRegistry struct {
	typeToId map[reflect.Type]ComponentId
	infos    []componentInfo // indexed by plain ordinal; infos[0] unused
	pairs    *intmap.Map[ComponentId, componentInfo]
	nextId   ComponentId
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		typeToId: make(map[reflect.Type]ComponentId),
		infos:    make([]componentInfo, 1),
		pairs:    intmap.New[ComponentId, componentInfo](64),
		nextId:   1,
	}
}

// register assigns (or returns) the ComponentId for a component type.
func (r *componentRegistry) register(typ reflect.Type) ComponentId {
	if id, ok := r.typeToId[typ]; ok {
		return id
	}
	id := r.nextId
	r.nextId++
	r.typeToId[typ] = id
	r.infos = append(r.infos, componentInfo{
		id:    id,
		size:  typ.Size(),
		align: uintptr(typ.Align()),
		typ:   typ,
	})
	return id
}

// lookup returns the ComponentId for a type without registering it.
func (r *componentRegistry) lookup(typ reflect.Type) (ComponentId, bool) {
	id, ok := r.typeToId[typ]
	return id, ok
}

// registerPair records the storage descriptor for a pair ID. The column size
// is inherited from the relation's backing type; entity-valued relations
// carry no data regardless of target.
func (r *componentRegistry) registerPair(pid ComponentId, relType reflect.Type) {
	if _, ok := r.pairs.Get(pid); ok {
		return
	}
	info := componentInfo{id: pid, align: ptrAlign}
	if relType != nil {
		info.size = relType.Size()
		info.align = uintptr(relType.Align())
		info.typ = relType
	}
	r.pairs.Put(pid, info)
}

// info returns the descriptor for any ComponentId, pair or plain.
func (r *componentRegistry) info(cid ComponentId) (componentInfo, bool) {
	if IsPair(cid) {
		return r.pairs.Get(cid)
	}
	if int(cid) >= len(r.infos) || cid == 0 {
		return componentInfo{}, false
	}
	return r.infos[cid], true
}

// typeOf returns the backing type of a ComponentId, nil for entity-relation
// pairs and unknown IDs.
func (r *componentRegistry) typeOf(cid ComponentId) reflect.Type {
	info, ok := r.info(cid)
	if !ok {
		return nil
	}
	return info.typ
}

func (r *componentRegistry) count() int {
	return int(r.nextId) - 1 + r.pairs.Len()
}

// RegisterComponent registers a component type with the world and returns
// its ComponentId. Registration is idempotent; the zero-sized struct case
// produces a tag kind with no column.
func RegisterComponent[T any](w *World) ComponentId {
	return w.registry.register(reflect.TypeFor[T]())
}

// ComponentIdFor returns the ComponentId for a registered component type
// and false if the type has never been seen.
func ComponentIdFor[T any](w *World) (ComponentId, bool) {
	return w.registry.lookup(reflect.TypeFor[T]())
}
