package ecs

import (
	"reflect"
	"slices"
	"sort"
	"unsafe"
	"weak"

	"github.com/kamstrup/intmap"
)

// iface mirrors the runtime layout of an interface value. It is used to
// pull the data pointer out of an any without allocating.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Archetype groups all entities that carry exactly the same set of component
// types. Component data lives in one store per type; the stores share slot
// indices, so an entity's components are always at the same index across
// stores.
type Archetype struct {
	id     uint32
	types  []reflect.Type
	stores []componentStore
	refs   *intmap.Map[EntityId, weak.Pointer[EntityRef]]
}

// NewArchetype creates an archetype for the given sorted component types.
// Panics if any type is missing from the registry.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:     id,
		types:  types,
		stores: make([]componentStore, len(types)),
		refs:   intmap.New[EntityId, weak.Pointer[EntityRef]](256),
	}
	for i, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("ecs: component type " + typ.String() + " not registered")
		}
		a.stores[i] = factory()
	}
	return a
}

// Spawn stores the components and returns the shared slot index.
func (a *Archetype) Spawn(components []any) uint32 {
	var slot int
	for _, comp := range components {
		compType := reflect.TypeOf(comp)
		if compType.Kind() == reflect.Ptr {
			compType = compType.Elem()
		}
		for i, typ := range a.types {
			if typ == compType {
				slot = a.stores[i].Append(comp)
			}
		}
	}
	return uint32(slot)
}

// GetComponent returns a pointer (as any) to the entity's component of the
// given type, or nil if the archetype lacks the type or the slot is empty.
func (a *Archetype) GetComponent(entityIndex uint32, compType reflect.Type) any {
	for i, typ := range a.types {
		if typ == compType {
			return a.stores[i].Get(int(entityIndex))
		}
	}
	return nil
}

// SetComponent overwrites the entity's component of the value's type. The
// archetype must already carry the type and the slot must be occupied.
func (a *Archetype) SetComponent(entityIndex uint32, component any) {
	value := reflect.ValueOf(component)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if ptr := a.GetComponent(entityIndex, value.Type()); ptr != nil {
		reflect.ValueOf(ptr).Elem().Set(value)
	}
}

// Delete clears the entity's slot in every store and invalidates any live
// EntityRef. Indices of other entities are unaffected.
func (a *Archetype) Delete(entityIndex uint32) {
	entityId := NewEntityId(a.id, entityIndex)
	if weakPtr, ok := a.refs.Get(entityId); ok {
		if ref := weakPtr.Value(); ref != nil {
			ref.Id = 0
			ref.Archetype = nil
		}
		a.refs.Del(entityId)
	}
	for _, store := range a.stores {
		store.Delete(int(entityIndex))
	}
}

// Alive reports whether the slot currently holds an entity.
func (a *Archetype) Alive(entityIndex uint32) bool {
	if len(a.stores) == 0 {
		return false
	}
	return a.stores[0].Has(int(entityIndex))
}

// HasComponent reports whether the archetype carries the component type.
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

// ID returns the archetype's identifier.
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types of this archetype.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities in the archetype.
func (a *Archetype) Len() int {
	if len(a.stores) == 0 {
		return 0
	}
	return a.stores[0].Len()
}

// Compact repacks all stores in lockstep to remove fragmentation. Live
// EntityRefs are rewritten to the new slot indices.
func (a *Archetype) Compact() {
	if len(a.stores) == 0 {
		return
	}

	indexMap := a.stores[0].Compact()
	for i := 1; i < len(a.stores); i++ {
		a.stores[i].Compact()
	}

	moved := make(map[EntityId]weak.Pointer[EntityRef])
	for oldIdx, newIdx := range indexMap {
		oldId := NewEntityId(a.id, uint32(oldIdx))
		weakPtr, ok := a.refs.Get(oldId)
		if !ok {
			continue
		}
		if ref := weakPtr.Value(); ref != nil {
			newId := NewEntityId(a.id, uint32(newIdx))
			ref.Id = newId
			moved[newId] = weakPtr
		}
	}

	// Rebuild refs from scratch; this also drops dead weak pointers.
	a.refs.Clear()
	for id, weakPtr := range moved {
		a.refs.Put(id, weakPtr)
	}
}

// Iter yields the EntityId of every live entity in the archetype.
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		if len(a.stores) == 0 {
			return
		}
		for index := range a.stores[0].Iter() {
			if !yield(NewEntityId(a.id, uint32(index))) {
				return
			}
		}
	}
}

// extractComponentTypes returns the sorted component types of the values.
// Pointers are unwrapped; maps, channels and functions are rejected since
// they are not value types.
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		compType := reflect.TypeOf(comp)
		if compType.Kind() == reflect.Ptr {
			compType = compType.Elem()
		}
		switch compType.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
			panic("ecs: components cannot be pointers, maps, channels, or functions")
		}
		types = append(types, compType)
	}
	sort.Sort(byTypeName(types))
	return types
}

// hashTypes derives an archetype ID from a sorted type set with FNV-1a over
// the runtime type pointers.
func hashTypes(types []reflect.Type) uint32 {
	var h uint32 = 2166136261
	const prime uint32 = 16777619

	for _, t := range types {
		ptr := (*iface)(unsafe.Pointer(&t)).data
		val := uint32(uintptr(ptr))
		if unsafe.Sizeof(uintptr(0)) == 8 {
			val ^= uint32(uintptr(ptr) >> 32)
		}
		h ^= val
		h *= prime
	}
	return h
}
