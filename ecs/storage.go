package ecs

import (
	"reflect"
	"sort"
	"unsafe"
	"weak"
)

// Storage owns all entity and component data of one world: the archetype
// table, the singleton table and the component registry. It is not safe for
// concurrent mutation; the Scheduler guarantees structural changes only
// happen at stage boundaries.
type Storage struct {
	archetypes    map[uint32]*Archetype
	singletons    map[reflect.Type]*singletonEntry
	registry      *ComponentRegistry
	eventUpdaters []func()
}

// NewStorage creates an empty storage backed by the given registry.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		singletons: make(map[reflect.Type]*singletonEntry),
		registry:   registry,
	}
}

// Registry returns the component registry the storage was built with.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Spawn creates a new entity carrying the given components. The archetype is
// created on demand.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("ecs: cannot spawn entity without components")
	}

	types := extractComponentTypes(components)
	archetypeId := hashTypes(types)

	archetype, exists := s.archetypes[archetypeId]
	if !exists {
		archetype = NewArchetype(archetypeId, types, s.registry)
		s.archetypes[archetypeId] = archetype
	}

	return NewEntityId(archetypeId, archetype.Spawn(components))
}

// Delete removes the entity and all its component data.
func (s *Storage) Delete(id EntityId) {
	if archetype, ok := s.archetypes[id.ArchetypeId()]; ok {
		archetype.Delete(id.Index())
	}
}

// GetComponent returns a pointer (as any) to the entity's component of the
// given type, or nil.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return nil
	}
	return archetype.GetComponent(id.Index(), compType)
}

// HasComponent reports whether the entity's archetype carries the type.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return false
	}
	return archetype.HasComponent(compType)
}

// GetArchetype returns the archetype holding exactly the given component
// set, or nil if no entity with that set was ever spawned.
func (s *Storage) GetArchetype(components ...any) *Archetype {
	return s.GetArchetypeByTypes(extractComponentTypes(components))
}

// GetArchetypes returns every archetype in the storage, in map order.
func (s *Storage) GetArchetypes() map[uint32]*Archetype {
	return s.archetypes
}

// GetArchetypeByTypes is GetArchetype for callers that already hold
// reflect.Types. The slice is sorted in place.
func (s *Storage) GetArchetypeByTypes(types []reflect.Type) *Archetype {
	sort.Sort(byTypeName(types))
	return s.archetypes[hashTypes(types)]
}

// AddComponent moves the entity to the archetype that additionally carries
// the component, copying all existing data. Returns the entity's new ID;
// live EntityRefs are updated in place. Called on a dead entity it returns
// the zero ID.
func (s *Storage) AddComponent(id EntityId, component any) EntityId {
	oldArchetype := s.archetypes[id.ArchetypeId()]
	if oldArchetype == nil || !oldArchetype.Alive(id.Index()) {
		return 0
	}

	compType := reflect.TypeOf(component)
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}

	// Already carried: overwrite in place, no migration.
	for _, typ := range oldArchetype.types {
		if typ == compType {
			oldArchetype.SetComponent(id.Index(), component)
			return id
		}
	}

	newTypes := make([]reflect.Type, 0, len(oldArchetype.types)+1)
	newTypes = append(newTypes, oldArchetype.types...)
	newTypes = append(newTypes, compType)
	sort.Sort(byTypeName(newTypes))

	components := make([]any, 0, len(newTypes))
	for _, typ := range newTypes {
		if typ == compType {
			components = append(components, component)
		} else {
			components = append(components, oldArchetype.GetComponent(id.Index(), typ))
		}
	}

	return s.migrate(id, oldArchetype, newTypes, components)
}

// RemoveComponent moves the entity to the archetype without the component.
// Removing the last component deletes the entity and returns the zero ID, as
// does removing from a dead entity.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) EntityId {
	oldArchetype := s.archetypes[id.ArchetypeId()]
	if oldArchetype == nil || !oldArchetype.Alive(id.Index()) {
		return 0
	}

	newTypes := make([]reflect.Type, 0, len(oldArchetype.types))
	for _, typ := range oldArchetype.types {
		if typ != compType {
			newTypes = append(newTypes, typ)
		}
	}
	if len(newTypes) == len(oldArchetype.types) {
		return id
	}

	if len(newTypes) == 0 {
		oldArchetype.Delete(id.Index())
		return 0
	}

	components := make([]any, 0, len(newTypes))
	for _, typ := range newTypes {
		components = append(components, oldArchetype.GetComponent(id.Index(), typ))
	}

	return s.migrate(id, oldArchetype, newTypes, components)
}

// migrate respawns the entity's components in the target archetype, carries
// any live EntityRef over and clears the old slot.
func (s *Storage) migrate(id EntityId, oldArchetype *Archetype, newTypes []reflect.Type, components []any) EntityId {
	newArchetypeId := hashTypes(newTypes)
	newArchetype, exists := s.archetypes[newArchetypeId]
	if !exists {
		newArchetype = NewArchetype(newArchetypeId, newTypes, s.registry)
		s.archetypes[newArchetypeId] = newArchetype
	}

	weakPtr, hasRef := oldArchetype.refs.Get(id)

	newId := NewEntityId(newArchetypeId, newArchetype.Spawn(components))

	if hasRef {
		if ref := weakPtr.Value(); ref != nil {
			ref.Id = newId
			ref.Archetype = newArchetype
		}
		oldArchetype.refs.Del(id)
		newArchetype.refs.Put(newId, weakPtr)
	}

	oldArchetype.Delete(id.Index())
	return newId
}

// CreateEntityRef returns a stable handle for the entity, reusing an
// existing live ref when one exists. Returns nil for unknown entities.
func (s *Storage) CreateEntityRef(id EntityId) *EntityRef {
	archetype := s.archetypes[id.ArchetypeId()]
	if archetype == nil {
		return nil
	}

	if weakPtr, ok := archetype.refs.Get(id); ok {
		if ref := weakPtr.Value(); ref != nil {
			return ref
		}
		archetype.refs.Del(id)
	}

	ref := &EntityRef{Id: id, Archetype: archetype}
	archetype.refs.Put(id, weak.Make(ref))
	return ref
}

// ResolveEntityRef returns the entity's current ID, or false if the ref was
// invalidated by deletion.
func (s *Storage) ResolveEntityRef(ref *EntityRef) (EntityId, bool) {
	if ref == nil || ref.Id == 0 {
		return 0, false
	}
	return ref.Id, true
}

// InvalidateEntityRef detaches the ref from its entity without deleting the
// entity. Returns false if the ref was already dead.
func (s *Storage) InvalidateEntityRef(ref *EntityRef) bool {
	if ref == nil || ref.Id == 0 {
		return false
	}
	if archetype := s.archetypes[ref.Id.ArchetypeId()]; archetype != nil {
		archetype.refs.Del(ref.Id)
	}
	ref.Id = 0
	ref.Archetype = nil
	return true
}

// singletonEntry pins one singleton value on the heap. dataPtr stays valid
// for the lifetime of the storage.
type singletonEntry struct {
	typ     reflect.Type
	value   reflect.Value // *T, keeps the data alive
	dataPtr unsafe.Pointer
}

// AddSingleton stores value as the singleton for its type, replacing any
// existing one. Pointer values are dereferenced first.
func (s *Storage) AddSingleton(value any) {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	boxed := reflect.New(rv.Type())
	boxed.Elem().Set(rv)

	s.singletons[rv.Type()] = &singletonEntry{
		typ:     rv.Type(),
		value:   boxed,
		dataPtr: unsafe.Pointer(boxed.Pointer()),
	}
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

// ReadSingleton sets the target, which must be a pointer to a pointer, to the
// stored singleton of the pointed-to type, or to nil if none exists.
//
//	var state *GameState
//	storage.ReadSingleton(&state)
func (s *Storage) ReadSingleton(target any) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Ptr {
		panic("ecs: ReadSingleton expects a pointer to a pointer")
	}

	slot := rv.Elem()
	entry := s.singletons[slot.Type().Elem()]
	if entry == nil {
		slot.SetZero()
		return
	}
	slot.Set(entry.value)
}

// ComponentReader is the read-only subset of Storage used by helpers that
// only need component lookup.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent fetches the entity's component of type T. Panics if the
// entity does not carry T.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	return reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
}
