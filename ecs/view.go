package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

type fieldMode uint8

const (
	fieldRequired fieldMode = iota
	fieldOptional
	fieldWithout
)

// View resolves a component access pattern against storage. The type T must
// be a struct whose fields are pointers to component types:
//
//   - embedded fields are required components
//   - named fields tagged `ecs:"optional"` may be nil
//   - named fields tagged `ecs:"without"` exclude archetypes carrying the
//     type; the field itself is always nil
type View[T any] struct {
	storage     *Storage
	types       []reflect.Type
	modes       []fieldMode
	fieldOffset []uintptr

	// Archetype ID matching exactly the required component set, cached for
	// Spawn.
	cachedArchetypeId *uint32
}

// NewView builds a view over the given storage. Panics if T is not a struct
// of pointer fields or a tag value is unknown.
func NewView[T any](storage *Storage) *View[T] {
	var zero T
	structType := reflect.TypeOf(zero)

	if structType.Kind() != reflect.Struct {
		panic("ecs: View type parameter must be a struct")
	}

	v := &View[T]{
		storage:     storage,
		types:       make([]reflect.Type, 0, structType.NumField()),
		modes:       make([]fieldMode, 0, structType.NumField()),
		fieldOffset: make([]uintptr, 0, structType.NumField()),
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("ecs: View struct fields must be pointer types")
		}

		v.types = append(v.types, field.Type.Elem())
		v.fieldOffset = append(v.fieldOffset, field.Offset)

		mode := fieldRequired
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				mode = fieldOptional
			case "without":
				mode = fieldWithout
			default:
				panic("ecs: invalid ecs tag value: \"" + tag + "\"")
			}
		}
		v.modes = append(v.modes, mode)
	}

	return v
}

// Fill populates ptr with component pointers for the entity. Returns false
// if the entity is missing a required component or carries an excluded one.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	archetype, ok := v.storage.archetypes[id.ArchetypeId()]
	if !ok {
		return false
	}

	structPtr := unsafe.Pointer(ptr)

	for i, componentType := range v.types {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])

		if v.modes[i] == fieldWithout {
			if archetype.HasComponent(componentType) {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		component := archetype.GetComponent(id.Index(), componentType)
		if component == nil {
			if v.modes[i] == fieldRequired {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		// Lift the data pointer straight out of the interface value; the
		// field then aliases the live component in storage.
		*(*unsafe.Pointer)(fieldPtr) = (*iface)(unsafe.Pointer(&component)).data
	}

	return true
}

// Get returns a populated view struct for the entity, or nil.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// GetRef is Get for stable entity handles.
func (v *View[T]) GetRef(ref *EntityRef) *T {
	entityId, ok := v.storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	return v.Get(entityId)
}

// matchesArchetype reports whether the archetype satisfies the view: all
// required types present, no excluded type present.
func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for i, typ := range v.types {
		switch v.modes[i] {
		case fieldRequired:
			if !archetype.HasComponent(typ) {
				return false
			}
		case fieldWithout:
			if archetype.HasComponent(typ) {
				return false
			}
		}
	}
	return true
}

// buildStorageIndices maps each view field to the archetype's store index,
// or -1 when absent.
func (v *View[T]) buildStorageIndices(archetype *Archetype) []int {
	indices := make([]int, len(v.types))
	for i, componentType := range v.types {
		indices[i] = -1
		if v.modes[i] == fieldWithout {
			continue
		}
		for idx, archetypeType := range archetype.types {
			if archetypeType == componentType {
				indices[i] = idx
				break
			}
		}
	}
	return indices
}

func (v *View[T]) populateResult(resultPtr unsafe.Pointer, archetype *Archetype, entityIndex int, storageIndices []int) bool {
	for i, storeIdx := range storageIndices {
		fieldPtr := unsafe.Pointer(uintptr(resultPtr) + v.fieldOffset[i])

		if storeIdx == -1 {
			if v.modes[i] == fieldRequired {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		component := archetype.stores[storeIdx].Get(entityIndex)
		if component == nil {
			if v.modes[i] == fieldRequired {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		*(*unsafe.Pointer)(fieldPtr) = (*iface)(unsafe.Pointer(&component)).data
	}
	return true
}

// Iter yields (EntityId, T) for every entity matching the view.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for archetypeId, archetype := range v.storage.archetypes {
			if !v.matchesArchetype(archetype) || len(archetype.stores) == 0 {
				continue
			}

			storageIndices := v.buildStorageIndices(archetype)
			firstStore := archetype.stores[0]

			var result T
			resultPtr := unsafe.Pointer(&result)

			for entityIndex := range firstStore.Iter() {
				if !v.populateResult(resultPtr, archetype, entityIndex, storageIndices) {
					continue
				}
				if !yield(NewEntityId(archetypeId, uint32(entityIndex)), result) {
					return
				}
			}
		}
	}
}

// Values yields the view structs without entity IDs.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates an entity from the view struct's non-nil fields. Excluded
// fields never contribute components; nil required fields panic.
func (v *View[T]) Spawn(data T) EntityId {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	componentTypes := make([]reflect.Type, 0, len(v.types))
	for i, componentType := range v.types {
		if v.modes[i] == fieldWithout {
			continue
		}

		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])
		componentPtr := *(*unsafe.Pointer)(fieldPtr)

		if componentPtr == nil {
			if v.modes[i] == fieldRequired {
				panic("ecs: required component is nil in View.Spawn")
			}
			continue
		}

		components = append(components, reflect.NewAt(componentType, componentPtr).Elem().Interface())
		componentTypes = append(componentTypes, componentType)
	}

	if len(components) == 0 {
		panic("ecs: cannot spawn entity without components")
	}

	// Sort components alongside their types by type name.
	order := make([]int, len(componentTypes))
	for i := range order {
		order[i] = i
	}
	for i := range order {
		for j := i + 1; j < len(order); j++ {
			if componentTypes[order[i]].String() > componentTypes[order[j]].String() {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	sortedComponents := make([]any, len(components))
	sortedTypes := make([]reflect.Type, len(componentTypes))
	for i, idx := range order {
		sortedComponents[i] = components[idx]
		sortedTypes[i] = componentTypes[idx]
	}

	var archetypeId uint32
	fullSet := len(sortedTypes) == len(v.requiredTypes())
	if v.cachedArchetypeId != nil && fullSet {
		archetypeId = *v.cachedArchetypeId
	} else {
		archetypeId = hashTypes(sortedTypes)
		if fullSet {
			v.cachedArchetypeId = &archetypeId
		}
	}

	archetype, exists := v.storage.archetypes[archetypeId]
	if !exists {
		archetype = NewArchetype(archetypeId, sortedTypes, v.storage.registry)
		v.storage.archetypes[archetypeId] = archetype
	}

	return NewEntityId(archetypeId, archetype.Spawn(sortedComponents))
}

// requiredTypes returns the view's required component types.
func (v *View[T]) requiredTypes() []reflect.Type {
	required := make([]reflect.Type, 0, len(v.types))
	for i, typ := range v.types {
		if v.modes[i] == fieldRequired {
			required = append(required, typ)
		}
	}
	return required
}

// accessTypes returns the component types the view touches (excluded types
// carry no data access).
func (v *View[T]) accessTypes() []reflect.Type {
	touched := make([]reflect.Type, 0, len(v.types))
	for i, typ := range v.types {
		if v.modes[i] != fieldWithout {
			touched = append(touched, typ)
		}
	}
	return touched
}
