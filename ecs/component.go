package ecs

import (
	"iter"
	"reflect"
)

// ComponentRegistry maps component types to storage factories. Every
// component type must be registered before the first entity carrying it is
// spawned. Each Storage owns its own registry, so independent worlds never
// share type state.
type ComponentRegistry struct {
	factories map[reflect.Type]func() componentStore
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() componentStore),
	}
}

// RegisterComponent makes the component type T known to the registry.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	r.factories[t] = func() componentStore {
		return &blockStore[T]{}
	}
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() componentStore {
	return r.factories[t]
}

// componentStore is a type-erased, index-stable store for one component type
// inside one archetype. Slots stay put until Compact is called, so indices
// can be shared across all stores of an archetype.
type componentStore interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Compact() map[int]int
	Iter() iter.Seq[int]
}

const storeBlockSize = 64

// blockStore keeps components of type T in fixed-size blocks. Deleted slots
// are zeroed and recycled through a free list; indices remain stable until
// Compact.
type blockStore[T any] struct {
	blocks    [][storeBlockSize]T
	filled    [][storeBlockSize]bool
	freeSlots []int
	nextIndex int
}

func (s *blockStore[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		return -1
	}

	var index int
	if n := len(s.freeSlots); n > 0 {
		index = s.freeSlots[n-1]
		s.freeSlots = s.freeSlots[:n-1]
	} else {
		index = s.nextIndex
		s.nextIndex++
		if index/storeBlockSize >= len(s.blocks) {
			s.blocks = append(s.blocks, [storeBlockSize]T{})
			s.filled = append(s.filled, [storeBlockSize]bool{})
		}
	}

	s.blocks[index/storeBlockSize][index%storeBlockSize] = value
	s.filled[index/storeBlockSize][index%storeBlockSize] = true
	return index
}

func (s *blockStore[T]) Get(index int) any {
	if index < 0 || index/storeBlockSize >= len(s.blocks) {
		return nil
	}
	if !s.filled[index/storeBlockSize][index%storeBlockSize] {
		return nil
	}
	return &s.blocks[index/storeBlockSize][index%storeBlockSize]
}

func (s *blockStore[T]) Delete(index int) {
	if index < 0 || index/storeBlockSize >= len(s.blocks) {
		return
	}
	block, slot := index/storeBlockSize, index%storeBlockSize
	if !s.filled[block][slot] {
		return
	}
	s.filled[block][slot] = false
	var zero T
	s.blocks[block][slot] = zero
	s.freeSlots = append(s.freeSlots, index)
}

func (s *blockStore[T]) Has(index int) bool {
	if index < 0 || index/storeBlockSize >= len(s.blocks) {
		return false
	}
	return s.filled[index/storeBlockSize][index%storeBlockSize]
}

func (s *blockStore[T]) Len() int {
	return s.nextIndex - len(s.freeSlots)
}

// Compact repacks live components to the front of the store and returns the
// old-index to new-index mapping. All stores of an archetype must be
// compacted together to keep their indices aligned.
func (s *blockStore[T]) Compact() map[int]int {
	indexMap := make(map[int]int)

	live := s.nextIndex - len(s.freeSlots)
	if live == 0 {
		s.blocks = make([][storeBlockSize]T, 1)
		s.filled = make([][storeBlockSize]bool, 1)
		s.freeSlots = nil
		s.nextIndex = 0
		return indexMap
	}

	numBlocks := (live + storeBlockSize - 1) / storeBlockSize
	newBlocks := make([][storeBlockSize]T, numBlocks)
	newFilled := make([][storeBlockSize]bool, numBlocks)

	writePos := 0
	for readIdx := 0; readIdx < s.nextIndex; readIdx++ {
		if !s.filled[readIdx/storeBlockSize][readIdx%storeBlockSize] {
			continue
		}
		indexMap[readIdx] = writePos
		newBlocks[writePos/storeBlockSize][writePos%storeBlockSize] = s.blocks[readIdx/storeBlockSize][readIdx%storeBlockSize]
		newFilled[writePos/storeBlockSize][writePos%storeBlockSize] = true
		writePos++
	}

	s.blocks = newBlocks
	s.filled = newFilled
	s.freeSlots = nil
	s.nextIndex = writePos
	return indexMap
}

func (s *blockStore[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < s.nextIndex; i++ {
			if i/storeBlockSize >= len(s.filled) {
				continue
			}
			if s.filled[i/storeBlockSize][i%storeBlockSize] {
				if !yield(i) {
					return
				}
			}
		}
	}
}
