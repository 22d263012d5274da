package ecs

// EntityId packs an archetype ID (upper 32 bits) together with the entity's
// slot index inside that archetype (lower 32 bits). The zero value is never
// a live entity.
type EntityId uint64

// NewEntityId builds an EntityId from an archetype ID and a slot index.
func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(index))
}

// ArchetypeId returns the archetype half of the ID.
func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

// Index returns the slot index half of the ID.
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// IsZero reports whether the ID refers to no entity.
func (e EntityId) IsZero() bool {
	return e == 0
}

// EntityRef is a stable handle to an entity. Unlike a raw EntityId, a ref
// survives archetype migration: when components are added or removed the
// storage rewrites Id and Archetype in place. A deleted entity zeroes the
// ref, so stale handles resolve to nothing instead of pointing at a reused
// slot.
type EntityRef struct {
	Id        EntityId
	Archetype *Archetype
}

// Alive reports whether the referenced entity still exists.
func (r *EntityRef) Alive() bool {
	return r != nil && r.Id != 0
}
