package ecs

import "reflect"

// Commands buffers structural world mutations. Systems never change storage
// directly while a stage runs; they queue commands, and the Scheduler flushes
// them at the stage boundary. Each system gets its own buffer, so parallel
// systems can record commands without coordination.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []func()
}

// NewCommands returns an empty command buffer. The Scheduler creates one per
// system; standalone callers can flush their own against a Storage.
func NewCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	components []any
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Spawn queues an entity spawn with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Delete queues an entity deletion. A deletion wins over any add or remove
// queued for the same entity in the same flush.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{entity: entity, component: component})
}

// RemoveComponent queues a component removal.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{entity: entity, compType: compType})
}

// Defer queues an arbitrary function to run at the flush point, after all
// structural commands have been applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Empty reports whether the buffer holds no pending commands.
func (c *Commands) Empty() bool {
	return len(c.spawns) == 0 && len(c.deletes) == 0 &&
		len(c.adds) == 0 && len(c.removes) == 0 && len(c.defers) == 0
}

// flushState carries delete and migration bookkeeping across the command
// buffers applied at one stage barrier: a delete in one buffer wins over an
// add or remove queued in another, and commands follow entities an earlier
// buffer migrated to a new ID.
type flushState struct {
	deleted map[EntityId]bool
	moved   map[EntityId]EntityId
}

func newFlushState() *flushState {
	return &flushState{
		deleted: make(map[EntityId]bool),
		moved:   make(map[EntityId]EntityId),
	}
}

// resolve follows migration chains to an entity's current ID.
func (f *flushState) resolve(id EntityId) EntityId {
	for {
		next, ok := f.moved[id]
		if !ok {
			return id
		}
		id = next
	}
}

// Flush applies the buffered commands to storage and resets the buffer.
// Order: deletes, removes, adds, spawns, deferred functions.
func (c *Commands) Flush(storage *Storage) {
	c.flush(storage, newFlushState())
}

func (c *Commands) flush(storage *Storage, state *flushState) {
	for _, entity := range c.deletes {
		id := state.resolve(entity)
		if id.IsZero() || state.deleted[id] {
			continue
		}
		storage.Delete(id)
		state.deleted[id] = true
	}

	for _, cmd := range c.removes {
		id := state.resolve(cmd.entity)
		if id.IsZero() || state.deleted[id] {
			continue
		}
		if newId := storage.RemoveComponent(id, cmd.compType); newId != id {
			state.moved[id] = newId
		}
	}

	for _, cmd := range c.adds {
		id := state.resolve(cmd.entity)
		if id.IsZero() || state.deleted[id] {
			continue
		}
		if newId := storage.AddComponent(id, cmd.component); newId != id {
			state.moved[id] = newId
		}
	}

	for _, cmd := range c.spawns {
		storage.Spawn(cmd.components...)
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
