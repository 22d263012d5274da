package ecs_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nolantait/flock/ecs"
)

type spawnOnceSystem struct {
	executed bool
}

func (s *spawnOnceSystem) Execute(frame *ecs.UpdateFrame) {
	if s.executed {
		return
	}
	s.executed = true
	frame.Commands.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
	frame.Commands.Spawn(Position{X: 3, Y: 4})
}

type deleteSystem struct {
	target ecs.EntityId
}

func (s *deleteSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Delete(s.target)
}

type addVelocitySystem struct {
	target ecs.EntityId
}

func (s *addVelocitySystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.AddComponent(s.target, Velocity{DX: 5, DY: 10})
}

func TestCommandsDeferSpawnUntilFlush(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	commands := ecs.NewCommands()

	commands.Spawn(Position{X: 1})
	assert.Equal(t, 0, storage.CollectStats().TotalEntityCount)

	commands.Flush(storage)
	assert.Equal(t, 1, storage.CollectStats().TotalEntityCount)
	assert.True(t, commands.Empty())
}

func TestCommandsDeleteWinsOverAdd(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(&Position{X: 1})

	commands := ecs.NewCommands()
	commands.AddComponent(id, Velocity{DX: 1})
	commands.Delete(id)
	commands.Flush(storage)

	// The delete applies; the add against the dead entity is dropped.
	assert.Nil(t, storage.GetComponent(id, reflect.TypeOf(Position{})))
	assert.Equal(t, 0, storage.CollectStats().TotalEntityCount)
}

func TestCommandsRemoveComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(&Position{X: 1}, &Velocity{DX: 2})

	commands := ecs.NewCommands()
	commands.RemoveComponent(id, reflect.TypeOf(Velocity{}))
	commands.Flush(storage)

	stats := storage.CollectStats()
	assert.Equal(t, 1, stats.TotalEntityCount)

	// The survivor lives in the Position-only archetype.
	archetype := storage.GetArchetype(&Position{})
	assert.NotNil(t, archetype)
	assert.Equal(t, 1, archetype.Len())
}

func TestCommandsRemoveThenAddSameEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(&Position{X: 1}, &Velocity{DX: 2})

	// The remove migrates the entity to a new ID; the queued add must follow
	// it there.
	commands := ecs.NewCommands()
	commands.RemoveComponent(id, reflect.TypeOf(Velocity{}))
	commands.AddComponent(id, Health{Current: 10, Max: 10})
	commands.Flush(storage)

	assert.Equal(t, 1, storage.CollectStats().TotalEntityCount)

	archetype := storage.GetArchetype(&Position{}, &Health{})
	assert.NotNil(t, archetype)
	assert.Equal(t, 1, archetype.Len())
}

func TestCommandsAddAfterForeignDelete(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(&Position{X: 1})

	// A delete applied by one buffer must not crash an add another buffer
	// queued for the same entity.
	deleter := ecs.NewCommands()
	deleter.Delete(id)
	deleter.Flush(storage)

	adder := ecs.NewCommands()
	adder.AddComponent(id, Velocity{DX: 1})
	adder.Flush(storage)

	assert.Equal(t, 0, storage.CollectStats().TotalEntityCount)
}

func TestCommandsDefer(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	ran := false
	commands := ecs.NewCommands()
	commands.Spawn(Position{X: 1})
	commands.Defer(func() {
		// Deferred functions observe the applied structural changes.
		ran = storage.CollectStats().TotalEntityCount == 1
	})
	commands.Flush(storage)

	assert.True(t, ran)
}

func TestCommandsViaScheduler(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	spawner := &spawnOnceSystem{}
	scheduler.Register(spawner)

	scheduler.Once(0.016)

	stats := storage.CollectStats()
	assert.Equal(t, 2, stats.TotalEntityCount)
	assert.Equal(t, 2, stats.ArchetypeCount)
}

func TestCommandsCrossSystemMutation(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	id := storage.Spawn(&Position{X: 1})
	scheduler.Register(&addVelocitySystem{target: id})

	scheduler.Once(0.016)

	// The entity migrated; find it through its new archetype.
	archetype := storage.GetArchetype(&Position{}, &Velocity{})
	assert.NotNil(t, archetype)
	assert.Equal(t, 1, archetype.Len())
}

func TestCommandsDeleteViaScheduler(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	id := storage.Spawn(&Position{X: 1})
	scheduler.Register(&deleteSystem{target: id})

	scheduler.Once(0.016)
	assert.Equal(t, 0, storage.CollectStats().TotalEntityCount)
}
