package physics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
	"github.com/nolantait/flock/geom"
	"github.com/nolantait/flock/physics"
)

func newPhysicsApp(t *testing.T, gravity geom.Vec2) *app.App {
	t.Helper()
	cfg := app.DefaultConfig()
	cfg.Headless = true
	cfg.LogLevel = "error"

	a := app.New(cfg).AddPlugins(
		app.TimePlugin{},
		physics.Plugin{Gravity: gravity},
	)
	require.NoError(t, a.Err())
	return a
}

func spawnBody(a *app.App, pos, vel geom.Vec2, extra ...any) ecs.EntityId {
	components := append([]any{
		physics.Transform{Position: pos},
		physics.RigidBody{Kind: physics.BodyDynamic},
		physics.LinearVelocity{Vec2: vel},
	}, extra...)
	return a.Storage().Spawn(components...)
}

func TestIntegrationMovesDynamicBodies(t *testing.T) {
	a := newPhysicsApp(t, geom.V(0, -10))
	id := spawnBody(a, geom.V(0, 100), geom.V(5, 0))

	a.Scheduler().Once(1.0)

	transform := ecs.ReadComponent[physics.Transform](a.Storage(), id)
	velocity := ecs.ReadComponent[physics.LinearVelocity](a.Storage(), id)

	// One tick: velocity gains gravity, position integrates the new velocity.
	assert.InDelta(t, -10.0, float64(velocity.Y), 1e-4)
	assert.InDelta(t, 5.0, float64(transform.Position.X), 1e-4)
	assert.InDelta(t, 90.0, float64(transform.Position.Y), 1e-4)
}

func TestGravityScaleZeroDisablesGravity(t *testing.T) {
	a := newPhysicsApp(t, geom.V(0, -10))
	id := spawnBody(a, geom.V(0, 0), geom.V(1, 0), physics.GravityScale{Factor: 0})

	a.Scheduler().Once(1.0)

	velocity := ecs.ReadComponent[physics.LinearVelocity](a.Storage(), id)
	assert.Zero(t, velocity.Y)
	assert.Equal(t, float32(1), velocity.X)
}

func TestStaticBodiesNeverMove(t *testing.T) {
	a := newPhysicsApp(t, geom.V(0, -10))
	id := a.Storage().Spawn(
		physics.Transform{Position: geom.V(3, 4)},
		physics.RigidBody{Kind: physics.BodyStatic},
		physics.LinearVelocity{},
	)

	a.Scheduler().Once(1.0)

	transform := ecs.ReadComponent[physics.Transform](a.Storage(), id)
	assert.Equal(t, geom.V(3, 4), transform.Position)
}

func TestPauseFreezesPhysics(t *testing.T) {
	a := newPhysicsApp(t, geom.V(0, -10))
	id := spawnBody(a, geom.V(0, 0), geom.V(10, 0))

	app.Resource[app.Time](a).Pause()
	a.Scheduler().Once(1.0)

	transform := ecs.ReadComponent[physics.Transform](a.Storage(), id)
	assert.Zero(t, transform.Position.X)

	// A single step advances exactly the stepped slice.
	app.Resource[app.Time](a).Step(0.5)
	a.Scheduler().Once(1.0)
	assert.InDelta(t, 5.0, float64(transform.Position.X), 1e-4)
}

func TestCollisionStartAndEndEvents(t *testing.T) {
	a := newPhysicsApp(t, geom.Vec2{})

	first := spawnBody(a, geom.V(0, 0), geom.Vec2{},
		physics.GravityScale{Factor: 0}, physics.CircleCollider{Radius: 10})
	second := spawnBody(a, geom.V(50, 0), geom.V(-30, 0),
		physics.GravityScale{Factor: 0}, physics.CircleCollider{Radius: 10})

	reader := &ecs.EventReader[physics.Collision]{}
	reader.Init(a.Storage())

	collect := func() []physics.Collision {
		var out []physics.Collision
		for event := range reader.Read() {
			out = append(out, event)
		}
		return out
	}

	// Distance 50, reach 20: no contact yet.
	a.Scheduler().Once(0.5)
	assert.Empty(t, collect())

	// Second body moved to x=35, still apart; next tick x=20 overlaps.
	a.Scheduler().Once(0.5)
	a.Scheduler().Once(0.5)

	events := collect()
	require.Len(t, events, 1)
	assert.True(t, events[0].Started)
	pair := []ecs.EntityId{events[0].A, events[0].B}
	assert.ElementsMatch(t, []ecs.EntityId{first, second}, pair)

	// Only the start is reported while contact persists.
	a.Scheduler().Once(0.1)
	assert.Empty(t, collect())

	// Let the second body pass through and separate again.
	var ended []physics.Collision
	for i := 0; i < 10; i++ {
		a.Scheduler().Once(0.5)
		ended = append(ended, collect()...)
	}
	require.Len(t, ended, 1)
	assert.False(t, ended[0].Started)
}

func TestDefaultGravityUsesLengthUnit(t *testing.T) {
	assert.InDelta(t, -9.81*20.0, float64(physics.DefaultGravity.Y), 1e-3)
}
