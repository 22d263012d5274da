package physics

import (
	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
	"github.com/nolantait/flock/geom"
)

// Plugin wires velocity integration and collision detection into the app's
// PostUpdate stage. The zero value uses standard gravity.
type Plugin struct {
	// Gravity overrides DefaultGravity when non-zero.
	Gravity geom.Vec2
}

func (p Plugin) Build(a *app.App) error {
	gravity := p.Gravity
	if gravity.IsZero() {
		gravity = DefaultGravity
	}

	app.RegisterComponent[Transform](a)
	app.RegisterComponent[RigidBody](a)
	app.RegisterComponent[LinearVelocity](a)
	app.RegisterComponent[GravityScale](a)
	app.RegisterComponent[CircleCollider](a)
	app.AddEvent[Collision](a)

	a.AddSystemAt(ecs.StagePostUpdate, &integrationSystem{gravity: gravity})
	a.AddSystemAt(ecs.StagePostUpdate, &collisionSystem{})

	a.Logger().Debug().
		Float32("length_unit", LengthUnit).
		Float32("gravity_y", gravity.Y).
		Msg("physics plugin installed")
	return nil
}
