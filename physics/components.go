// Package physics is the thin 2D physics layer the starter composes: velocity
// integration for rigid bodies and circle-collider overlap events. It is
// deliberately not a constraint solver.
package physics

import (
	"github.com/nolantait/flock/ecs"
	"github.com/nolantait/flock/geom"
)

// LengthUnit is the pixels-per-meter scaling factor. World distances are in
// pixels; physical constants are scaled by this so 1 meter spans 20 pixels.
const LengthUnit float32 = 20.0

// DefaultGravity is standard gravity scaled to pixel units, pointing down.
var DefaultGravity = geom.V(0, -9.81*LengthUnit)

// BodyKind selects how a rigid body responds to forces.
type BodyKind uint8

const (
	// BodyDynamic bodies integrate velocity and react to gravity.
	BodyDynamic BodyKind = iota
	// BodyStatic bodies never move.
	BodyStatic
)

// RigidBody makes an entity participate in physics.
type RigidBody struct {
	Kind BodyKind
}

// Transform is an entity's position and rotation in world space.
type Transform struct {
	Position geom.Vec2
	// Rotation in radians, counterclockwise.
	Rotation float32
}

// LinearVelocity is a body's velocity in pixels per second.
type LinearVelocity struct {
	geom.Vec2
}

// GravityScale multiplies gravity for one body. Absent means 1; zero
// disables gravity entirely.
type GravityScale struct {
	Factor float32
}

// CircleCollider is a circular collision shape centered on the transform.
type CircleCollider struct {
	Radius float32
}

// Collision is published when two collider overlaps begin or end.
type Collision struct {
	A, B ecs.EntityId
	// Started is true for the frame the overlap begins, false for the frame
	// it ends.
	Started bool
}
