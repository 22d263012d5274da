package game

import (
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
	"github.com/nolantait/flock/geom"
	"github.com/nolantait/flock/physics"
)

// seekSystem steers boids towards the cursor, easing off inside the slowing
// radius so they arrive instead of orbiting.
type seekSystem struct {
	Mouse ecs.Singleton[app.MousePosition]
	Boids ecs.Query[struct {
		*Steering
		*physics.Transform
		*Seek
	}]
}

func (s *seekSystem) Execute(frame *ecs.UpdateFrame) {
	target := s.Mouse.Get().Vec2
	for _, boid := range s.Boids.Iter() {
		path := target.Sub(boid.Transform.Position)
		distance := path.Length()

		desired := path.Normalize()
		if distance <= BoidSlowingRadius {
			desired = desired.Scale(distance / BoidSlowingRadius)
		}
		boid.Steering.Vec2 = boid.Steering.Add(desired)
	}
}

// fleeSystem is seek inverted: away from the cursor, stronger when close.
type fleeSystem struct {
	Mouse ecs.Singleton[app.MousePosition]
	Boids ecs.Query[struct {
		*Steering
		*physics.Transform
		*Flee
	}]
}

func (s *fleeSystem) Execute(frame *ecs.UpdateFrame) {
	target := s.Mouse.Get().Vec2
	for _, boid := range s.Boids.Iter() {
		path := boid.Transform.Position.Sub(target)
		distance := path.Length()

		desired := path.Normalize()
		if distance >= BoidSlowingRadius {
			desired = desired.Scale(BoidSlowingRadius / distance)
		}
		boid.Steering.Vec2 = boid.Steering.Add(desired)
	}
}

// wanderSystem adds a normalized jitter ahead of each boid's heading.
type wanderSystem struct {
	Boids ecs.Query[struct {
		*Steering
		*physics.LinearVelocity
		*Wander
	}]
}

func (s *wanderSystem) Execute(frame *ecs.UpdateFrame) {
	for _, boid := range s.Boids.Iter() {
		circleCenter := boid.LinearVelocity.Normalize().Scale(BoidSpeed)
		angle := rand.Float32()*4*math.Pi - 2*math.Pi
		displacement := geom.V(0, BoidSpeed/4).Rotate(angle)

		boid.Steering.Vec2 = boid.Steering.Add(circleCenter.Add(displacement).Normalize())
	}
}

// avoidanceSystem pushes boid pairs apart with a force falling off with
// squared distance.
type avoidanceSystem struct {
	Factor ecs.Singleton[AvoidanceFactor]
	Boids  ecs.Query[struct {
		*Steering
		*physics.Transform
		*Avoid
	}]
}

func (s *avoidanceSystem) Execute(frame *ecs.UpdateFrame) {
	factor := s.Factor.Get().Value

	type entry struct {
		steering  *Steering
		transform *physics.Transform
	}
	var entries []entry
	for _, boid := range s.Boids.Iter() {
		entries = append(entries, entry{steering: boid.Steering, transform: boid.Transform})
	}

	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			vector := entries[j].transform.Position.Sub(entries[i].transform.Position)
			distance := vector.LengthSquared()
			if distance == 0 {
				continue
			}
			force := vector.Normalize().Neg().Scale(factor / distance)

			entries[i].steering.Vec2 = entries[i].steering.Add(force)
			entries[j].steering.Vec2 = entries[j].steering.Sub(force)
		}
	}
}

// movementSystem converts accumulated steering into velocity, clamps speed,
// points the boid along its heading and resets steering for the next tick.
type movementSystem struct {
	Boids ecs.Query[struct {
		*physics.LinearVelocity
		*Steering
		*physics.Transform
		*Boid
	}]
}

func (s *movementSystem) Execute(frame *ecs.UpdateFrame) {
	for _, boid := range s.Boids.Iter() {
		steerForce := boid.Steering.Scale(BoidSteeringForce * BoidSpeed)
		desired := steerForce.Sub(boid.LinearVelocity.Vec2)

		velocity := boid.LinearVelocity.Add(desired).ClampLength(BoidSpeed)
		boid.LinearVelocity.Vec2 = velocity

		boid.Transform.Rotation = -float32(math.Atan2(float64(velocity.X), float64(velocity.Y)))
		boid.Steering.Vec2 = geom.Vec2{}
	}
}

// inputSpawnSystem requests a boid at the cursor when Space is pressed.
type inputSpawnSystem struct {
	Input   ecs.Singleton[app.Input]
	Mouse   ecs.Singleton[app.MousePosition]
	Spawned ecs.EventWriter[BoidSpawned]
}

func (s *inputSpawnSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Input.Get().KeyJustPressed(ebiten.KeySpace) {
		s.Spawned.Send(BoidSpawned{Position: s.Mouse.Get().Vec2})
	}
}

// inputStanceSystem toggles follow/evade on right click.
type inputStanceSystem struct {
	Input   ecs.Singleton[app.Input]
	Stance  ecs.Singleton[PlayerStance]
	Changes ecs.EventWriter[StanceChanged]
}

func (s *inputStanceSystem) Execute(frame *ecs.UpdateFrame) {
	if !s.Input.Get().ButtonJustPressed(ebiten.MouseButtonRight) {
		return
	}
	switch s.Stance.Get().Stance {
	case StanceFollow:
		s.Changes.Send(StanceChanged{Stance: StanceEvade})
	case StanceEvade:
		s.Changes.Send(StanceChanged{Stance: StanceFollow})
	}
}

// inputAvoidanceSystem tunes the separation factor with the scroll wheel.
type inputAvoidanceSystem struct {
	Input  ecs.Singleton[app.Input]
	Factor ecs.Singleton[AvoidanceFactor]
}

func (s *inputAvoidanceSystem) Execute(frame *ecs.UpdateFrame) {
	wheel := float32(s.Input.Get().WheelY)
	if wheel == 0 {
		return
	}
	factor := s.Factor.Get()
	factor.Value += wheel * avoidanceWheelStep
	if factor.Value < 0 {
		factor.Value = 0
	}
	if factor.Value > MaxAvoidance {
		factor.Value = MaxAvoidance
	}
}

// inputShootSystem fires every boid's gun when F is pressed.
type inputShootSystem struct {
	Input ecs.Singleton[app.Input]
	Shots ecs.EventWriter[Shoot]
}

func (s *inputShootSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Input.Get().KeyJustPressed(ebiten.KeyF) {
		s.Shots.Send(Shoot{})
	}
}

// behaviorSystem remaps boid markers when the stance changes: follow swaps
// Flee for Seek, evade swaps Seek for Flee.
type behaviorSystem struct {
	Changes ecs.EventReader[StanceChanged]
	Stance  ecs.Singleton[PlayerStance]
	Boids   ecs.Query[struct{ *Boid }]
}

func (s *behaviorSystem) Execute(frame *ecs.UpdateFrame) {
	for change := range s.Changes.Read() {
		switch change.Stance {
		case StanceFollow:
			for id := range s.Boids.Iter() {
				frame.Commands.RemoveComponent(id, ecs.TypeOf[Flee]())
				frame.Commands.AddComponent(id, Seek{})
			}
		case StanceEvade:
			for id := range s.Boids.Iter() {
				frame.Commands.RemoveComponent(id, ecs.TypeOf[Seek]())
				frame.Commands.AddComponent(id, Flee{})
			}
		}
		s.Stance.Get().Stance = change.Stance
	}
}

// spawnSystem materializes requested boids with the full physics bundle.
type spawnSystem struct {
	Spawned ecs.EventReader[BoidSpawned]
	Stance  ecs.Singleton[PlayerStance]
}

func (s *spawnSystem) Execute(frame *ecs.UpdateFrame) {
	for event := range s.Spawned.Read() {
		components := []any{
			Boid{},
			Avoid{},
			Wander{},
			Steering{},
			physics.Transform{Position: event.Position},
			physics.RigidBody{Kind: physics.BodyDynamic},
			physics.LinearVelocity{},
			physics.CircleCollider{Radius: BoidSize},
			physics.GravityScale{Factor: 0},
		}
		if s.Stance.Get().Stance == StanceEvade {
			components = append(components, Flee{})
		} else {
			components = append(components, Seek{})
		}
		frame.Commands.Spawn(components...)
	}
}
