package physics

import (
	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
	"github.com/nolantait/flock/geom"
)

// integrationSystem applies gravity and integrates positions for dynamic
// bodies. It reads the virtual clock, so pausing the game freezes physics
// while dev-tools stepping advances it one slice at a time.
type integrationSystem struct {
	gravity geom.Vec2

	Time   ecs.Singleton[app.Time]
	Bodies ecs.Query[struct {
		*Transform
		*RigidBody
		*LinearVelocity
		Gravity *GravityScale `ecs:"optional"`
	}]
}

func (s *integrationSystem) Execute(frame *ecs.UpdateFrame) {
	dt := float32(s.Time.Get().Delta)
	if dt == 0 {
		return
	}

	for _, body := range s.Bodies.Iter() {
		if body.RigidBody.Kind != BodyDynamic {
			continue
		}

		scale := float32(1)
		if body.Gravity != nil {
			scale = body.Gravity.Factor
		}

		body.LinearVelocity.Vec2 = body.LinearVelocity.Add(s.gravity.Scale(scale * dt))
		body.Transform.Position = body.Transform.Position.Add(body.LinearVelocity.Scale(dt))
	}
}

type pairKey struct {
	a, b ecs.EntityId
}

func makePairKey(a, b ecs.EntityId) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// collisionSystem detects circle overlaps and publishes Collision events at
// overlap start and end. Pair state persists across frames in the system.
type collisionSystem struct {
	Time      ecs.Singleton[app.Time]
	Colliders ecs.Query[struct {
		*Transform
		*CircleCollider
	}]
	Collisions ecs.EventWriter[Collision]

	overlapping map[pairKey]bool
}

func (s *collisionSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Time.Get().Delta == 0 {
		return
	}
	if s.overlapping == nil {
		s.overlapping = make(map[pairKey]bool)
	}

	type entry struct {
		id        ecs.EntityId
		transform *Transform
		collider  *CircleCollider
	}
	var entries []entry
	for id, item := range s.Colliders.Iter() {
		entries = append(entries, entry{id: id, transform: item.Transform, collider: item.CircleCollider})
	}

	current := make(map[pairKey]bool, len(s.overlapping))
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]

			distance := a.transform.Position.Sub(b.transform.Position).LengthSquared()
			reach := a.collider.Radius + b.collider.Radius
			if distance > reach*reach {
				continue
			}

			key := makePairKey(a.id, b.id)
			current[key] = true
			if !s.overlapping[key] {
				s.Collisions.Send(Collision{A: key.a, B: key.b, Started: true})
			}
		}
	}

	for key := range s.overlapping {
		if !current[key] {
			s.Collisions.Send(Collision{A: key.a, B: key.b, Started: false})
		}
	}
	s.overlapping = current
}
