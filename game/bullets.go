package game

import (
	"time"

	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
	"github.com/nolantait/flock/physics"
)

// shootSystem fires one bullet per boid along the boid's heading. Boids that
// are not moving yet have no heading and are skipped.
type shootSystem struct {
	Shots ecs.EventReader[Shoot]
	Boids ecs.Query[struct {
		*Boid
		*physics.Transform
		*physics.LinearVelocity
	}]
}

func (s *shootSystem) Execute(frame *ecs.UpdateFrame) {
	for range s.Shots.Read() {
		for _, boid := range s.Boids.Iter() {
			if boid.LinearVelocity.IsZero() {
				continue
			}
			heading := boid.LinearVelocity.Normalize()
			frame.Commands.Spawn(
				Bullet{},
				Lifetime{Timer: app.NewTimer(BulletLifetime, app.TimerOnce)},
				physics.Transform{
					Position: boid.Transform.Position.Add(heading.Scale(BoidSize * 2)),
				},
				physics.RigidBody{Kind: physics.BodyDynamic},
				physics.LinearVelocity{Vec2: heading.Scale(BulletSpeed)},
				physics.CircleCollider{Radius: BulletSize},
				physics.GravityScale{Factor: 0},
			)
		}
	}
}

// lifetimeSystem ticks down Lifetime timers and despawns entities whose
// timer finishes. Game-time driven, so pausing freezes bullets in flight.
type lifetimeSystem struct {
	Time     ecs.Singleton[app.Time]
	Expiring ecs.Query[struct{ *Lifetime }]
}

func (s *lifetimeSystem) Execute(frame *ecs.UpdateFrame) {
	delta := s.Time.Get().Delta
	for id, entry := range s.Expiring.Iter() {
		if entry.Lifetime.Timer.Tick(delta) {
			frame.Commands.Delete(id)
		}
	}
}

// bulletCollisionSystem despawns boid/bullet pairs that touch and reports
// each hit. Contacts between two boids or two bullets are ignored.
type bulletCollisionSystem struct {
	Contacts ecs.EventReader[physics.Collision]
	Hits     ecs.EventWriter[BoidShot]
	Boids    ecs.Query[struct{ *Boid }]
	Bullets  ecs.Query[struct{ *Bullet }]
}

func (s *bulletCollisionSystem) Execute(frame *ecs.UpdateFrame) {
	boids := make(map[ecs.EntityId]bool, s.Boids.Len())
	for id := range s.Boids.Iter() {
		boids[id] = true
	}
	bullets := make(map[ecs.EntityId]bool, s.Bullets.Len())
	for id := range s.Bullets.Iter() {
		bullets[id] = true
	}

	for contact := range s.Contacts.Read() {
		if !contact.Started {
			continue
		}
		boid, bullet := contact.A, contact.B
		if !boids[boid] || !bullets[bullet] {
			boid, bullet = contact.B, contact.A
		}
		if !boids[boid] || !bullets[bullet] {
			continue
		}
		s.Hits.Send(BoidShot{Boid: boid, Bullet: bullet})
		frame.Commands.Delete(boid)
		frame.Commands.Delete(bullet)
		delete(boids, boid)
		delete(bullets, bullet)
	}
}

// hitSoundSystem plays the configured hit sample, or a short blip when no
// sample is bundled, for every boid shot down.
type hitSoundSystem struct {
	Hits  ecs.EventReader[BoidShot]
	Audio ecs.Singleton[app.Audio]
	Sound ecs.Singleton[HitSound]
}

func (s *hitSoundSystem) Execute(frame *ecs.UpdateFrame) {
	audio := s.Audio.Get()
	sound := s.Sound.Get()
	for range s.Hits.Read() {
		if len(sound.Data) > 0 {
			if err := audio.PlayWav(sound.Data); err == nil {
				continue
			}
		}
		audio.Play(app.Tone(880, 80*time.Millisecond))
	}
}
