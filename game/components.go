// Package game is the boids starter demo: steering behaviors, stance
// switching, bullets and the draw systems.
package game

import (
	"image/color"

	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
	"github.com/nolantait/flock/geom"
)

const (
	BoidSpeed          float32 = 250
	BoidSize           float32 = 10
	BoidSteeringForce  float32 = 0.75
	BoidSlowingRadius  float32 = 100
	BoidAvoidanceBase  float32 = 100
	MaxAvoidance       float32 = 10000
	BulletSpeed        float32 = 500
	BulletSize         float32 = 1
	BulletLifetime             = 3.0
	avoidanceWheelStep float32 = 100
)

var (
	boidColor   = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	bulletColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// Boid marks a flocking agent.
type Boid struct{}

// Steering accumulates the frame's steering forces; the movement system
// consumes and resets it.
type Steering struct {
	geom.Vec2
}

// Behavior markers. A boid carries Seek or Flee depending on the player
// stance, plus Wander and Avoid permanently.
type (
	Seek   struct{}
	Wander struct{}
	Flee   struct{}
	Avoid  struct{}
)

// Bullet marks a projectile.
type Bullet struct{}

// Lifetime despawns an entity when its timer completes.
type Lifetime struct {
	Timer app.Timer
}

// Stance is the player-selected boid behavior towards the cursor.
type Stance uint8

const (
	StanceFollow Stance = iota
	StanceEvade
)

// PlayerStance is the active stance resource.
type PlayerStance struct {
	Stance Stance
}

// AvoidanceFactor scales boid separation, tunable with the scroll wheel.
type AvoidanceFactor struct {
	Value float32
}

// HitSound is the decoded-on-play WAV blob for bullet impacts. Empty data
// falls back to a synthesized blip.
type HitSound struct {
	Data []byte
}

// Events.
type (
	// BoidSpawned requests a boid at a world position.
	BoidSpawned struct {
		Position geom.Vec2
	}
	// StanceChanged requests remapping every boid's behavior markers.
	StanceChanged struct {
		Stance Stance
	}
	// Shoot makes every boid fire a bullet along its heading.
	Shoot struct{}
	// BoidShot reports a bullet hitting a boid.
	BoidShot struct {
		Boid   ecs.EntityId
		Bullet ecs.EntityId
	}
)
