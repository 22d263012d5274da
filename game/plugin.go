package game

import (
	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
)

// Plugin installs the flocking game: boid steering, player input, bullets
// and rendering. Requires the default plugins and the physics plugin.
type Plugin struct{}

func (Plugin) Build(a *app.App) error {
	app.RegisterComponent[Boid](a)
	app.RegisterComponent[Steering](a)
	app.RegisterComponent[Seek](a)
	app.RegisterComponent[Wander](a)
	app.RegisterComponent[Flee](a)
	app.RegisterComponent[Avoid](a)
	app.RegisterComponent[Bullet](a)
	app.RegisterComponent[Lifetime](a)

	app.AddEvent[BoidSpawned](a)
	app.AddEvent[StanceChanged](a)
	app.AddEvent[Shoot](a)
	app.AddEvent[BoidShot](a)

	a.InsertResource(PlayerStance{Stance: StanceFollow})
	a.InsertResource(AvoidanceFactor{Value: BoidAvoidanceBase})

	// A bundled hit sample is optional; the blip synth covers its absence.
	hit := HitSound{}
	if assets := app.Resource[app.AssetServer](a); assets != nil {
		if blob, err := assets.Bytes("audio/hit.wav"); err == nil {
			hit.Data = blob
		}
	}
	a.InsertResource(hit)

	// Input intents first, then the entity churn they cause.
	a.AddSystem(&inputSpawnSystem{})
	a.AddSystem(&inputStanceSystem{})
	a.AddSystem(&inputAvoidanceSystem{})
	a.AddSystem(&inputShootSystem{})
	a.AddSystem(&behaviorSystem{})
	a.AddSystem(&spawnSystem{})

	// Steering behaviors accumulate into Steering, movement applies it.
	a.AddSystem(&seekSystem{})
	a.AddSystem(&fleeSystem{})
	a.AddSystem(&wanderSystem{})
	a.AddSystem(&avoidanceSystem{})
	a.AddSystem(&movementSystem{})

	a.AddSystem(&shootSystem{})
	a.AddSystem(&lifetimeSystem{})
	a.AddSystem(&bulletCollisionSystem{})
	a.AddSystem(&hitSoundSystem{})

	if !a.Config().Headless {
		a.AddSystemAt(ecs.StageRender, &renderBoidsSystem{})
		a.AddSystemAt(ecs.StageRender, &renderBulletsSystem{})
	}

	a.Logger().Debug().Msg("game plugin installed")
	return nil
}
