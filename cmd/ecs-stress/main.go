// Command ecs-stress runs the full flock simulation headless at maximum tick
// rate and reports scheduler throughput and memory behaviour.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/game"
	"github.com/nolantait/flock/geom"
	"github.com/nolantait/flock/physics"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "how long to run the simulation")
	boidCount := flag.Int("boids", 500, "number of boids to seed")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "include GC pause totals in the report")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := app.DefaultConfig()
	cfg.Headless = true
	cfg.LogLevel = "error"

	a := app.New(cfg).
		AddPlugins(app.DefaultPlugins()...).
		AddPlugins(physics.Plugin{}, game.Plugin{})
	if err := a.Err(); err != nil {
		log.Fatal().Err(err).Msg("building app")
	}

	log.Info().Int("boids", *boidCount).Msg("seeding storage")
	for i := 0; i < *boidCount; i++ {
		a.Storage().Spawn(
			game.Boid{},
			game.Seek{},
			game.Wander{},
			game.Avoid{},
			game.Steering{},
			physics.Transform{Position: geom.V(
				rand.Float32()*float32(cfg.Width),
				rand.Float32()*float32(cfg.Height),
			)},
			physics.RigidBody{Kind: physics.BodyDynamic},
			physics.LinearVelocity{},
			physics.CircleCollider{Radius: game.BoidSize},
			physics.GravityScale{},
		)
	}

	report := &Report{
		Duration:       *duration,
		Boids:          *boidCount,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info().Dur("duration", *duration).Msg("running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	lastFrame := start

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		default:
			delta := time.Since(lastFrame)
			lastFrame = time.Now()

			tickStart := time.Now()
			a.Scheduler().Once(delta.Seconds())
			report.TickTime.Samples = append(report.TickTime.Samples, time.Since(tickStart))
			report.TotalTicks++
		}
	}

	report.TotalTime = time.Since(start)
	report.TickTime.Finalize()
	report.Systems = a.Scheduler().GetStats().SystemCount
	report.FinalEntities = a.Storage().CollectStats().TotalEntityCount
	runtime.ReadMemStats(&report.MemStatsEnd)

	if err := report.Generate(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("generating report")
	}
	fmt.Println()
}
