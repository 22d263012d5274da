package ecs_test

import (
	"fmt"
	"sort"

	"github.com/nolantait/flock/ecs"
)

type Translation struct {
	X, Y float32
}

type Motion struct {
	DX, DY float32
}

type Hitpoints struct {
	Current, Max int
}

type MotionSystem struct {
	Entities ecs.Query[struct {
		*Translation
		*Motion
	}]
}

func (s *MotionSystem) Execute(frame *ecs.UpdateFrame) {
	dt := float32(frame.DeltaTime)
	for _, entity := range s.Entities.Iter() {
		entity.Translation.X += entity.Motion.DX * dt
		entity.Translation.Y += entity.Motion.DY * dt
	}
}

type RegenSystem struct {
	Entities ecs.Query[struct{ *Hitpoints }]
	Rate     int
}

func (s *RegenSystem) Execute(frame *ecs.UpdateFrame) {
	for _, entity := range s.Entities.Iter() {
		entity.Hitpoints.Current = min(entity.Hitpoints.Current+s.Rate, entity.Hitpoints.Max)
	}
}

// ExampleScheduler demonstrates a frame of a staged game loop. Query fields
// are bound at registration and refreshed before each stage runs; MotionSystem
// and RegenSystem touch disjoint components, so the Scheduler runs them in the
// same parallel batch.
func ExampleScheduler() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Translation](registry)
	ecs.RegisterComponent[Motion](registry)
	ecs.RegisterComponent[Hitpoints](registry)
	storage := ecs.NewStorage(registry)

	storage.Spawn(
		Translation{X: 0, Y: 0},
		Motion{DX: 10, DY: 5},
		Hitpoints{Current: 80, Max: 100},
	)
	storage.Spawn(
		Translation{X: 100, Y: 100},
		Motion{DX: -5, DY: -5},
		Hitpoints{Current: 95, Max: 100},
	)

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MotionSystem{})
	scheduler.Register(&RegenSystem{Rate: 10})

	scheduler.Once(1.0)

	view := ecs.NewView[struct {
		*Translation
		*Hitpoints
	}](storage)

	var lines []string
	for _, item := range view.Iter() {
		lines = append(lines, fmt.Sprintf("Position: (%.0f, %.0f), Health: %d/%d",
			item.Translation.X, item.Translation.Y,
			item.Hitpoints.Current, item.Hitpoints.Max))
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Println(line)
	}

	// Output:
	// Position: (10, 5), Health: 90/100
	// Position: (95, 95), Health: 100/100
}

type Damage struct {
	Amount int
}

type DamageDealer struct {
	Hits ecs.EventWriter[Damage]
}

func (s *DamageDealer) Execute(frame *ecs.UpdateFrame) {
	s.Hits.Send(Damage{Amount: 25})
}

type DamageApplier struct {
	Hits     ecs.EventReader[Damage]
	Entities ecs.Query[struct{ *Hitpoints }]
}

func (s *DamageApplier) Execute(frame *ecs.UpdateFrame) {
	for hit := range s.Hits.Read() {
		for _, entity := range s.Entities.Iter() {
			entity.Hitpoints.Current -= hit.Amount
		}
	}
}

// ExampleEventReader demonstrates events flowing between stages within one
// frame. The writer publishes during PreUpdate; the reader consumes during
// Update of the same tick and keeps its own cursor across frames.
func ExampleEventReader() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Hitpoints](registry)
	storage := ecs.NewStorage(registry)

	storage.Spawn(Hitpoints{Current: 100, Max: 100})

	scheduler := ecs.NewScheduler(storage)
	scheduler.RegisterAt(ecs.StagePreUpdate, &DamageDealer{})
	scheduler.RegisterAt(ecs.StageUpdate, &DamageApplier{})

	scheduler.Once(0.016)
	scheduler.Once(0.016)

	view := ecs.NewView[struct{ *Hitpoints }](storage)
	for _, item := range view.Iter() {
		fmt.Printf("Health: %d/%d\n", item.Hitpoints.Current, item.Hitpoints.Max)
	}

	// Output:
	// Health: 50/100
}
