package app

import "github.com/nolantait/flock/ecs"

// Time is the virtual clock resource. Delta is the scaled frame delta systems
// should integrate with; it reads zero while paused unless a step was
// requested. Pausing does not stop the real loop, only this clock.
type Time struct {
	// Delta is the virtual seconds elapsed since the previous tick.
	Delta float64
	// Elapsed is the total virtual seconds since startup.
	Elapsed float64
	// Scale multiplies real delta time. 1 is real time.
	Scale float64

	paused      bool
	pendingStep float64
}

// Pause freezes the virtual clock.
func (t *Time) Pause() {
	t.paused = true
}

// Resume unfreezes the virtual clock.
func (t *Time) Resume() {
	t.paused = false
}

// Paused reports whether the clock is frozen.
func (t *Time) Paused() bool {
	return t.paused
}

// Step advances a paused clock by the given seconds on the next tick.
func (t *Time) Step(seconds float64) {
	t.pendingStep += seconds
}

// advance consumes one real frame delta and updates Delta and Elapsed.
func (t *Time) advance(realDelta float64) {
	if t.paused {
		t.Delta = t.pendingStep
		t.pendingStep = 0
	} else {
		t.Delta = realDelta * t.Scale
	}
	t.Elapsed += t.Delta
}

// timeSystem drives the Time resource at the top of every frame.
type timeSystem struct {
	Time ecs.Singleton[Time]
}

func (s *timeSystem) Execute(frame *ecs.UpdateFrame) {
	s.Time.Get().advance(frame.DeltaTime)
}

// TimePlugin installs the Time resource and its per-frame update.
type TimePlugin struct{}

func (TimePlugin) Build(app *App) error {
	app.InsertResource(Time{Scale: 1})
	app.AddSystemAt(ecs.StageFirst, &timeSystem{})
	return nil
}
