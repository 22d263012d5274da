package devtools

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
)

// pauseSystem freezes and single-steps game time: P toggles pause, Enter
// advances one tick while paused.
type pauseSystem struct {
	Input ecs.Singleton[app.Input]
	Time  ecs.Singleton[app.Time]
}

func (s *pauseSystem) Execute(frame *ecs.UpdateFrame) {
	input := s.Input.Get()
	clock := s.Time.Get()

	if input.KeyJustPressed(ebiten.KeyP) {
		if clock.Paused() {
			clock.Resume()
		} else {
			clock.Pause()
		}
	}
	if clock.Paused() && input.KeyJustPressed(ebiten.KeyEnter) {
		clock.Step(1.0 / 60)
	}
}

// toggleOverlaySystem shows and hides the debug overlay with backquote.
type toggleOverlaySystem struct {
	Input   ecs.Singleton[app.Input]
	Overlay ecs.Singleton[Overlay]
}

func (s *toggleOverlaySystem) Execute(frame *ecs.UpdateFrame) {
	if s.Input.Get().KeyJustPressed(ebiten.KeyBackquote) {
		overlay := s.Overlay.Get()
		overlay.Visible = !overlay.Visible
	}
}
