// Package devtools is the in-game debugging layer: pausing and stepping the
// simulation, plus a Dear ImGui overlay with storage and scheduler
// introspection. Everything here is only installed when dev mode is on.
package devtools

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
)

// Overlay is the visibility state of the debug overlay.
type Overlay struct {
	Visible bool
}

// ImguiItem holds one ImGui render function. Spawn it on an entity to add a
// window to the overlay.
type ImguiItem struct {
	Render func()
}

// ImguiInputState mirrors ImGui's input capture flags so game systems can
// ignore clicks and keys the overlay is consuming.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Backend wraps the Ebiten-specific Dear ImGui backend.
type Backend struct {
	*ebitenbackend.EbitenBackend
}

// imguiSystem runs the full ImGui frame inside the render stage: begin,
// render every ImguiItem, end, composite onto the screen target.
type imguiSystem struct {
	Screen  ecs.Singleton[app.Screen]
	Overlay ecs.Singleton[Overlay]
	State   ecs.Singleton[ImguiInputState]
	Backend ecs.Singleton[Backend]
	Items   ecs.Query[struct{ *ImguiItem }]
}

func (s *imguiSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get()
	backend := s.Backend.Get()
	if screen.Target == nil || backend.EbitenBackend == nil || !s.Overlay.Get().Visible {
		return
	}

	backend.Layout(screen.Width, screen.Height)
	backend.BeginFrame()

	state := s.State.Get()
	state.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	state.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()

	for _, item := range s.Items.Iter() {
		item.ImguiItem.Render()
	}

	backend.EndFrame()
	backend.Draw(screen.Target)
}
