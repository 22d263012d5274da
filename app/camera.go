package app

import (
	"github.com/nolantait/flock/ecs"
	"github.com/nolantait/flock/geom"
)

// MainCamera marks the camera entity render and input systems project
// through. Exactly one is spawned at startup.
type MainCamera struct{}

// Camera maps between world space (y up, origin at the camera's position)
// and screen space (y down, origin top-left).
type Camera struct {
	Position geom.Vec2
	Zoom     float32

	// Viewport size in pixels, kept in sync with the window.
	ViewportW float32
	ViewportH float32
}

// WorldToScreen projects a world position into screen pixels.
func (c *Camera) WorldToScreen(world geom.Vec2) geom.Vec2 {
	zoom := c.Zoom
	if zoom == 0 {
		zoom = 1
	}
	rel := world.Sub(c.Position).Scale(zoom)
	return geom.V(c.ViewportW/2+rel.X, c.ViewportH/2-rel.Y)
}

// ScreenToWorld projects screen pixels into world space.
func (c *Camera) ScreenToWorld(screen geom.Vec2) geom.Vec2 {
	zoom := c.Zoom
	if zoom == 0 {
		zoom = 1
	}
	rel := geom.V(screen.X-c.ViewportW/2, c.ViewportH/2-screen.Y).Scale(1 / zoom)
	return c.Position.Add(rel)
}

// spawnCameraSystem creates the main camera at startup.
type spawnCameraSystem struct {
	width  float32
	height float32
}

func (s *spawnCameraSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Spawn(
		Camera{Zoom: 1, ViewportW: s.width, ViewportH: s.height},
		MainCamera{},
	)
}

// CameraPlugin registers the camera components and spawns the main camera.
type CameraPlugin struct{}

func (CameraPlugin) Build(app *App) error {
	RegisterComponent[Camera](app)
	RegisterComponent[MainCamera](app)
	app.AddSystemAt(ecs.StageStartup, &spawnCameraSystem{
		width:  float32(app.Config().Width),
		height: float32(app.Config().Height),
	})
	return nil
}
