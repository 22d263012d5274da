package game

import (
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
	"github.com/nolantait/flock/geom"
	"github.com/nolantait/flock/physics"
)

// renderBoidsSystem draws each boid as a stroked triangle pointing along its
// heading, projected through the main camera.
type renderBoidsSystem struct {
	Screen ecs.Singleton[app.Screen]
	Camera ecs.Query[struct {
		*app.Camera
		*app.MainCamera
	}]
	Boids ecs.Query[struct {
		*Boid
		*physics.Transform
	}]
}

func (s *renderBoidsSystem) Execute(frame *ecs.UpdateFrame) {
	target := s.Screen.Get().Target
	if target == nil {
		return
	}
	for _, entry := range s.Camera.Iter() {
		camera := entry.Camera
		for _, boid := range s.Boids.Iter() {
			pos := boid.Transform.Position
			rot := boid.Transform.Rotation

			// Local vertices: nose up, two tail corners.
			nose := camera.WorldToScreen(pos.Add(geom.V(0, BoidSize).Rotate(rot)))
			left := camera.WorldToScreen(pos.Add(geom.V(-BoidSize, -BoidSize).Rotate(rot)))
			right := camera.WorldToScreen(pos.Add(geom.V(BoidSize, -BoidSize).Rotate(rot)))

			vector.StrokeLine(target, nose.X, nose.Y, left.X, left.Y, 1, boidColor, true)
			vector.StrokeLine(target, left.X, left.Y, right.X, right.Y, 1, boidColor, true)
			vector.StrokeLine(target, right.X, right.Y, nose.X, nose.Y, 1, boidColor, true)
		}
	}
}

// renderBulletsSystem draws bullets as small filled squares.
type renderBulletsSystem struct {
	Screen ecs.Singleton[app.Screen]
	Camera ecs.Query[struct {
		*app.Camera
		*app.MainCamera
	}]
	Bullets ecs.Query[struct {
		*Bullet
		*physics.Transform
	}]
}

func (s *renderBulletsSystem) Execute(frame *ecs.UpdateFrame) {
	target := s.Screen.Get().Target
	if target == nil {
		return
	}
	for _, entry := range s.Camera.Iter() {
		camera := entry.Camera
		for _, bullet := range s.Bullets.Iter() {
			screen := camera.WorldToScreen(bullet.Transform.Position)
			size := float32(BulletSize) * 2 * camera.Zoom
			vector.DrawFilledRect(target, screen.X-size/2, screen.Y-size/2, size, size, bulletColor, true)
		}
	}
}
