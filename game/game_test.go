package game_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
	"github.com/nolantait/flock/game"
	"github.com/nolantait/flock/geom"
	"github.com/nolantait/flock/physics"
)

func newGameApp(t *testing.T) *app.App {
	t.Helper()
	cfg := app.DefaultConfig()
	cfg.Headless = true
	cfg.LogLevel = "error"
	a := app.New(cfg).AddPlugins(
		app.TimePlugin{},
		app.InputPlugin{},
		app.CameraPlugin{},
		app.AudioPlugin{},
		physics.Plugin{},
		game.Plugin{},
	)
	require.NoError(t, a.Err())
	return a
}

func tick(a *app.App) {
	a.Scheduler().Once(1.0 / 60)
}

func countBoids(a *app.App) int {
	boids := ecs.NewView[struct{ *game.Boid }](a.Storage())
	count := 0
	for range boids.Iter() {
		count++
	}
	return count
}

func countBullets(a *app.App) int {
	bullets := ecs.NewView[struct{ *game.Bullet }](a.Storage())
	count := 0
	for range bullets.Iter() {
		count++
	}
	return count
}

func TestSpacebarSpawnsBoidAtCursor(t *testing.T) {
	a := newGameApp(t)
	input := app.Resource[app.Input](a)
	mouse := app.Resource[app.MousePosition](a)

	mouse.Vec2 = geom.V(120, -40)
	input.PressKey(ebiten.KeySpace)
	tick(a)
	input.ClearFrame()

	boids := ecs.NewView[struct {
		*game.Boid
		*game.Seek
		*game.Steering
		*physics.Transform
		*physics.GravityScale
	}](a.Storage())

	count := 0
	for _, boid := range boids.Iter() {
		count++
		assert.Equal(t, geom.V(120, -40), boid.Transform.Position)
		assert.Equal(t, float32(0), boid.GravityScale.Factor, "boids must not fall")
	}
	assert.Equal(t, 1, count)
}

func TestSpawnOnlyOnKeyPress(t *testing.T) {
	a := newGameApp(t)

	tick(a)
	tick(a)

	assert.Zero(t, countBoids(a))
}

func TestRightClickTogglesStance(t *testing.T) {
	a := newGameApp(t)
	input := app.Resource[app.Input](a)

	input.PressKey(ebiten.KeySpace)
	tick(a)
	input.ClearFrame()
	require.Equal(t, 1, countBoids(a))

	input.PressButton(ebiten.MouseButtonRight)
	tick(a)
	input.ClearFrame()

	assert.Equal(t, game.StanceEvade, app.Resource[game.PlayerStance](a).Stance)
	fleeing := ecs.NewView[struct {
		*game.Boid
		*game.Flee
	}](a.Storage())
	fleeCount := 0
	for range fleeing.Iter() {
		fleeCount++
	}
	assert.Equal(t, 1, fleeCount, "boids should flee while evading")

	input.PressButton(ebiten.MouseButtonRight)
	tick(a)
	input.ClearFrame()

	assert.Equal(t, game.StanceFollow, app.Resource[game.PlayerStance](a).Stance)
	seeking := ecs.NewView[struct {
		*game.Boid
		*game.Seek
	}](a.Storage())
	seekCount := 0
	for range seeking.Iter() {
		seekCount++
	}
	assert.Equal(t, 1, seekCount, "boids should seek again after toggling back")
}

func TestWheelAdjustsAvoidanceFactor(t *testing.T) {
	a := newGameApp(t)
	input := app.Resource[app.Input](a)
	factor := app.Resource[game.AvoidanceFactor](a)

	input.WheelY = 2
	tick(a)
	assert.Equal(t, float32(game.BoidAvoidanceBase+200), factor.Value)

	input.WheelY = -50
	tick(a)
	assert.Equal(t, float32(0), factor.Value, "factor clamps at zero")

	input.WheelY = 500
	tick(a)
	assert.Equal(t, float32(game.MaxAvoidance), factor.Value, "factor clamps at the cap")

	input.WheelY = 0
	tick(a)
	assert.Equal(t, float32(game.MaxAvoidance), factor.Value)
}

func TestMovementClampsSpeedAndFacesHeading(t *testing.T) {
	a := newGameApp(t)
	input := app.Resource[app.Input](a)
	mouse := app.Resource[app.MousePosition](a)

	mouse.Vec2 = geom.V(0, 0)
	input.PressKey(ebiten.KeySpace)
	tick(a)
	input.ClearFrame()

	// Pull towards a far-away cursor so the boid accelerates to full speed.
	mouse.Vec2 = geom.V(4000, 0)
	for i := 0; i < 20; i++ {
		tick(a)
	}

	boids := ecs.NewView[struct {
		*game.Boid
		*physics.Transform
		*physics.LinearVelocity
	}](a.Storage())

	checked := false
	for _, boid := range boids.Iter() {
		checked = true
		speed := boid.LinearVelocity.Length()
		assert.Greater(t, speed, float32(0))
		assert.LessOrEqual(t, speed, float32(game.BoidSpeed)*1.001)

		expected := -float32(math.Atan2(
			float64(boid.LinearVelocity.X),
			float64(boid.LinearVelocity.Y),
		))
		assert.InDelta(t, expected, boid.Transform.Rotation, 1e-5)
	}
	assert.True(t, checked)
}

func TestShootSpawnsBulletPerMovingBoid(t *testing.T) {
	a := newGameApp(t)
	input := app.Resource[app.Input](a)
	mouse := app.Resource[app.MousePosition](a)

	mouse.Vec2 = geom.V(0, 0)
	input.PressKey(ebiten.KeySpace)
	tick(a)
	input.ClearFrame()

	mouse.Vec2 = geom.V(500, 0)
	for i := 0; i < 5; i++ {
		tick(a)
	}

	input.PressKey(ebiten.KeyF)
	tick(a)
	input.ClearFrame()

	bullets := ecs.NewView[struct {
		*game.Bullet
		*game.Lifetime
		*physics.LinearVelocity
	}](a.Storage())

	count := 0
	for _, bullet := range bullets.Iter() {
		count++
		assert.InDelta(t, float64(game.BulletSpeed), float64(bullet.LinearVelocity.Length()), 0.5)
		assert.False(t, bullet.Lifetime.Timer.Finished())
	}
	assert.Equal(t, 1, count)
}

func TestBulletsExpire(t *testing.T) {
	a := newGameApp(t)
	tick(a)

	a.Storage().Spawn(
		game.Bullet{},
		game.Lifetime{Timer: app.NewTimer(0.04, app.TimerOnce)},
		physics.Transform{Position: geom.V(1000, 1000)},
		physics.RigidBody{Kind: physics.BodyDynamic},
		physics.LinearVelocity{},
		physics.CircleCollider{Radius: game.BulletSize},
		physics.GravityScale{},
	)
	require.Equal(t, 1, countBullets(a))

	for i := 0; i < 5; i++ {
		tick(a)
	}
	assert.Zero(t, countBullets(a))
}

func TestBulletHitDespawnsBoid(t *testing.T) {
	a := newGameApp(t)
	tick(a)

	// A stationary boid and a bullet already inside its collider.
	a.Storage().Spawn(
		game.Boid{},
		physics.Transform{Position: geom.V(0, 0)},
		physics.RigidBody{Kind: physics.BodyDynamic},
		physics.LinearVelocity{},
		physics.CircleCollider{Radius: game.BoidSize},
		physics.GravityScale{},
	)
	a.Storage().Spawn(
		game.Bullet{},
		game.Lifetime{Timer: app.NewTimer(game.BulletLifetime, app.TimerOnce)},
		physics.Transform{Position: geom.V(5, 0)},
		physics.RigidBody{Kind: physics.BodyDynamic},
		physics.LinearVelocity{},
		physics.CircleCollider{Radius: game.BulletSize},
		physics.GravityScale{},
	)

	var hits ecs.EventReader[game.BoidShot]
	hits.Init(a.Storage())

	var shot []game.BoidShot
	for i := 0; i < 3; i++ {
		tick(a)
		for hit := range hits.Read() {
			shot = append(shot, hit)
		}
	}

	require.Len(t, shot, 1)
	assert.Zero(t, hits.Missed())
	assert.Zero(t, countBoids(a))
	assert.Zero(t, countBullets(a))
}

// hitSample is a minimal 16-bit mono PCM file standing in for the bundled
// impact sound.
func hitSample() []byte {
	const samples = 16
	const dataLen = samples * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(44100))
	binary.Write(&buf, binary.LittleEndian, uint32(44100*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	for i := 0; i < samples; i++ {
		binary.Write(&buf, binary.LittleEndian, int16(i*1024))
	}
	return buf.Bytes()
}

func TestHitPlaysBundledSample(t *testing.T) {
	a := newGameApp(t)
	app.Resource[game.HitSound](a).Data = hitSample()
	tick(a)

	a.Storage().Spawn(
		game.Boid{},
		physics.Transform{Position: geom.V(0, 0)},
		physics.RigidBody{Kind: physics.BodyDynamic},
		physics.LinearVelocity{},
		physics.CircleCollider{Radius: game.BoidSize},
		physics.GravityScale{},
	)
	a.Storage().Spawn(
		game.Bullet{},
		game.Lifetime{Timer: app.NewTimer(game.BulletLifetime, app.TimerOnce)},
		physics.Transform{Position: geom.V(5, 0)},
		physics.RigidBody{Kind: physics.BodyDynamic},
		physics.LinearVelocity{},
		physics.CircleCollider{Radius: game.BulletSize},
		physics.GravityScale{},
	)

	for i := 0; i < 3; i++ {
		tick(a)
	}
	assert.Zero(t, countBoids(a))
}
