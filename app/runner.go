package app

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rotisserie/eris"

	"github.com/nolantait/flock/ecs"
)

// Screen is the render target resource. It is only valid while the render
// stage runs; systems registered at StageRender draw onto Target.
type Screen struct {
	Target *ebiten.Image
	Width  int
	Height int
}

// runHeadless ticks the scheduler at the configured TPS without a window.
// The render stage never runs.
func (a *App) runHeadless(ctx context.Context) error {
	tps := a.cfg.TPS
	if tps <= 0 {
		tps = 60
	}
	interval := time.Second / time.Duration(tps)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			a.log.Info().Msg("headless loop stopped")
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			a.scheduler.Once(dt)
		}
	}
}

// ebitenGame adapts the app to ebiten's Update/Draw/Layout loop.
type ebitenGame struct {
	app      *App
	ctx      context.Context
	lastTick time.Time
}

var errWindowClosed = eris.New("window closed")

func (g *ebitenGame) Update() error {
	if err := g.ctx.Err(); err != nil {
		return errWindowClosed
	}

	now := time.Now()
	dt := now.Sub(g.lastTick).Seconds()
	g.lastTick = now

	g.app.scheduler.Once(dt)
	return nil
}

func (g *ebitenGame) Draw(screen *ebiten.Image) {
	screen.Fill(g.app.cfg.ClearColor())

	target := Resource[Screen](g.app)
	target.Target = screen
	g.app.scheduler.RunStage(ecs.StageRender, 0)
	target.Target = nil
}

func (g *ebitenGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.app.cfg.Width, g.app.cfg.Height
}

func (a *App) runWindow(ctx context.Context) error {
	ebiten.SetWindowTitle(a.cfg.Title)
	ebiten.SetWindowSize(a.cfg.Width, a.cfg.Height)
	if a.cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
	if a.cfg.TPS > 0 {
		ebiten.SetTPS(a.cfg.TPS)
	}

	a.InsertResource(Screen{Width: a.cfg.Width, Height: a.cfg.Height})

	game := &ebitenGame{app: a, ctx: ctx, lastTick: time.Now()}
	if err := ebiten.RunGame(game); err != nil && !eris.Is(err, errWindowClosed) {
		return eris.Wrap(err, "running game window")
	}
	return nil
}

// DefaultPlugins is the standard plugin group: time, input, camera, assets
// and audio. The window itself is driven by Run.
func DefaultPlugins() []Plugin {
	return []Plugin{
		TimePlugin{},
		InputPlugin{},
		CameraPlugin{},
		AssetPlugin{},
		AudioPlugin{},
	}
}
