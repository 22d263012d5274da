package devtools

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/ecs"
)

// Plugin installs pause/step controls and the ImGui overlay. A no-op unless
// dev mode is enabled; the overlay additionally needs a window.
type Plugin struct{}

func (Plugin) Build(a *app.App) error {
	cfg := a.Config()
	if !cfg.Dev {
		return nil
	}

	a.InsertResource(Overlay{})
	a.InsertResource(ImguiInputState{})
	a.AddSystem(&pauseSystem{})
	a.AddSystem(&toggleOverlaySystem{})

	if cfg.Headless {
		a.Logger().Debug().Msg("dev tools installed without overlay")
		return nil
	}

	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(cfg.Title, cfg.Width, cfg.Height)
	imgui.CurrentIO().SetIniFilename("")
	a.InsertResource(Backend{EbitenBackend: backend})

	app.RegisterComponent[ImguiItem](a)

	storage := a.Storage()
	scheduler := a.Scheduler()
	perf := newPerfWindow(120)
	browser := newEntityBrowser()
	storage.Spawn(ImguiItem{Render: func() { perf.render(storage, scheduler) }})
	storage.Spawn(ImguiItem{Render: func() { browser.render(storage) }})

	a.AddSystemAt(ecs.StageRender, &imguiSystem{})

	a.Logger().Debug().Msg("dev tools installed")
	return nil
}
