// Package app composes the ECS runtime into a runnable game: configuration,
// plugin registration, the shared resources (time, input, camera, assets,
// audio) and the loop drivers.
package app

import (
	"context"
	"os"
	"reflect"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/nolantait/flock/ecs"
)

// Plugin is a unit of app composition. Build registers components, resources
// and systems on the app; returning an error aborts startup.
type Plugin interface {
	Build(app *App) error
}

// PluginFunc adapts a bare function to the Plugin interface.
type PluginFunc func(app *App) error

func (f PluginFunc) Build(app *App) error {
	return f(app)
}

// App owns the world: component registry, storage, staged scheduler and the
// loop driver. Plugins build onto it; Run drives it until the context is
// cancelled or the window closes.
type App struct {
	cfg       Config
	log       zerolog.Logger
	registry  *ecs.ComponentRegistry
	storage   *ecs.Storage
	scheduler *ecs.Scheduler

	cleanups []func()
	err      error
}

// New creates an empty app from the given config. No plugins are installed;
// compose with AddPlugins.
func New(cfg Config) *App {
	level, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}

	registry := ecs.NewComponentRegistry()
	storage := ecs.NewStorage(registry)

	return &App{
		cfg:       cfg,
		log:       zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger(),
		registry:  registry,
		storage:   storage,
		scheduler: ecs.NewScheduler(storage),
	}
}

// Config returns the app's configuration.
func (a *App) Config() Config {
	return a.cfg
}

// Logger returns the app's root logger. Plugins derive sub-loggers from it.
func (a *App) Logger() *zerolog.Logger {
	return &a.log
}

// Registry returns the component registry.
func (a *App) Registry() *ecs.ComponentRegistry {
	return a.registry
}

// Storage returns the world storage.
func (a *App) Storage() *ecs.Storage {
	return a.storage
}

// Scheduler returns the staged scheduler.
func (a *App) Scheduler() *ecs.Scheduler {
	return a.scheduler
}

// AddPlugins builds each plugin in order. The first build error is recorded
// and later plugins are skipped; Run reports it.
func (a *App) AddPlugins(plugins ...Plugin) *App {
	for _, plugin := range plugins {
		if a.err != nil {
			return a
		}
		name := pluginName(plugin)
		if err := plugin.Build(a); err != nil {
			a.err = eris.Wrapf(err, "building plugin %s", name)
			return a
		}
		a.log.Debug().Str("plugin", name).Msg("plugin installed")
	}
	return a
}

// InsertResource stores value as a type-keyed singleton, replacing any
// existing value of the same type.
func (a *App) InsertResource(value any) *App {
	a.storage.AddSingleton(value)
	return a
}

// AddSystem registers a system in the Update stage.
func (a *App) AddSystem(system ecs.System) *App {
	return a.AddSystemAt(ecs.StageUpdate, system)
}

// AddSystemAt registers a system in the given stage.
func (a *App) AddSystemAt(stage ecs.Stage, system ecs.System) *App {
	a.scheduler.RegisterAt(stage, system)
	a.log.Debug().
		Str("system", systemName(system)).
		Str("stage", stage.String()).
		Msg("system registered")
	return a
}

// OnCleanup schedules fn to run when Run returns, in reverse registration
// order.
func (a *App) OnCleanup(fn func()) {
	a.cleanups = append(a.cleanups, fn)
}

// Err returns the first plugin build error, if any.
func (a *App) Err() error {
	return a.err
}

// Run drives the app until ctx is cancelled or the window closes. Headless
// mode ticks the scheduler at the configured TPS without opening a window.
func (a *App) Run(ctx context.Context) error {
	if a.err != nil {
		return a.err
	}
	defer a.runCleanups()

	a.log.Info().
		Str("title", a.cfg.Title).
		Int("width", a.cfg.Width).
		Int("height", a.cfg.Height).
		Bool("headless", a.cfg.Headless).
		Bool("dev", a.cfg.Dev).
		Msg("starting app")

	if a.cfg.Headless {
		return a.runHeadless(ctx)
	}
	return a.runWindow(ctx)
}

func (a *App) runCleanups() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
}

// Resource returns a pointer to the T singleton, or nil if it was never
// inserted.
func Resource[T any](a *App) *T {
	var ptr *T
	a.storage.ReadSingleton(&ptr)
	return ptr
}

// RegisterComponent registers T with the app's component registry.
func RegisterComponent[T any](a *App) {
	ecs.RegisterComponent[T](a.registry)
}

// AddEvent registers the Events[T] queue and its per-tick rotation.
func AddEvent[T any](a *App) {
	ecs.RegisterEvents[T](a.storage)
}

func pluginName(plugin Plugin) string {
	t := reflect.TypeOf(plugin)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

func systemName(system ecs.System) string {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
