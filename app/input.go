package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/nolantait/flock/ecs"
	"github.com/nolantait/flock/geom"
)

// MousePosition is the cursor position in world coordinates, updated every
// frame by the input system while a camera exists.
type MousePosition struct {
	geom.Vec2
}

// Input is the per-frame keyboard and mouse snapshot. Game systems read it
// instead of polling the backend directly, which keeps them testable: tests
// fill the snapshot by hand.
type Input struct {
	CursorScreen geom.Vec2
	WheelX       float64
	WheelY       float64

	keysJustPressed    map[ebiten.Key]bool
	keysPressed        map[ebiten.Key]bool
	buttonsJustPressed map[ebiten.MouseButton]bool
	buttonsPressed     map[ebiten.MouseButton]bool
}

// KeyJustPressed reports whether the key went down this frame.
func (i *Input) KeyJustPressed(key ebiten.Key) bool {
	return i.keysJustPressed[key]
}

// KeyPressed reports whether the key is currently held.
func (i *Input) KeyPressed(key ebiten.Key) bool {
	return i.keysPressed[key]
}

// ButtonJustPressed reports whether the mouse button went down this frame.
func (i *Input) ButtonJustPressed(button ebiten.MouseButton) bool {
	return i.buttonsJustPressed[button]
}

// ButtonPressed reports whether the mouse button is currently held.
func (i *Input) ButtonPressed(button ebiten.MouseButton) bool {
	return i.buttonsPressed[button]
}

// PressKey marks a key as just pressed. Intended for tests and scripted
// input.
func (i *Input) PressKey(key ebiten.Key) {
	i.ensureMaps()
	i.keysJustPressed[key] = true
	i.keysPressed[key] = true
}

// PressButton marks a mouse button as just pressed.
func (i *Input) PressButton(button ebiten.MouseButton) {
	i.ensureMaps()
	i.buttonsJustPressed[button] = true
	i.buttonsPressed[button] = true
}

// ClearFrame drops the just-pressed and wheel state, keeping held state.
func (i *Input) ClearFrame() {
	clear(i.keysJustPressed)
	clear(i.buttonsJustPressed)
	i.WheelX = 0
	i.WheelY = 0
}

func (i *Input) ensureMaps() {
	if i.keysJustPressed == nil {
		i.keysJustPressed = make(map[ebiten.Key]bool)
		i.keysPressed = make(map[ebiten.Key]bool)
		i.buttonsJustPressed = make(map[ebiten.MouseButton]bool)
		i.buttonsPressed = make(map[ebiten.MouseButton]bool)
	}
}

// watchedKeys are the keys the poll system samples each frame.
var watchedKeys = []ebiten.Key{
	ebiten.KeySpace,
	ebiten.KeyEnter,
	ebiten.KeyP,
	ebiten.KeyBackquote,
	ebiten.KeyEscape,
	ebiten.KeyF,
}

var watchedButtons = []ebiten.MouseButton{
	ebiten.MouseButtonLeft,
	ebiten.MouseButtonRight,
	ebiten.MouseButtonMiddle,
}

// pollInputSystem samples the ebiten input state into the Input resource and
// projects the cursor into world space through the camera.
type pollInputSystem struct {
	Input  ecs.Singleton[Input]
	Mouse  ecs.Singleton[MousePosition]
	Camera ecs.Query[struct {
		*Camera
		*MainCamera
	}]
}

func (s *pollInputSystem) Execute(frame *ecs.UpdateFrame) {
	input := s.Input.Get()
	input.ensureMaps()
	input.ClearFrame()

	for _, key := range watchedKeys {
		input.keysJustPressed[key] = inpututil.IsKeyJustPressed(key)
		input.keysPressed[key] = ebiten.IsKeyPressed(key)
	}
	for _, button := range watchedButtons {
		input.buttonsJustPressed[button] = inpututil.IsMouseButtonJustPressed(button)
		input.buttonsPressed[button] = ebiten.IsMouseButtonPressed(button)
	}

	input.WheelX, input.WheelY = ebiten.Wheel()

	cx, cy := ebiten.CursorPosition()
	input.CursorScreen = geom.V(float32(cx), float32(cy))

	for _, item := range s.Camera.Iter() {
		s.Mouse.Get().Vec2 = item.Camera.ScreenToWorld(input.CursorScreen)
		return
	}
	s.Mouse.Get().Vec2 = input.CursorScreen
}

// InputPlugin installs the Input and MousePosition resources. The backend
// poll system is only registered for windowed apps; headless runs (and
// tests) drive the Input resource directly.
type InputPlugin struct{}

func (InputPlugin) Build(app *App) error {
	app.InsertResource(Input{})
	app.InsertResource(MousePosition{})
	if !app.Config().Headless {
		app.AddSystemAt(ecs.StageFirst, &pollInputSystem{})
	}
	return nil
}
