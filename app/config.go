package app

import (
	"image/color"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

// Config controls the window and loop behavior. Values are read from the
// environment with the FLOCK prefix; every field has a usable default, so an
// empty environment produces the standard 800x600 window.
type Config struct {
	Title      string  `config:"FLOCK_TITLE"`
	Width      int     `config:"FLOCK_WIDTH"`
	Height     int     `config:"FLOCK_HEIGHT"`
	Resizable  bool    `config:"FLOCK_RESIZABLE"`
	TPS        int     `config:"FLOCK_TPS"`
	ClearGray  float64 `config:"FLOCK_CLEAR_GRAY"`
	AssetDir   string  `config:"FLOCK_ASSET_DIR"`
	Headless   bool    `config:"FLOCK_HEADLESS"`
	Dev        bool    `config:"FLOCK_DEV"`
	LogLevel   string  `config:"FLOCK_LOG_LEVEL"`
	AudioMuted bool    `config:"FLOCK_AUDIO_MUTED"`
}

// DefaultConfig returns the baseline configuration: a fixed 800x600 window
// cleared to 40% gray, ticking at 60Hz.
func DefaultConfig() Config {
	return Config{
		Title:     "flock",
		Width:     800,
		Height:    600,
		Resizable: false,
		TPS:       60,
		ClearGray: 0.4,
		AssetDir:  "assets",
		LogLevel:  "info",
	}
}

// LoadConfig merges FLOCK_* environment variables over the defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "loading config from environment")
	}
	return cfg, nil
}

// ClearColor returns the background color the renderer clears to each frame.
func (c Config) ClearColor() color.RGBA {
	v := uint8(c.ClearGray * 255)
	return color.RGBA{R: v, G: v, B: v, A: 255}
}
