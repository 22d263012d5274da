package app_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolantait/flock/app"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "flock", cfg.Title)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.False(t, cfg.Resizable)
	assert.Equal(t, 60, cfg.TPS)
	assert.Equal(t, "assets", cfg.AssetDir)
	assert.False(t, cfg.Dev)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("FLOCK_TITLE", "testing")
	t.Setenv("FLOCK_WIDTH", "1024")
	t.Setenv("FLOCK_DEV", "true")

	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "testing", cfg.Title)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 600, cfg.Height, "unset vars keep their defaults")
	assert.True(t, cfg.Dev)
}

func TestClearColor(t *testing.T) {
	cfg := app.DefaultConfig()
	assert.Equal(t, color.RGBA{R: 102, G: 102, B: 102, A: 255}, cfg.ClearColor())
}
