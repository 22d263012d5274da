package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nolantait/flock/app"
)

func TestTimerOnce(t *testing.T) {
	timer := app.NewTimer(1.0, app.TimerOnce)

	assert.False(t, timer.Tick(0.4))
	assert.False(t, timer.Finished())
	assert.InDelta(t, 0.4, timer.Fraction(), 1e-9)

	assert.True(t, timer.Tick(0.7))
	assert.True(t, timer.Finished())
	assert.True(t, timer.JustFinished())
	assert.Equal(t, 1.0, timer.Fraction())

	// A finished once timer stays done and never re-fires.
	assert.False(t, timer.Tick(5))
	assert.True(t, timer.Finished())
	assert.False(t, timer.JustFinished())
}

func TestTimerRepeating(t *testing.T) {
	timer := app.NewTimer(0.5, app.TimerRepeating)

	assert.False(t, timer.Tick(0.3))
	assert.True(t, timer.Tick(0.3))
	assert.InDelta(t, 0.1, timer.Elapsed(), 1e-9)

	assert.False(t, timer.Tick(0.3))
	assert.True(t, timer.Tick(0.2))
}

func TestTimerRepeatingLargeDelta(t *testing.T) {
	timer := app.NewTimer(0.5, app.TimerRepeating)

	// A delta spanning several cycles fires once and keeps the remainder.
	assert.True(t, timer.Tick(1.7))
	assert.InDelta(t, 0.2, timer.Elapsed(), 1e-9)
}

func TestTimerReset(t *testing.T) {
	timer := app.NewTimer(1.0, app.TimerOnce)
	timer.Tick(2)
	assert.True(t, timer.Finished())

	timer.Reset()
	assert.False(t, timer.Finished())
	assert.Zero(t, timer.Elapsed())
	assert.True(t, timer.Tick(1.5))
}
