package app

// TimerMode selects one-shot or repeating behavior.
type TimerMode uint8

const (
	TimerOnce TimerMode = iota
	TimerRepeating
)

// Timer accumulates delta time towards a duration. A once timer stays
// finished; a repeating timer rolls over, carrying any excess into the next
// cycle.
type Timer struct {
	Duration float64
	Mode     TimerMode

	elapsed      float64
	finished     bool
	justFinished bool
}

// NewTimer creates a timer counting towards the given duration in seconds.
func NewTimer(duration float64, mode TimerMode) Timer {
	return Timer{Duration: duration, Mode: mode}
}

// Tick advances the timer and returns whether it finished on this tick.
func (t *Timer) Tick(delta float64) bool {
	t.justFinished = false

	if t.Mode == TimerOnce && t.finished {
		return false
	}

	t.elapsed += delta
	if t.elapsed < t.Duration {
		return false
	}

	t.finished = true
	t.justFinished = true
	if t.Mode == TimerRepeating && t.Duration > 0 {
		for t.elapsed >= t.Duration {
			t.elapsed -= t.Duration
		}
	}
	return true
}

// Finished reports whether the timer has ever completed.
func (t *Timer) Finished() bool {
	return t.finished
}

// JustFinished reports whether the timer completed on the most recent Tick.
func (t *Timer) JustFinished() bool {
	return t.justFinished
}

// Elapsed returns the accumulated time within the current cycle.
func (t *Timer) Elapsed() float64 {
	return t.elapsed
}

// Fraction returns progress through the current cycle in [0, 1].
func (t *Timer) Fraction() float64 {
	if t.Duration <= 0 {
		return 1
	}
	if f := t.elapsed / t.Duration; f < 1 {
		return f
	}
	return 1
}

// Reset rewinds the timer to the start of a fresh cycle.
func (t *Timer) Reset() {
	t.elapsed = 0
	t.finished = false
	t.justFinished = false
}
