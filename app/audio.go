package app

import (
	"bytes"
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"github.com/rotisserie/eris"
)

const audioSampleRate = beep.SampleRate(44100)

// Audio plays decoded samples through a shared mixer. Muted or failed
// initialization degrades to a no-op so headless runs and CI never require a
// sound device.
type Audio struct {
	mixer   *beep.Mixer
	enabled bool
}

// NewAudio initializes the speaker. Returns a disabled Audio together with
// the error when the sound device is unavailable.
func NewAudio() (*Audio, error) {
	a := &Audio{mixer: &beep.Mixer{}}

	if err := speaker.Init(audioSampleRate, audioSampleRate.N(100*time.Millisecond)); err != nil {
		return a, eris.Wrap(err, "initializing speaker")
	}
	speaker.Play(a.mixer)
	a.enabled = true
	return a, nil
}

// Enabled reports whether the speaker initialized.
func (a *Audio) Enabled() bool {
	return a.enabled
}

// Play mixes the streamer into the speaker output.
func (a *Audio) Play(streamer beep.Streamer) {
	if !a.enabled {
		return
	}
	speaker.Lock()
	a.mixer.Add(streamer)
	speaker.Unlock()
}

// PlayWav decodes a WAV blob and plays it once, resampling to the speaker
// rate when needed. Decoding happens even with the speaker disabled so a bad
// blob is reported during muted runs too.
func (a *Audio) PlayWav(blob []byte) error {
	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(blob)))
	if err != nil {
		return eris.Wrap(err, "decoding wav")
	}

	var sample beep.Streamer = streamer
	if format.SampleRate != audioSampleRate {
		sample = beep.Resample(4, format.SampleRate, audioSampleRate, streamer)
	}
	a.Play(sample)
	return nil
}

// tone is a sine burst with a linear decay, used for synthesized effects so
// the default game needs no bundled sample files.
type tone struct {
	freq     float64
	phase    float64
	position int
	total    int
}

// Tone returns a streamer playing a sine burst at freq for the duration.
func Tone(freq float64, duration time.Duration) beep.Streamer {
	return &tone{freq: freq, total: audioSampleRate.N(duration)}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if t.position >= t.total {
			return i, false
		}

		gain := 1 - float64(t.position)/float64(t.total)
		val := math.Sin(2*math.Pi*t.phase) * gain

		samples[i][0] = val
		samples[i][1] = val

		t.phase += t.freq / float64(audioSampleRate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// Close stops playback and releases the mixer.
func (a *Audio) Close() {
	if !a.enabled {
		return
	}
	speaker.Lock()
	a.mixer.Clear()
	speaker.Unlock()
	a.enabled = false
}

// AudioPlugin installs the Audio resource. Speaker init failure is logged
// and playback disabled rather than aborting startup.
type AudioPlugin struct{}

func (AudioPlugin) Build(app *App) error {
	if app.Config().AudioMuted || app.Config().Headless {
		app.InsertResource(Audio{mixer: &beep.Mixer{}})
		return nil
	}

	audio, err := NewAudio()
	if err != nil {
		app.Logger().Warn().Err(err).Msg("audio disabled")
	}
	app.InsertResource(*audio)
	app.OnCleanup(audio.Close)
	return nil
}
