// Package cue plays short tones when the control mode changes, so the
// operator can tell Normal from Insert without looking at the screen.
package cue

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/dshills/keydrive/internal/input/mode"
)

// ErrNoAudio is returned by NewTone in builds without the sound tag.
var ErrNoAudio = errors.New("audio support not built in (rebuild with -tags sound)")

const (
	sampleRate   = beep.SampleRate(44100)
	noteLength   = 70 * time.Millisecond
	noteAttack   = 5 * time.Millisecond
	noteRelease  = 30 * time.Millisecond
	lowNote      = 660.0
	highNote     = 880.0
	speakerDelay = 50 * time.Millisecond
)

// Cue reacts to mode changes.
type Cue interface {
	ModeChanged(from, to mode.Mode)
	Close() error
}

// Noop is a Cue that stays silent.
type Noop struct{}

// ModeChanged does nothing.
func (Noop) ModeChanged(mode.Mode, mode.Mode) {}

// Close does nothing.
func (Noop) Close() error { return nil }

// output receives finished streams.
type output interface {
	Add(s beep.Streamer)
	Clear()
}

// Tone plays a rising pair of notes entering Insert and a falling pair leaving it.
type Tone struct {
	mu     sync.Mutex
	out    output
	volume float64
	closed bool
}

func newTone(out output, volume float64) *Tone {
	return &Tone{out: out, volume: math.Max(0, math.Min(1, volume))}
}

// ModeChanged queues the tone for the transition.
func (t *Tone) ModeChanged(from, to mode.Mode) {
	if from == to {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	notes := []float64{lowNote, highNote}
	if to == mode.Normal {
		notes = []float64{highNote, lowNote}
	}
	t.out.Add(newVolume(phrase(notes...), t.volume))
}

// Close silences anything still playing.
func (t *Tone) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		t.out.Clear()
	}
	return nil
}

// phrase plays the notes one after another.
func phrase(freqs ...float64) beep.Streamer {
	notes := make([]beep.Streamer, len(freqs))
	for i, f := range freqs {
		notes[i] = newEnvelope(newSine(f, noteLength, sampleRate), noteLength, noteAttack, noteRelease, sampleRate)
	}
	return beep.Seq(notes...)
}

// newVolume scales s linearly; zero is silent since log2(0) is -Inf.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
