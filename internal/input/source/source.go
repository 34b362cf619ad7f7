// Package source provides keyboard event sources for the translator.
//
// A Source reads its device until the context is cancelled and delivers
// normalized press and release events in arrival order:
//
//   - EvdevSource reads a Linux input device and reports real key releases.
//   - TerminalSource reads a terminal through tcell. Terminals only report
//     presses (and autorepeat), so a release is inferred once a key has been
//     silent for the release timeout. Only the most recent key autorepeats,
//     which makes held combinations unreliable on this source.
package source

import (
	"context"
	"errors"

	"github.com/dshills/keydrive/internal/input/key"
)

// Source errors.
var (
	// ErrUnsupported is returned when a source cannot run on this platform.
	ErrUnsupported = errors.New("input source not supported on this platform")

	// ErrNoKeyboard is returned when no keyboard device could be found.
	ErrNoKeyboard = errors.New("no keyboard device found")

	// ErrInterrupted is returned when the operator asked to quit from the source (Ctrl-C).
	ErrInterrupted = errors.New("interrupted")
)

// Source names.
const (
	NameEvdev    = "evdev"
	NameTerminal = "terminal"
)

// Source produces key events.
type Source interface {
	// Name returns the source identifier.
	Name() string

	// Run reads events into out until ctx is done or the device fails.
	// It returns nil when ctx is cancelled.
	Run(ctx context.Context, out chan<- key.Event) error
}

// deliver sends ev unless ctx is done first.
func deliver(ctx context.Context, out chan<- key.Event, ev key.Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
