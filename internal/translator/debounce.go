package translator

import (
	"time"

	"github.com/dshills/keydrive/internal/protocol"
)

// DefaultDebounceWindow is the minimum spacing of same-direction speed commands.
const DefaultDebounceWindow = 100 * time.Millisecond

// Direction is the sense of the last speed adjustment.
type Direction uint8

const (
	// Faster is a speed increase ("." key).
	Faster Direction = iota
	// Slower is a speed decrease ("," key).
	Slower
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Slower {
		return "slower"
	}
	return "faster"
}

// DebounceState records the last emitted speed command.
// The zero value starts as if a forward adjustment happened at the zero time.
type DebounceState struct {
	LastTime      time.Time
	LastDirection Direction
}

// Allow reports whether a speed command in direction dir may be emitted at now.
// A reversal is never throttled; a repeat must wait for the window.
func (d DebounceState) Allow(dir Direction, now time.Time, window time.Duration) bool {
	return now.Sub(d.LastTime) >= window || d.LastDirection != dir
}

// Record stores an emission.
func (d *DebounceState) Record(dir Direction, now time.Time) {
	d.LastTime = now
	d.LastDirection = dir
}

// speedRule returns the speed command the held set asks for.
// "," wins over "." when both are held.
func speedRule(pressed PressedKeySet) (protocol.Code, Direction, bool) {
	switch {
	case pressed.Contains(SlowerKey):
		return protocol.SpeedDecrease, Slower, true
	case pressed.Contains(FasterKey):
		return protocol.SpeedIncrease, Faster, true
	default:
		return 0, Faster, false
	}
}
