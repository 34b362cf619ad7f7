package mode

import "fmt"

// Mode is the interpretation applied to pressed keys.
type Mode uint8

const (
	// Normal resolves held keys against the motion rule table.
	Normal Mode = iota

	// Insert relays every pressed key as a raw character.
	Insert
)

// Standard mode names.
const (
	ModeNormal = "normal"
	ModeInsert = "insert"
)

// String returns the mode identifier.
func (m Mode) String() string {
	switch m {
	case Normal:
		return ModeNormal
	case Insert:
		return ModeInsert
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// DisplayName returns a human-readable name for the status line.
func (m Mode) DisplayName() string {
	switch m {
	case Normal:
		return "NORMAL"
	case Insert:
		return "INSERT"
	default:
		return "UNKNOWN"
	}
}

// Trigger is an input that may cause a mode transition.
type Trigger uint8

const (
	// EnterInsert fires when "i" wins the motion rule table in Normal mode.
	EnterInsert Trigger = iota + 1

	// ExitInsert fires when Escape is pressed in Insert mode.
	ExitInsert
)

// String returns the trigger name.
func (t Trigger) String() string {
	switch t {
	case EnterInsert:
		return "enter-insert"
	case ExitInsert:
		return "exit-insert"
	default:
		return fmt.Sprintf("Trigger(%d)", t)
	}
}

// transitions is the complete transition table.
var transitions = map[Mode]map[Trigger]Mode{
	Normal: {EnterInsert: Insert},
	Insert: {ExitInsert: Normal},
}

// Next returns the mode reached from m by trigger t.
// ok is false when the machine does not accept t in m.
func Next(m Mode, t Trigger) (next Mode, ok bool) {
	next, ok = transitions[m][t]
	return next, ok
}
