package key

import (
	"fmt"
	"time"
)

// Action is the transition a key event reports.
type Action uint8

const (
	// Press is a key going down. Autorepeat is reported as further presses.
	Press Action = iota + 1

	// Release is a key going up.
	Release
)

// String returns a human-readable action name.
func (a Action) String() string {
	switch a {
	case Press:
		return "press"
	case Release:
		return "release"
	default:
		return fmt.Sprintf("Action(%d)", a)
	}
}

// Event represents a single key press or release.
type Event struct {
	// Action is Press or Release.
	Action Action

	// Key identifies the key.
	Key ID

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewPress creates a press event with the current timestamp.
func NewPress(id ID) Event {
	return Event{Action: Press, Key: id, Timestamp: time.Now()}
}

// NewRelease creates a release event with the current timestamp.
func NewRelease(id ID) Event {
	return Event{Action: Release, Key: id, Timestamp: time.Now()}
}

// IsPress returns true if this is a press event.
func (e Event) IsPress() bool {
	return e.Action == Press
}

// Valid reports whether the event carries an action and a key.
func (e Event) Valid() bool {
	return (e.Action == Press || e.Action == Release) && e.Key != None
}

// String returns a compact representation such as "press w".
func (e Event) String() string {
	return e.Action.String() + " " + string(e.Key)
}
