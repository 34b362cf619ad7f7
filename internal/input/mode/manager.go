package mode

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when a trigger is not accepted in the current mode.
var ErrInvalidTransition = errors.New("invalid mode transition")

// ChangeCallback is called when the mode changes.
type ChangeCallback func(from, to Mode)

// Machine holds the current mode and applies transitions.
type Machine struct {
	mu sync.RWMutex

	// current is the active mode.
	current Mode

	// transitions counts applied transitions.
	transitions uint64

	// callbacks are notified on mode changes.
	callbacks []ChangeCallback
}

// NewMachine creates a machine in Normal mode.
func NewMachine() *Machine {
	return &Machine{current: Normal}
}

// Current returns the active mode.
func (m *Machine) Current() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is returns true if the current mode is mode.
func (m *Machine) Is(mode Mode) bool {
	return m.Current() == mode
}

// Transitions returns how many transitions have been applied.
func (m *Machine) Transitions() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transitions
}

// Fire applies trigger t.
// Returns ErrInvalidTransition (wrapped) if t is not accepted in the current mode.
func (m *Machine) Fire(t Trigger) error {
	m.mu.Lock()

	from := m.current
	to, ok := Next(from, t)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%s in %s mode: %w", t, from, ErrInvalidTransition)
	}

	m.current = to
	m.transitions++

	// Copy callbacks to call outside of lock
	callbacks := make([]ChangeCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(from, to)
		}
	}

	return nil
}

// OnChange registers a callback for mode changes.
// Returns a function to unregister the callback.
func (m *Machine) OnChange(callback ChangeCallback) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
	index := len(m.callbacks) - 1

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Remove callback by setting to nil (preserves indices)
		if index < len(m.callbacks) {
			m.callbacks[index] = nil
		}
	}
}
