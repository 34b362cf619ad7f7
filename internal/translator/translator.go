package translator

import (
	"sync"
	"time"

	"github.com/dshills/keydrive/internal/input/key"
	"github.com/dshills/keydrive/internal/input/mode"
	"github.com/dshills/keydrive/internal/logging"
	"github.com/dshills/keydrive/internal/protocol"
)

// Sink receives every emitted command, in order, exactly once.
// Send must not block for long and must not call back into the Translator.
type Sink interface {
	Send(cmd protocol.Command)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(cmd protocol.Command)

// Send calls f(cmd).
func (f SinkFunc) Send(cmd protocol.Command) {
	f(cmd)
}

// Stats counts translator activity.
type Stats struct {
	Presses         uint64
	Releases        uint64
	Commands        uint64
	SpeedSuppressed uint64
	ModeChanges     uint64
}

// Translator holds the session state and emits commands for key events.
type Translator struct {
	mu sync.Mutex

	sink   Sink
	now    func() time.Time
	window time.Duration
	logger *logging.Logger

	pressed  PressedKeySet
	modes    *mode.Machine
	debounce DebounceState
	stats    Stats
}

// Option configures a Translator.
type Option func(*Translator)

// WithClock sets the time source used for the debounce window.
func WithClock(now func() time.Time) Option {
	return func(t *Translator) {
		if now != nil {
			t.now = now
		}
	}
}

// WithDebounceWindow sets the minimum spacing of same-direction speed commands.
func WithDebounceWindow(d time.Duration) Option {
	return func(t *Translator) {
		if d >= 0 {
			t.window = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithModeObserver registers a callback for mode transitions.
func WithModeObserver(cb mode.ChangeCallback) Option {
	return func(t *Translator) {
		if cb != nil {
			t.modes.OnChange(cb)
		}
	}
}

// New creates a Translator that writes to sink.
func New(sink Sink, opts ...Option) *Translator {
	t := &Translator{
		sink:   sink,
		now:    time.Now,
		window: DefaultDebounceWindow,
		logger: logging.Null(),
		modes:  mode.NewMachine(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handle dispatches ev to Press or Release and returns the emitted commands.
// Events without an action or key are ignored.
func (t *Translator) Handle(ev key.Event) []protocol.Command {
	if !ev.Valid() {
		return nil
	}
	if ev.IsPress() {
		return t.Press(ev.Key)
	}
	t.Release(ev.Key)
	return nil
}

// Press records id as held and runs one evaluation cycle.
// It returns the commands sent to the sink, in order.
func (t *Translator) Press(id key.ID) []protocol.Command {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Presses++
	t.pressed.Add(id)
	t.logger.Debug("detected %s", id)

	if t.modes.Is(mode.Insert) {
		return t.pressInsert(id)
	}

	var out []protocol.Command

	if rule, ok := Evaluate(t.pressed); ok {
		out = t.emit(out, rule.Command())
		if rule.Code == protocol.EnterInsert {
			t.transition(mode.EnterInsert)
		}
	}

	if code, dir, ok := speedRule(t.pressed); ok {
		now := t.now()
		if t.debounce.Allow(dir, now, t.window) {
			out = t.emit(out, protocol.Normal(code))
			t.debounce.Record(dir, now)
		} else {
			t.stats.SpeedSuppressed++
		}
	}

	return out
}

// pressInsert relays the pressed key (must hold lock).
func (t *Translator) pressInsert(id key.ID) []protocol.Command {
	switch {
	case t.pressed.Contains(key.Escape):
		out := t.emit(nil, protocol.InsertExit)
		t.transition(mode.ExitInsert)
		return out
	case t.pressed.Contains(key.Space):
		return t.emit(nil, protocol.InsertSpace)
	default:
		return t.emit(nil, protocol.InsertChar(string(id)))
	}
}

// emit sends cmd to the sink and appends it to out (must hold lock).
func (t *Translator) emit(out []protocol.Command, cmd protocol.Command) []protocol.Command {
	t.stats.Commands++
	t.logger.Debug("sending %s", cmd.Quote())
	if t.sink != nil {
		t.sink.Send(cmd)
	}
	return append(out, cmd)
}

// transition fires a mode trigger (must hold lock).
func (t *Translator) transition(trigger mode.Trigger) {
	if err := t.modes.Fire(trigger); err != nil {
		// Triggers are only fired from the matching mode
		t.logger.Warn("mode transition: %v", err)
		return
	}
	t.logger.Info("mode %s", t.modes.Current())
}

// Release removes id from the held set. It never emits.
func (t *Translator) Release(id key.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Releases++
	t.pressed.Remove(id)
}

// Mode returns the current mode.
func (t *Translator) Mode() mode.Mode {
	return t.modes.Current()
}

// Pressed returns the held keys in sorted order.
func (t *Translator) Pressed() []key.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pressed.Slice()
}

// IsPressed returns true if id is held.
func (t *Translator) IsPressed(id key.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pressed.Contains(id)
}

// Debounce returns a copy of the speed debounce state.
func (t *Translator) Debounce() DebounceState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.debounce
}

// Stats returns a snapshot of the activity counters.
func (t *Translator) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.stats
	st.ModeChanges = t.modes.Transitions()
	return st
}
