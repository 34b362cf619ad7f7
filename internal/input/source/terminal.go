package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keydrive/internal/input/key"
	"github.com/dshills/keydrive/internal/logging"
)

// TerminalSource reads key presses from the controlling terminal.
type TerminalSource struct {
	mu      sync.Mutex
	screen  tcell.Screen
	timeout time.Duration
	logger  *logging.Logger
	now     func() time.Time
	status  string

	// ready is closed once the screen is up, if set.
	ready chan struct{}
}

// TerminalOption configures a TerminalSource.
type TerminalOption func(*TerminalSource)

// WithScreen uses s instead of the real terminal.
func WithScreen(s tcell.Screen) TerminalOption {
	return func(t *TerminalSource) {
		t.screen = s
	}
}

// WithReleaseTimeout sets how long a key must be silent to count as released.
func WithReleaseTimeout(d time.Duration) TerminalOption {
	return func(t *TerminalSource) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithTerminalLogger sets the logger.
func WithTerminalLogger(l *logging.Logger) TerminalOption {
	return func(t *TerminalSource) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTerminalSource creates a terminal source.
func NewTerminalSource(opts ...TerminalOption) *TerminalSource {
	t := &TerminalSource{
		timeout: DefaultReleaseTimeout,
		logger:  logging.Null(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns "terminal".
func (t *TerminalSource) Name() string {
	return NameTerminal
}

// SetStatus replaces the status line shown under the banner.
func (t *TerminalSource) SetStatus(s string) {
	t.mu.Lock()
	t.status = s
	screen := t.screen
	t.mu.Unlock()

	if screen != nil {
		// Redraw happens on the event loop
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// Run takes over the terminal and reads keys until ctx is done.
// Ctrl-C returns ErrInterrupted since raw mode swallows SIGINT.
func (t *TerminalSource) Run(ctx context.Context, out chan<- key.Event) error {
	t.mu.Lock()
	if t.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			t.mu.Unlock()
			return fmt.Errorf("terminal: %w", err)
		}
		t.screen = s
	}
	screen := t.screen
	t.mu.Unlock()

	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer screen.Fini()

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	tracker := newReleaseTracker(t.timeout)
	ticker := time.NewTicker(t.timeout / 4)
	defer ticker.Stop()

	t.draw(screen)
	if t.ready != nil {
		close(t.ready)
	}

	// releaseAll reports releases for every held key, best-effort on shutdown.
	releaseAll := func() {
		for _, id := range tracker.drain() {
			select {
			case out <- key.Event{Action: key.Release, Key: id, Timestamp: t.now()}:
			default:
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			releaseAll()
			return nil

		case now := <-ticker.C:
			for _, id := range tracker.expire(now) {
				if !deliver(ctx, out, key.Event{Action: key.Release, Key: id, Timestamp: now}) {
					return nil
				}
			}

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch e := ev.(type) {
			case *tcell.EventKey:
				if isInterrupt(e) {
					releaseAll()
					return ErrInterrupted
				}
				id := convertKey(e)
				if id == key.None {
					continue
				}
				now := t.now()
				if tracker.seen(id, now) {
					t.logger.Debug("terminal press %s", id)
				}
				if !deliver(ctx, out, key.Event{Action: key.Press, Key: id, Timestamp: now}) {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
				t.draw(screen)
			case *tcell.EventInterrupt:
				t.draw(screen)
			}
		}
	}
}

// draw renders the banner and status line.
func (t *TerminalSource) draw(screen tcell.Screen) {
	t.mu.Lock()
	status := t.status
	t.mu.Unlock()

	screen.Clear()
	lines := []string{
		"keydrive: WASD drive, Q stop, , . speed, I insert, Esc leave insert, Ctrl-C quit",
		status,
	}
	style := tcell.StyleDefault
	for y, line := range lines {
		for x, r := range line {
			screen.SetContent(x, y, r, nil, style)
		}
	}
	screen.Show()
}

// isInterrupt reports whether e is the quit chord.
func isInterrupt(e *tcell.EventKey) bool {
	return e.Key() == tcell.KeyCtrlC
}

// convertKey maps a tcell key event to a normalized identifier.
func convertKey(e *tcell.EventKey) key.ID {
	switch e.Key() {
	case tcell.KeyRune:
		return key.FromRune(e.Rune())
	case tcell.KeyEscape:
		return key.Escape
	case tcell.KeyEnter:
		return key.Enter
	case tcell.KeyTab:
		return key.Tab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.Backspace
	case tcell.KeyDelete:
		return key.Delete
	case tcell.KeyInsert:
		return key.Insert
	case tcell.KeyHome:
		return key.Home
	case tcell.KeyEnd:
		return key.End
	case tcell.KeyPgUp:
		return key.PageUp
	case tcell.KeyPgDn:
		return key.PageDown
	case tcell.KeyUp:
		return key.Up
	case tcell.KeyDown:
		return key.Down
	case tcell.KeyLeft:
		return key.Left
	case tcell.KeyRight:
		return key.Right
	default:
		return key.None
	}
}
