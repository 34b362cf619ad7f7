package app

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keydrive/internal/config"
	"github.com/dshills/keydrive/internal/cue"
	"github.com/dshills/keydrive/internal/input/key"
	"github.com/dshills/keydrive/internal/input/mode"
	"github.com/dshills/keydrive/internal/input/source"
	"github.com/dshills/keydrive/internal/protocol"
	"github.com/dshills/keydrive/internal/transport"
)

// scriptSource delivers its events, then returns end, or waits for cancellation if end is nil.
type scriptSource struct {
	events []key.Event
	end    error

	mu       sync.Mutex
	statuses []string
}

func (s *scriptSource) Name() string { return "script" }

func (s *scriptSource) Run(ctx context.Context, out chan<- key.Event) error {
	for _, ev := range s.events {
		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
	if s.end != nil {
		return s.end
	}
	<-ctx.Done()
	return nil
}

func (s *scriptSource) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func (s *scriptSource) Statuses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statuses...)
}

// fakeConn records commands and can fail on a given write.
type fakeConn struct {
	mu      sync.Mutex
	written []string
	failAt  int // 1-based write that fails, 0 never
	err     error
	closed  bool
	wrote   chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{wrote: make(chan struct{}, 64)}
}

func (c *fakeConn) WriteCommand(cmd protocol.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAt > 0 && len(c.written)+1 == c.failAt {
		return c.err
	}
	c.written = append(c.written, cmd.String())
	select {
	case c.wrote <- struct{}{}:
	default:
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) Written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type recordingCue struct {
	mu      sync.Mutex
	changes []string
	closed  bool
}

func (r *recordingCue) ModeChanged(from, to mode.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, from.String()+">"+to.String())
}

func (r *recordingCue) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func press(id key.ID) key.Event   { return key.NewPress(id) }
func release(id key.ID) key.Event { return key.NewRelease(id) }

func runWithTimeout(t *testing.T, app *Application, ctx context.Context) error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- app.Run(ctx) }()
	select {
	case err := <-errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestNew_RequiresComponents(t *testing.T) {
	_, err := New(Options{Conn: newFakeConn()})
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = New(Options{Source: &scriptSource{}})
	assert.ErrorIs(t, err, ErrNoConn)

	app, err := New(Options{Source: &scriptSource{}, Conn: newFakeConn()})
	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, [16]byte(app.ID()))
	assert.Nil(t, app.Translator())
}

func TestRun_Session(t *testing.T) {
	src := &scriptSource{
		events: []key.Event{
			press("w"),
			press("a"),
			release("a"),
			release("w"),
			press("i"),
			release("i"),
			press("h"),
			press(key.Space),
			press(key.Escape),
			press("q"),
		},
		end: source.ErrInterrupted,
	}
	conn := newFakeConn()
	c := &recordingCue{}

	app, err := New(Options{Source: src, Conn: conn, Cue: c, Debounce: 100 * time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, runWithTimeout(t, app, context.Background()))

	assert.Equal(t, []string{
		"C21FE",
		"C21LE",
		"C21IE",
		"C22hE",
		"C22 E",
		"C22\x00E",
		"C21SE",
	}, conn.Written())
	assert.True(t, conn.IsClosed())

	assert.Equal(t, []string{"normal>insert", "insert>normal"}, c.changes)
	assert.True(t, c.closed)

	statuses := src.Statuses()
	require.Len(t, statuses, 3)
	assert.Contains(t, statuses[0], "NORMAL")
	assert.Contains(t, statuses[1], "INSERT")
	assert.Contains(t, statuses[2], "NORMAL")

	m := app.Metrics().Snapshot()
	assert.Equal(t, uint64(7), m.WriteCount)
	assert.Equal(t, uint64(2), m.ModeChanges)
	assert.Equal(t, mode.Normal, app.Translator().Mode())
}

func TestRun_SpeedDebounce(t *testing.T) {
	now := time.Unix(1000, 0)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(10 * time.Millisecond)
		return now
	}

	src := &scriptSource{
		events: []key.Event{
			press(","), release(","),
			press(","), release(","),
			press("."),
		},
		end: source.ErrInterrupted,
	}
	conn := newFakeConn()

	app, err := New(Options{Source: src, Conn: conn, Clock: clock, Debounce: 100 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, runWithTimeout(t, app, context.Background()))

	assert.Equal(t, []string{"C21,E", "C21.E"}, conn.Written())
	assert.Equal(t, uint64(1), app.Translator().Stats().SpeedSuppressed)
}

// tickingClock advances 10ms on every reading.
func tickingClock() func() time.Time {
	now := time.Unix(1000, 0)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(10 * time.Millisecond)
		return now
	}
}

func TestRun_DebounceWindowSettings(t *testing.T) {
	tests := []struct {
		name       string
		debounce   time.Duration
		noDebounce bool
		want       []string
	}{
		{"zero value uses default window", 0, false, []string{"C21,E", "C21.E"}},
		{"explicit window", 5 * time.Millisecond, false, []string{"C21,E", "C21,E", "C21.E"}},
		{"disabled", 0, true, []string{"C21,E", "C21,E", "C21.E"}},
		{"disabled wins over window", time.Second, true, []string{"C21,E", "C21,E", "C21.E"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &scriptSource{
				events: []key.Event{
					press(","), release(","),
					press(","), release(","),
					press("."),
				},
				end: source.ErrInterrupted,
			}
			conn := newFakeConn()

			app, err := New(Options{
				Source:     src,
				Conn:       conn,
				Clock:      tickingClock(),
				Debounce:   tt.debounce,
				NoDebounce: tt.noDebounce,
			})
			require.NoError(t, err)
			require.NoError(t, runWithTimeout(t, app, context.Background()))

			assert.Equal(t, tt.want, conn.Written())
		})
	}
}

func TestRun_WriteFailure(t *testing.T) {
	boom := errors.New("cable pulled")
	conn := newFakeConn()
	conn.failAt = 2
	conn.err = &transport.ConnectionError{Op: "write", Device: "/dev/ttyUSB0", Err: boom}

	src := &scriptSource{events: []key.Event{press("w"), press("s"), press("q")}}
	app, err := New(Options{Source: src, Conn: conn})
	require.NoError(t, err)

	err = runWithTimeout(t, app, context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var connErr *transport.ConnectionError
	assert.ErrorAs(t, err, &connErr)

	var cerr *ComponentError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "serial", cerr.Component)

	assert.Equal(t, []string{"C21FE"}, conn.Written())
	assert.True(t, conn.IsClosed())
	assert.Equal(t, uint64(1), app.Metrics().Snapshot().WriteErrors)
}

func TestRun_SourceError(t *testing.T) {
	gone := errors.New("device gone")
	app, err := New(Options{Source: &scriptSource{end: gone}, Conn: newFakeConn()})
	require.NoError(t, err)

	err = runWithTimeout(t, app, context.Background())
	assert.ErrorIs(t, err, gone)

	var cerr *ComponentError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "source", cerr.Component)
}

type panicSource struct{}

func (panicSource) Name() string { return "panic" }
func (panicSource) Run(context.Context, chan<- key.Event) error {
	panic("driver bug")
}

func TestRun_SourcePanic(t *testing.T) {
	app, err := New(Options{Source: panicSource{}, Conn: newFakeConn()})
	require.NoError(t, err)

	err = runWithTimeout(t, app, context.Background())
	var perr *RecoveredPanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "driver bug", perr.Value)
}

func TestRun_Cancel(t *testing.T) {
	conn := newFakeConn()
	src := &scriptSource{events: []key.Event{press("d")}}
	app, err := New(Options{Source: src, Conn: conn})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- app.Run(ctx) }()

	select {
	case <-conn.wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("no command written")
	}

	// A second Run while the first is active is refused
	assert.ErrorIs(t, app.Run(context.Background()), ErrAlreadyRunning)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	assert.Equal(t, []string{"C21XE"}, conn.Written())
}

func TestComponents(t *testing.T) {
	cfg := config.Default()
	cfg.Serial.DryRun = true
	cfg.Input.Source = config.SourceTerminal
	cfg.Translator.Debounce = 40 * time.Millisecond

	var out bytes.Buffer
	opts, err := Components(cfg, nil, &out)
	require.NoError(t, err)

	assert.IsType(t, &source.TerminalSource{}, opts.Source)
	assert.IsType(t, &transport.DryRun{}, opts.Conn)
	assert.Equal(t, cue.Noop{}, opts.Cue)
	assert.Equal(t, 40*time.Millisecond, opts.Debounce)
	assert.False(t, opts.NoDebounce)

	require.NoError(t, opts.Conn.WriteCommand(protocol.Normal(protocol.Forward)))
	assert.Equal(t, "\"C21FE\"\n", out.String())
}

func TestComponents_ZeroDebounceDisables(t *testing.T) {
	cfg := config.Default()
	cfg.Serial.DryRun = true
	cfg.Input.Source = config.SourceTerminal
	cfg.Translator.Debounce = 0

	opts, err := Components(cfg, nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, opts.NoDebounce)
}

func TestComponents_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Source = "joystick"
	_, err := Components(cfg, nil, nil)
	var cerr *ComponentError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "source", cerr.Component)

	cfg = config.Default()
	cfg.Input.Source = config.SourceTerminal
	cfg.Serial.Device = ""
	_, err = Components(cfg, nil, nil)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "serial", cerr.Component)
	assert.ErrorIs(t, err, transport.ErrNoDevice)
}
