package app

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/keydrive/internal/config"
	"github.com/dshills/keydrive/internal/cue"
	"github.com/dshills/keydrive/internal/input/key"
	"github.com/dshills/keydrive/internal/input/mode"
	"github.com/dshills/keydrive/internal/input/source"
	"github.com/dshills/keydrive/internal/logging"
	"github.com/dshills/keydrive/internal/translator"
	"github.com/dshills/keydrive/internal/transport"
)

// eventBuffer is the number of key events the source may run ahead.
const eventBuffer = 64

// Options configures a session.
type Options struct {
	// Source produces key events. Required.
	Source source.Source

	// Conn receives commands. Required.
	Conn transport.Conn

	// Cue is told about mode changes. Defaults to silence.
	Cue cue.Cue

	// Logger defaults to a null logger.
	Logger *logging.Logger

	// Debounce is the speed key window. Zero means translator.DefaultDebounceWindow.
	Debounce time.Duration

	// NoDebounce turns the speed key window off.
	NoDebounce bool

	// QueueSize bounds the commands waiting for the link.
	QueueSize int

	// Clock overrides time.Now for the translator.
	Clock func() time.Time

	// Reload, when set, watches the config file and applies its log level live.
	Reload *config.Options

	// KeepLogLevel ignores log level changes on reload (set by a command line flag).
	KeepLogLevel bool
}

// statusDisplay is implemented by sources that show a status line.
type statusDisplay interface {
	SetStatus(s string)
}

// Application is one teleop session.
type Application struct {
	mu sync.RWMutex

	id      uuid.UUID
	opts    Options
	logger  *logging.Logger
	metrics *Metrics

	translator *translator.Translator

	running atomic.Bool
}

// New creates a session. It does not open anything.
func New(opts Options) (*Application, error) {
	if opts.Source == nil {
		return nil, ErrNoSource
	}
	if opts.Conn == nil {
		return nil, ErrNoConn
	}
	if opts.Cue == nil {
		opts.Cue = cue.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Null()
	}

	id := uuid.New()
	return &Application{
		id:      id,
		opts:    opts,
		logger:  opts.Logger.WithField("session", id.String()),
		metrics: NewMetrics(),
	}, nil
}

// Run translates keys until ctx is done, the source stops, or a write fails.
// A quit from the source (Ctrl-C on the terminal) ends the session without error.
// The source, link and cue are closed before Run returns.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sink := newLinkSink(app.opts.Conn, app.metrics, app.opts.QueueSize)

	window := app.opts.Debounce
	switch {
	case app.opts.NoDebounce:
		window = 0
	case window <= 0:
		window = translator.DefaultDebounceWindow
	}

	trOpts := []translator.Option{
		translator.WithLogger(app.logger.WithComponent("translator")),
		translator.WithDebounceWindow(window),
		translator.WithModeObserver(app.modeChanged),
	}
	if app.opts.Clock != nil {
		trOpts = append(trOpts, translator.WithClock(app.opts.Clock))
	}
	tr := translator.New(sink, trOpts...)

	app.mu.Lock()
	app.translator = tr
	app.mu.Unlock()

	app.showMode(tr.Mode())

	if app.opts.Reload != nil {
		if stop := app.watchConfig(*app.opts.Reload); stop != nil {
			defer stop()
		}
	}

	events := make(chan key.Event, eventBuffer)
	srcErr := make(chan error, 1)
	go app.runSource(ctx, events, srcErr)

	app.logger.Info("session started: source=%s", app.opts.Source.Name())

	srcDone, runErr := app.loop(ctx, tr, events, srcErr, sink)

	cancel()
	if !srcDone {
		if err := <-srcErr; err != nil && runErr == nil && !isQuit(err) {
			runErr = NewComponentError("source", "read", err)
		}
	}

	// Apply whatever the source delivered on its way out
	for drained := false; !drained; {
		select {
		case ev := <-events:
			tr.Handle(ev)
		default:
			drained = true
		}
	}

	closeErr := app.shutdown(sink, runErr)
	if runErr == nil {
		runErr = closeErr
	}
	return runErr
}

// loop is the main event loop. It reports whether the source has returned.
func (app *Application) loop(ctx context.Context, tr *translator.Translator, events <-chan key.Event, srcErr <-chan error, sink *linkSink) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			return false, nil

		case ev := <-events:
			timer := StartTimer()
			tr.Handle(ev)
			app.metrics.RecordEvent(timer.Elapsed())

		case err := <-srcErr:
			if err == nil || isQuit(err) {
				app.logger.Info("source %s stopped", app.opts.Source.Name())
				return true, nil
			}
			return true, NewComponentError("source", "read", err)

		case <-sink.Failed():
			return false, NewComponentError("serial", "write", sink.Err())
		}
	}
}

func (app *Application) runSource(ctx context.Context, out chan<- key.Event, errc chan<- error) {
	defer func() {
		if r := recover(); r != nil {
			errc <- &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	errc <- app.opts.Source.Run(ctx, out)
}

// shutdown closes components in reverse order of use.
func (app *Application) shutdown(sink *linkSink, runErr error) error {
	var errs ErrorList

	// A write failure is already the run error
	if err := sink.Close(); err != nil && runErr == nil {
		errs.Add(NewComponentError("serial", "flush", err))
	}
	if err := app.opts.Conn.Close(); err != nil {
		errs.Add(NewComponentError("serial", "close", err))
	}
	if err := app.opts.Cue.Close(); err != nil {
		errs.Add(NewComponentError("sound", "close", err))
	}

	s := app.metrics.Snapshot()
	st := app.Translator().Stats()
	app.logger.Info("session ended after %s: %d presses, %d releases, %d commands written, %d speed repeats suppressed, %d mode changes",
		s.Uptime.Round(time.Millisecond), st.Presses, st.Releases, s.WriteCount, st.SpeedSuppressed, st.ModeChanges)
	switch c := app.opts.Conn.(type) {
	case *transport.Link:
		ls := c.Stats()
		app.logger.Info("link %s: %d commands, %d bytes, last write %s",
			c.Device(), ls.Commands, ls.Bytes, ls.LastWrite.Format(time.TimeOnly))
	case *transport.DryRun:
		app.logger.Info("dry run: %d commands", c.Count())
	}
	if runErr != nil {
		app.logger.Error("session failed: %v", runErr)
	}

	return errs.AsError()
}

// modeChanged runs inside the translator's cycle; it must not call back into it.
func (app *Application) modeChanged(from, to mode.Mode) {
	app.metrics.RecordModeChange()
	app.opts.Cue.ModeChanged(from, to)
	app.showMode(to)
}

func (app *Application) showMode(m mode.Mode) {
	if d, ok := app.opts.Source.(statusDisplay); ok {
		d.SetStatus(fmt.Sprintf("-- %s --  link: %s", m.DisplayName(), app.linkName()))
	}
}

func (app *Application) linkName() string {
	switch c := app.opts.Conn.(type) {
	case *transport.Link:
		return c.Device()
	case *transport.DryRun:
		return "dry-run"
	default:
		return "custom"
	}
}

// watchConfig applies reloaded log levels. It returns nil if watching failed.
func (app *Application) watchConfig(opts config.Options) func() {
	w, err := config.Watch(opts, 200*time.Millisecond, func(cfg *config.Config, err error) {
		if err != nil {
			app.logger.Warn("config reload: %v", err)
			return
		}
		if app.opts.KeepLogLevel {
			return
		}
		level := logging.ParseLevel(cfg.Logging.Level)
		if level != app.logger.Level() {
			app.logger.SetLevel(level)
			app.logger.Info("log level now %s", level)
		}
	})
	if err != nil {
		app.logger.Warn("config watch %s: %v", opts.Path, err)
		return nil
	}
	app.logger.Debug("watching %s", opts.Path)
	return func() { _ = w.Close() }
}

func isQuit(err error) bool {
	return errors.Is(err, source.ErrInterrupted) || errors.Is(err, ErrQuit)
}

// ID returns the session id.
func (app *Application) ID() uuid.UUID {
	return app.id
}

// Metrics returns the session metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Translator returns the translator of the current or last run, nil before Run.
func (app *Application) Translator() *translator.Translator {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.translator
}
