package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/dshills/keydrive/internal/input/key"
	"github.com/dshills/keydrive/internal/logging"
)

// eventReader is the part of *evdev.InputDevice the source reads from.
type eventReader interface {
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

// EvdevSource reads a Linux input device.
type EvdevSource struct {
	path   string
	grab   bool
	logger *logging.Logger

	// open is replaced in tests.
	open func(path string) (eventReader, string, error)
}

// EvdevOption configures an EvdevSource.
type EvdevOption func(*EvdevSource)

// WithDevicePath reads the given /dev/input/event* device instead of auto-detecting.
func WithDevicePath(path string) EvdevOption {
	return func(s *EvdevSource) {
		s.path = path
	}
}

// WithGrab takes exclusive access, so keystrokes do not reach other programs.
func WithGrab(grab bool) EvdevOption {
	return func(s *EvdevSource) {
		s.grab = grab
	}
}

// WithEvdevLogger sets the logger.
func WithEvdevLogger(l *logging.Logger) EvdevOption {
	return func(s *EvdevSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewEvdevSource creates an evdev source.
func NewEvdevSource(opts ...EvdevOption) *EvdevSource {
	s := &EvdevSource{logger: logging.Null()}
	s.open = s.openDevice
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "evdev".
func (s *EvdevSource) Name() string {
	return NameEvdev
}

// openDevice opens the configured device, or the first keyboard found.
func (s *EvdevSource) openDevice(path string) (eventReader, string, error) {
	if path == "" {
		kbds, err := ListKeyboards()
		if err != nil {
			return nil, "", err
		}
		if len(kbds) == 0 {
			return nil, "", ErrNoKeyboard
		}
		path = kbds[0].Path
	}

	dev, err := evdev.Open(path)
	if err != nil {
		return nil, path, err
	}
	if s.grab {
		if err := dev.Grab(); err != nil {
			_ = dev.Close()
			return nil, path, fmt.Errorf("grab: %w", err)
		}
	}
	return dev, path, nil
}

// Run reads the device until ctx is done.
func (s *EvdevSource) Run(ctx context.Context, out chan<- key.Event) error {
	dev, path, err := s.open(s.path)
	if err != nil {
		if path != "" {
			return fmt.Errorf("evdev %s: %w", path, err)
		}
		return fmt.Errorf("evdev: %w", err)
	}
	s.logger.Info("reading keyboard %s", path)

	// Closing the device unblocks ReadOne
	stop := context.AfterFunc(ctx, func() { _ = dev.Close() })
	defer func() {
		if stop() {
			_ = dev.Close()
		}
	}()

	for {
		raw, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("evdev %s: %w", path, err)
		}

		ev, ok := translateEvdev(raw)
		if !ok {
			continue
		}
		if !deliver(ctx, out, ev) {
			return nil
		}
	}
}

// Keyboard is an input device that has letter keys.
type Keyboard struct {
	Path string
	Name string
}

// ListKeyboards returns the input devices that report letter and space keys.
func ListKeyboards() ([]Keyboard, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	var out []Keyboard
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		codes := dev.CapableEvents(evdev.EV_KEY)
		_ = dev.Close()

		if slices.Contains(codes, evdev.KEY_W) && slices.Contains(codes, evdev.KEY_SPACE) {
			out = append(out, Keyboard{Path: p.Path, Name: p.Name})
		}
	}
	return out, nil
}

// timevalTime converts the kernel timestamp of ev.
func timevalTime(ev *evdev.InputEvent) time.Time {
	if ev.Time.Sec == 0 && ev.Time.Usec == 0 {
		return time.Now()
	}
	return time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond))
}
