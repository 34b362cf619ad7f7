package transport

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/dshills/keydrive/internal/logging"
	"github.com/dshills/keydrive/internal/protocol"
)

// DefaultBaud matches the robot's UART configuration.
const DefaultBaud = 9600

// Conn is a command link.
type Conn interface {
	// WriteCommand writes the whole command or returns an error.
	WriteCommand(cmd protocol.Command) error
	// Close releases the link.
	Close() error
}

// Port is the subset of serial.Port used by Link.
type Port interface {
	io.Writer
	Drain() error
	Close() error
}

// Opener opens a serial port.
type Opener func(device string, mode *serial.Mode) (Port, error)

// serialOpener opens real hardware.
func serialOpener(device string, mode *serial.Mode) (Port, error) {
	return serial.Open(device, mode)
}

// Config describes the serial link.
type Config struct {
	// Device is the port path, e.g. /dev/ttyUSB0 or COM3.
	Device string
	// Baud is the line speed. Zero means DefaultBaud.
	Baud int
	// Drain waits for each command to leave the UART before returning.
	Drain bool
}

// Mode returns the serial mode for the config (8N1).
func (c Config) Mode() *serial.Mode {
	baud := c.Baud
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Stats counts link activity.
type Stats struct {
	Commands  uint64
	Bytes     uint64
	LastWrite time.Time
}

// Link writes commands to a serial port.
type Link struct {
	mu     sync.Mutex
	cfg    Config
	port   Port
	logger *logging.Logger
	closed bool
	stats  Stats
}

// LinkOption configures a Link.
type LinkOption func(*linkOptions)

type linkOptions struct {
	opener Opener
	logger *logging.Logger
}

// WithOpener replaces the port opener (for tests and alternative drivers).
func WithOpener(o Opener) LinkOption {
	return func(opts *linkOptions) {
		if o != nil {
			opts.opener = o
		}
	}
}

// WithLinkLogger sets the logger.
func WithLinkLogger(l *logging.Logger) LinkOption {
	return func(opts *linkOptions) {
		if l != nil {
			opts.logger = l
		}
	}
}

// Open opens the serial device described by cfg.
func Open(cfg Config, opts ...LinkOption) (*Link, error) {
	o := linkOptions{opener: serialOpener, logger: logging.Null()}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Device == "" {
		return nil, &ConnectionError{Op: "open", Err: ErrNoDevice}
	}

	mode := cfg.Mode()
	port, err := o.opener(cfg.Device, mode)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Device: cfg.Device, Err: err}
	}

	o.logger.Info("opened %s at %d baud", cfg.Device, mode.BaudRate)

	return &Link{cfg: cfg, port: port, logger: o.logger}, nil
}

// Device returns the device path.
func (l *Link) Device() string {
	return l.cfg.Device
}

// WriteCommand writes cmd in full.
func (l *Link) WriteCommand(cmd protocol.Command) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return &ConnectionError{Op: "write", Device: l.cfg.Device, Err: ErrPortClosed}
	}

	data := cmd.Bytes()
	n, err := l.port.Write(data)
	if err != nil {
		return &ConnectionError{Op: "write", Device: l.cfg.Device, Err: err}
	}
	if n != len(data) {
		return &ConnectionError{
			Op:     "write",
			Device: l.cfg.Device,
			Err:    fmt.Errorf("%d of %d bytes: %w", n, len(data), ErrWriteIncomplete),
		}
	}

	if l.cfg.Drain {
		if err := l.port.Drain(); err != nil {
			return &ConnectionError{Op: "drain", Device: l.cfg.Device, Err: err}
		}
	}

	l.stats.Commands++
	l.stats.Bytes += uint64(n)
	l.stats.LastWrite = time.Now()
	return nil
}

// Close closes the port. Closing twice is a no-op.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if err := l.port.Close(); err != nil {
		return &ConnectionError{Op: "close", Device: l.cfg.Device, Err: err}
	}
	l.logger.Info("closed %s", l.cfg.Device)
	return nil
}

// Stats returns a snapshot of the link counters.
func (l *Link) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
