package transport

import (
	"fmt"
	"io"
	"sync"

	"github.com/dshills/keydrive/internal/logging"
	"github.com/dshills/keydrive/internal/protocol"
)

// DryRun is a Conn that reports commands instead of sending them.
type DryRun struct {
	mu     sync.Mutex
	out    io.Writer
	logger *logging.Logger
	closed bool
	count  uint64
}

// NewDryRun returns a DryRun writing one quoted command per line to out.
// out may be nil to only log.
func NewDryRun(out io.Writer, logger *logging.Logger) *DryRun {
	if logger == nil {
		logger = logging.Null()
	}
	return &DryRun{out: out, logger: logger}
}

// WriteCommand records cmd.
func (d *DryRun) WriteCommand(cmd protocol.Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return &ConnectionError{Op: "write", Device: "dry-run", Err: ErrPortClosed}
	}

	d.count++
	d.logger.Info("dry-run %s", cmd.Quote())
	if d.out != nil {
		if _, err := fmt.Fprintln(d.out, cmd.Quote()); err != nil {
			return &ConnectionError{Op: "write", Device: "dry-run", Err: err}
		}
	}
	return nil
}

// Count returns how many commands were written.
func (d *DryRun) Count() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Close marks the link closed.
func (d *DryRun) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
