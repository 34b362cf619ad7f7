package app

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"github.com/dshills/keydrive/internal/input/key"
	"github.com/dshills/keydrive/internal/input/source"
	"github.com/dshills/keydrive/internal/logging"
	"github.com/dshills/keydrive/internal/transport"
)

// memPort is a serial port backed by a buffer.
type memPort struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	drained int
}

func (p *memPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Write(b)
}

func (p *memPort) Drain() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drained++
	return nil
}

func (p *memPort) Close() error { return nil }

func bufferLogger() (*logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := logging.DefaultConfig()
	cfg.Output = &buf
	return logging.New(cfg), &buf
}

func TestRun_LogsLinkStats(t *testing.T) {
	port := &memPort{}
	link, err := transport.Open(
		transport.Config{Device: "/dev/ttyTEST", Drain: true},
		transport.WithOpener(func(string, *serial.Mode) (transport.Port, error) { return port, nil }),
	)
	require.NoError(t, err)

	logger, logs := bufferLogger()
	src := &scriptSource{
		events: []key.Event{press("w"), press("i"), press(key.Escape)},
		end:    source.ErrInterrupted,
	}
	app, err := New(Options{Source: src, Conn: link, Logger: logger})
	require.NoError(t, err)
	require.NoError(t, runWithTimeout(t, app, context.Background()))

	assert.Equal(t, "C21FEC21IEC22\x00E", port.buf.String())
	assert.Equal(t, 3, port.drained)
	assert.Contains(t, logs.String(), "link /dev/ttyTEST: 3 commands, 15 bytes")
	assert.Contains(t, logs.String(), "2 mode changes")
}

func TestRun_LogsDryRunCount(t *testing.T) {
	logger, logs := bufferLogger()
	var out bytes.Buffer
	src := &scriptSource{events: []key.Event{press("q")}, end: source.ErrInterrupted}

	app, err := New(Options{Source: src, Conn: transport.NewDryRun(&out, nil), Logger: logger})
	require.NoError(t, err)
	require.NoError(t, runWithTimeout(t, app, context.Background()))

	assert.Equal(t, "\"C21SE\"\n", out.String())
	assert.Contains(t, logs.String(), "dry run: 1 commands")
}
