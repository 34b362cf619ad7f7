//go:build !linux

package source

import (
	"context"
	"fmt"
	"runtime"

	"github.com/dshills/keydrive/internal/input/key"
	"github.com/dshills/keydrive/internal/logging"
)

// EvdevSource is only available on Linux.
type EvdevSource struct{}

// EvdevOption configures an EvdevSource.
type EvdevOption func(*EvdevSource)

// WithDevicePath is accepted for API compatibility.
func WithDevicePath(string) EvdevOption { return func(*EvdevSource) {} }

// WithGrab is accepted for API compatibility.
func WithGrab(bool) EvdevOption { return func(*EvdevSource) {} }

// WithEvdevLogger is accepted for API compatibility.
func WithEvdevLogger(*logging.Logger) EvdevOption { return func(*EvdevSource) {} }

// NewEvdevSource creates a source that always fails with ErrUnsupported.
func NewEvdevSource(...EvdevOption) *EvdevSource {
	return &EvdevSource{}
}

// Name returns "evdev".
func (s *EvdevSource) Name() string {
	return NameEvdev
}

// Run returns ErrUnsupported.
func (s *EvdevSource) Run(context.Context, chan<- key.Event) error {
	return fmt.Errorf("evdev on %s: %w", runtime.GOOS, ErrUnsupported)
}

// Keyboard is an input device that has letter keys.
type Keyboard struct {
	Path string
	Name string
}

// ListKeyboards returns ErrUnsupported.
func ListKeyboards() ([]Keyboard, error) {
	return nil, fmt.Errorf("evdev on %s: %w", runtime.GOOS, ErrUnsupported)
}
