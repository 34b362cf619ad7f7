package transport

import (
	"errors"
	"fmt"
)

// Transport errors.
var (
	// ErrPortClosed is returned when writing to a closed link.
	ErrPortClosed = errors.New("port closed")

	// ErrWriteIncomplete is returned when the device accepted fewer bytes than the command.
	ErrWriteIncomplete = errors.New("incomplete write")

	// ErrNoDevice is returned when no device path is configured.
	ErrNoDevice = errors.New("no serial device configured")
)

// ConnectionError is a failure of the physical link.
type ConnectionError struct {
	Op     string // Operation name ("open", "write", "close")
	Device string // Device path
	Err    error  // Underlying error
}

func (e *ConnectionError) Error() string {
	if e == nil {
		return ""
	}
	msg := "serial " + e.Op
	if e.Device != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Device)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConnectionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
