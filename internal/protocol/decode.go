package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned for strings that are not protocol commands.
var ErrMalformed = errors.New("malformed command")

// Kind classifies a decoded command.
type Kind uint8

const (
	KindMotion Kind = iota + 1
	KindSpeed
	KindEnterInsert
	KindInsertChar
	KindInsertSpace
	KindInsertExit
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMotion:
		return "motion"
	case KindSpeed:
		return "speed"
	case KindEnterInsert:
		return "enter-insert"
	case KindInsertChar:
		return "insert-char"
	case KindInsertSpace:
		return "insert-space"
	case KindInsertExit:
		return "insert-exit"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Decoded is the structured form of a command.
type Decoded struct {
	Kind Kind

	// Code is set for normal-mode commands.
	Code Code

	// Payload is set for insert-mode commands.
	Payload string
}

// Insert returns true if the command belongs to the insert sub-protocol.
func (d Decoded) Insert() bool {
	return d.Kind == KindInsertChar || d.Kind == KindInsertSpace || d.Kind == KindInsertExit
}

// Encode rebuilds the command text.
func (d Decoded) Encode() Command {
	switch d.Kind {
	case KindInsertSpace:
		return InsertSpace
	case KindInsertExit:
		return InsertExit
	case KindInsertChar:
		return InsertChar(d.Payload)
	default:
		return Normal(d.Code)
	}
}

// Decode parses a single command string.
func Decode(s string) (Decoded, error) {
	if !strings.HasSuffix(s, Terminator) {
		return Decoded{}, fmt.Errorf("%q: missing terminator: %w", s, ErrMalformed)
	}

	switch {
	case strings.HasPrefix(s, NormalPrefix):
		body := s[len(NormalPrefix) : len(s)-len(Terminator)]
		if len(body) != 1 {
			return Decoded{}, fmt.Errorf("%q: normal command needs one code byte: %w", s, ErrMalformed)
		}
		code := Code(body[0])
		if !code.Valid() {
			return Decoded{}, fmt.Errorf("%q: unknown code: %w", s, ErrMalformed)
		}
		kind := KindMotion
		switch {
		case code.IsSpeed():
			kind = KindSpeed
		case code == EnterInsert:
			kind = KindEnterInsert
		}
		return Decoded{Kind: kind, Code: code}, nil

	case strings.HasPrefix(s, InsertPrefix):
		payload := s[len(InsertPrefix) : len(s)-len(Terminator)]
		switch payload {
		case "":
			return Decoded{}, fmt.Errorf("%q: empty insert payload: %w", s, ErrMalformed)
		case " ":
			return Decoded{Kind: KindInsertSpace, Payload: payload}, nil
		case ExitPayload:
			return Decoded{Kind: KindInsertExit, Payload: payload}, nil
		}
		return Decoded{Kind: KindInsertChar, Payload: payload}, nil
	}

	return Decoded{}, fmt.Errorf("%q: unknown prefix: %w", s, ErrMalformed)
}

// ScanCommands is a bufio.SplitFunc that splits a raw link stream into commands.
// Bytes before a command prefix are skipped.
func ScanCommands(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := bytes.Index(data, []byte("C2"))
	if start < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		// Keep a trailing 'C' in case the prefix is split across reads
		if n := len(data); n > 0 && data[n-1] == 'C' {
			return n - 1, nil, nil
		}
		return len(data), nil, nil
	}

	// Prefix plus at least one payload byte before the terminator
	bodyStart := start + len(NormalPrefix) + 1
	if bodyStart > len(data) {
		if atEOF {
			return len(data), nil, nil
		}
		return start, nil, nil
	}
	end := bytes.IndexByte(data[bodyStart:], Terminator[0])
	if end < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		return start, nil, nil
	}
	end += bodyStart

	return end + 1, data[start : end+1], nil
}
