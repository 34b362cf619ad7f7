package protocol

import "strconv"

// Wire format constants.
const (
	NormalPrefix = "C21"
	InsertPrefix = "C22"
	Terminator   = "E"

	// ExitPayload is the insert-mode sentinel sent when leaving insert mode.
	ExitPayload = "\x00"
)

// Command is a complete protocol string ready to be written to the link.
type Command string

// Pre-built insert-mode commands.
const (
	InsertSpace Command = InsertPrefix + " " + Terminator
	InsertExit  Command = InsertPrefix + ExitPayload + Terminator
)

// Normal builds the normal-mode command for code.
func Normal(code Code) Command {
	return Command(NormalPrefix + string(rune(code)) + Terminator)
}

// InsertChar builds the insert-mode relay command carrying payload verbatim.
func InsertChar(payload string) Command {
	return Command(InsertPrefix + payload + Terminator)
}

// String returns the raw command text.
func (c Command) String() string {
	return string(c)
}

// Bytes returns the command as it is written to the link.
func (c Command) Bytes() []byte {
	return []byte(c)
}

// Quote returns a printable form for logs, with NUL escaped.
func (c Command) Quote() string {
	return strconv.Quote(string(c))
}
