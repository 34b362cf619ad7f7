package protocol

import "fmt"

// Code is the single byte carried by a normal-mode command.
type Code byte

// Normal-mode command codes.
const (
	Forward       Code = 'F'
	Backward      Code = 'B'
	Stop          Code = 'S'
	ForwardLeft   Code = 'L'
	ForwardRight  Code = 'R'
	BackwardLeft  Code = 'l'
	BackwardRight Code = 'r'
	RotateLeft    Code = 'Z'
	RotateRight   Code = 'X'
	EnterInsert   Code = 'I'
	SpaceAction   Code = ' '
	SpeedDecrease Code = ','
	SpeedIncrease Code = '.'
)

var codeNames = map[Code]string{
	Forward:       "forward",
	Backward:      "backward",
	Stop:          "stop",
	ForwardLeft:   "diagonal-forward-left",
	ForwardRight:  "diagonal-forward-right",
	BackwardLeft:  "diagonal-backward-left",
	BackwardRight: "diagonal-backward-right",
	RotateLeft:    "rotate-left",
	RotateRight:   "rotate-right",
	EnterInsert:   "enter-insert",
	SpaceAction:   "space-action",
	SpeedDecrease: "speed-decrease",
	SpeedIncrease: "speed-increase",
}

// Valid returns true if c is a known code.
func (c Code) Valid() bool {
	_, ok := codeNames[c]
	return ok
}

// IsSpeed returns true for the speed-adjustment pair.
func (c Code) IsSpeed() bool {
	return c == SpeedDecrease || c == SpeedIncrease
}

// String returns the command name.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%q)", rune(c))
}
