// Package protocol defines the ASCII command protocol spoken to the robot.
//
// Every command is a complete string with no framing or checksum:
//
//	C21<code>E      normal-mode command, one code byte
//	C22<payload>E   insert-mode relay, payload is a character, " " or NUL
//
// The prefix distinguishes the two sub-protocols and every command ends with a
// literal 'E'. Payloads are normalized key identifiers, which are always lower
// case, so the terminator never occurs inside a command and a byte stream can
// be split back into commands with ScanCommands.
package protocol
