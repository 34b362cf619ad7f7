// Package transport carries protocol commands to the robot.
//
// Link writes commands to a serial device opened with go.bug.st/serial.
// DryRun logs commands instead of writing them, for use without hardware.
// Both report failures as *ConnectionError so callers can tell a broken link
// apart from anything else; a session should stop on the first such error
// rather than retry with a stale command queue.
package transport
