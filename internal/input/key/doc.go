// Package key provides normalized key identifiers and key events for the input system.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - ID: A stable identifier for a physical key, independent of the event source
//   - Action: Whether the key went down (Press) or up (Release)
//   - Event: A single press or release with its timestamp
//
// # Normalization
//
// Every event source maps its native key codes onto the same identifiers:
//
//   - Printable keys become their lowercase character: "w", "a", ",", "."
//   - Non-printable keys become a fixed symbolic name: "space", "escape", "enter"
//
// Shift never changes the identifier, so holding Shift+W is still "w". Left and
// right modifiers have separate identifiers ("shift_l", "shift_r"). Names are
// accepted case-insensitively with the usual aliases ("Esc", "<Esc>", "Key.esc").
package key
