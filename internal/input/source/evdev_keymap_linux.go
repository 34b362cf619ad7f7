package source

import (
	evdev "github.com/holoplot/go-evdev"

	"github.com/dshills/keydrive/internal/input/key"
)

// evdevKeys maps evdev key codes to normalized identifiers (US layout).
// Shift is tracked as its own key and never changes the identifier.
var evdevKeys = map[evdev.EvCode]key.ID{
	evdev.KEY_A: "a", evdev.KEY_B: "b", evdev.KEY_C: "c", evdev.KEY_D: "d",
	evdev.KEY_E: "e", evdev.KEY_F: "f", evdev.KEY_G: "g", evdev.KEY_H: "h",
	evdev.KEY_I: "i", evdev.KEY_J: "j", evdev.KEY_K: "k", evdev.KEY_L: "l",
	evdev.KEY_M: "m", evdev.KEY_N: "n", evdev.KEY_O: "o", evdev.KEY_P: "p",
	evdev.KEY_Q: "q", evdev.KEY_R: "r", evdev.KEY_S: "s", evdev.KEY_T: "t",
	evdev.KEY_U: "u", evdev.KEY_V: "v", evdev.KEY_W: "w", evdev.KEY_X: "x",
	evdev.KEY_Y: "y", evdev.KEY_Z: "z",

	evdev.KEY_1: "1", evdev.KEY_2: "2", evdev.KEY_3: "3", evdev.KEY_4: "4",
	evdev.KEY_5: "5", evdev.KEY_6: "6", evdev.KEY_7: "7", evdev.KEY_8: "8",
	evdev.KEY_9: "9", evdev.KEY_0: "0",

	evdev.KEY_MINUS:      "-",
	evdev.KEY_EQUAL:      "=",
	evdev.KEY_LEFTBRACE:  "[",
	evdev.KEY_RIGHTBRACE: "]",
	evdev.KEY_SEMICOLON:  ";",
	evdev.KEY_APOSTROPHE: "'",
	evdev.KEY_GRAVE:      "`",
	evdev.KEY_BACKSLASH:  "\\",
	evdev.KEY_COMMA:      ",",
	evdev.KEY_DOT:        ".",
	evdev.KEY_SLASH:      "/",

	evdev.KEY_SPACE:      key.Space,
	evdev.KEY_ESC:        key.Escape,
	evdev.KEY_ENTER:      key.Enter,
	evdev.KEY_KPENTER:    key.Enter,
	evdev.KEY_TAB:        key.Tab,
	evdev.KEY_BACKSPACE:  key.Backspace,
	evdev.KEY_DELETE:     key.Delete,
	evdev.KEY_INSERT:     key.Insert,
	evdev.KEY_HOME:       key.Home,
	evdev.KEY_END:        key.End,
	evdev.KEY_PAGEUP:     key.PageUp,
	evdev.KEY_PAGEDOWN:   key.PageDown,
	evdev.KEY_UP:         key.Up,
	evdev.KEY_DOWN:       key.Down,
	evdev.KEY_LEFT:       key.Left,
	evdev.KEY_RIGHT:      key.Right,
	evdev.KEY_LEFTSHIFT:  key.ShiftLeft,
	evdev.KEY_RIGHTSHIFT: key.ShiftRight,
	evdev.KEY_LEFTCTRL:   key.CtrlLeft,
	evdev.KEY_RIGHTCTRL:  key.CtrlRight,
	evdev.KEY_LEFTALT:    key.AltLeft,
	evdev.KEY_RIGHTALT:   key.AltRight,
	evdev.KEY_LEFTMETA:   key.MetaLeft,
	evdev.KEY_RIGHTMETA:  key.MetaRight,
	evdev.KEY_CAPSLOCK:   key.CapsLock,
}

// evdev key values.
const (
	evdevRelease = 0
	evdevPress   = 1
	evdevRepeat  = 2
)

// translateEvdev converts a raw input event into a key event.
// Autorepeat is reported as a press, like the first press.
func translateEvdev(ev *evdev.InputEvent) (key.Event, bool) {
	if ev == nil || ev.Type != evdev.EV_KEY {
		return key.Event{}, false
	}

	id, ok := evdevKeys[ev.Code]
	if !ok {
		return key.Event{}, false
	}

	var action key.Action
	switch ev.Value {
	case evdevPress, evdevRepeat:
		action = key.Press
	case evdevRelease:
		action = key.Release
	default:
		return key.Event{}, false
	}

	return key.Event{
		Action:    action,
		Key:       id,
		Timestamp: timevalTime(ev),
	}, true
}
