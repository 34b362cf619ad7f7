package key

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ID is a normalized key identifier.
// Printable keys use their lowercase character, other keys a symbolic name.
type ID string

// Symbolic identifiers for non-printable keys.
const (
	None      ID = ""
	Space     ID = "space"
	Escape    ID = "escape"
	Enter     ID = "enter"
	Tab       ID = "tab"
	Backspace ID = "backspace"
	Delete    ID = "delete"
	Insert    ID = "insert"
	Home      ID = "home"
	End       ID = "end"
	PageUp    ID = "pageup"
	PageDown  ID = "pagedown"
	Up        ID = "up"
	Down      ID = "down"
	Left      ID = "left"
	Right     ID = "right"
	CapsLock  ID = "capslock"
)

// Modifier identifiers. Left and right keys stay distinct so releasing one
// side does not drop the other from the held set.
const (
	ShiftLeft  ID = "shift_l"
	ShiftRight ID = "shift_r"
	CtrlLeft   ID = "ctrl_l"
	CtrlRight  ID = "ctrl_r"
	AltLeft    ID = "alt_l"
	AltRight   ID = "alt_r"
	MetaLeft   ID = "meta_l"
	MetaRight  ID = "meta_r"
)

// String returns the identifier text.
func (id ID) String() string {
	return string(id)
}

// FromRune returns the identifier for a typed character.
// The space character maps to Space; letters are lowercased.
func FromRune(r rune) ID {
	switch r {
	case ' ':
		return Space
	case 0x1b:
		return Escape
	case '\r', '\n':
		return Enter
	case '\t':
		return Tab
	case 0x7f, '\b':
		return Backspace
	}
	if !unicode.IsPrint(r) {
		return None
	}
	return ID(string(unicode.ToLower(r)))
}

// keyNameMap maps key names (lowercase) to identifiers.
var keyNameMap = map[string]ID{
	"space":     Space,
	"spc":       Space,
	"escape":    Escape,
	"esc":       Escape,
	"enter":     Enter,
	"return":    Enter,
	"cr":        Enter,
	"tab":       Tab,
	"backspace": Backspace,
	"bs":        Backspace,
	"delete":    Delete,
	"del":       Delete,
	"insert":    Insert,
	"ins":       Insert,
	"home":      Home,
	"end":       End,
	"pageup":    PageUp,
	"pgup":      PageUp,
	"page_up":   PageUp,
	"pagedown":  PageDown,
	"pgdn":      PageDown,
	"page_down": PageDown,
	"up":        Up,
	"down":      Down,
	"left":      Left,
	"right":     Right,
	"shift":     ShiftLeft,
	"shift_l":   ShiftLeft,
	"shift_r":   ShiftRight,
	"ctrl":      CtrlLeft,
	"control":   CtrlLeft,
	"ctrl_l":    CtrlLeft,
	"ctrl_r":    CtrlRight,
	"alt":       AltLeft,
	"alt_l":     AltLeft,
	"alt_r":     AltRight,
	"alt_gr":    AltRight,
	"meta":      MetaLeft,
	"meta_l":    MetaLeft,
	"meta_r":    MetaRight,
	"cmd":       MetaLeft,
	"cmd_r":     MetaRight,
	"super":     MetaLeft,
	"capslock":  CapsLock,
	"caps_lock": CapsLock,
}

// FromName returns the identifier for a key name (case-insensitive).
// Single characters, including a lone space, are normalized like FromRune.
// Vim-style "<Esc>" and "Key.esc" spellings are accepted.
// Returns None if the name is not recognized.
func FromName(name string) ID {
	if utf8.RuneCountInString(name) != 1 {
		name = strings.TrimSpace(name)
	}
	if name == "" {
		return None
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return FromRune(r)
	}

	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "<") && strings.HasSuffix(lower, ">") {
		lower = lower[1 : len(lower)-1]
	}
	lower = strings.TrimPrefix(lower, "key.")

	if id, ok := keyNameMap[lower]; ok {
		return id
	}
	return None
}

// Names returns the canonical symbolic identifiers.
func Names() []ID {
	return []ID{
		Space, Escape, Enter, Tab, Backspace, Delete, Insert, Home, End,
		PageUp, PageDown, Up, Down, Left, Right, CapsLock,
		ShiftLeft, ShiftRight, CtrlLeft, CtrlRight, AltLeft, AltRight, MetaLeft, MetaRight,
	}
}
