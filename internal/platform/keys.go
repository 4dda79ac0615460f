package platform

import "strings"

// EventKind classifies an intercepted event.
type EventKind int

const (
	// KeyDown is a key press carrying a pressed key.
	KeyDown EventKind = iota
	// FlagsChanged is a modifier press or release.
	FlagsChanged
	// Other covers events the engine treats as word boundaries
	// (mouse clicks, scroll, focus jumps).
	Other
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case KeyDown:
		return "key_down"
	case FlagsChanged:
		return "flags_changed"
	default:
		return "other"
	}
}

// Modifiers is a bitmask of currently held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModSuper // Command on macOS, Windows key elsewhere
	ModCapsLock
)

// IsEmpty reports whether no modifiers are held.
func (m Modifiers) IsEmpty() bool { return m == 0 }

// Has reports whether every modifier in mask is held.
func (m Modifiers) Has(mask Modifiers) bool { return m&mask == mask }

func (m Modifiers) HasShift() bool    { return m&ModShift != 0 }
func (m Modifiers) HasControl() bool  { return m&ModControl != 0 }
func (m Modifiers) HasAlt() bool      { return m&ModAlt != 0 }
func (m Modifiers) HasSuper() bool    { return m&ModSuper != 0 }
func (m Modifiers) HasCapsLock() bool { return m&ModCapsLock != 0 }

// String returns a "+"-joined list of held modifier names.
func (m Modifiers) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	if m.HasControl() {
		parts = append(parts, "ctrl")
	}
	if m.HasShift() {
		parts = append(parts, "shift")
	}
	if m.HasAlt() {
		parts = append(parts, "alt")
	}
	if m.HasSuper() {
		parts = append(parts, "super")
	}
	if m.HasCapsLock() {
		parts = append(parts, "capslock")
	}
	return strings.Join(parts, "+")
}

// Character keys the dispatcher treats specially.
const (
	KeyEnter  rune = '\n'
	KeyTab    rune = '\t'
	KeySpace  rune = ' '
	KeyEscape rune = 0x1b
	KeyDelete rune = 0x08
)

// Raw key codes without a character mapping (macOS virtual key codes).
const (
	RawKeyGlobe   uint16 = 0xB2
	RawArrowUp    uint16 = 0x7E
	RawArrowDown  uint16 = 0x7D
	RawArrowLeft  uint16 = 0x7B
	RawArrowRight uint16 = 0x7C
)

// PressedKey is the key carried by a KeyDown event: either a character
// resolved through the active keyboard layout, or a raw virtual key code
// for keys with no character mapping.
type PressedKey struct {
	char  rune
	raw   uint16
	isRaw bool
}

// CharKey builds a PressedKey for a layout-resolved character.
func CharKey(c rune) PressedKey { return PressedKey{char: c} }

// RawKey builds a PressedKey for an unmapped virtual key code.
func RawKey(code uint16) PressedKey { return PressedKey{raw: code, isRaw: true} }

// Char returns the character and whether this is a character key.
func (p PressedKey) Char() (rune, bool) {
	if p.isRaw {
		return 0, false
	}
	return p.char, true
}

// Raw returns the raw key code and whether this is a raw key.
func (p PressedKey) Raw() (uint16, bool) {
	if !p.isRaw {
		return 0, false
	}
	return p.raw, true
}
