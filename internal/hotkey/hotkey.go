// Package hotkey recognizes the configured toggle chord across a full
// press/hold/release cycle of modifier keys.
//
// A modifier-only hotkey cannot be recognized from a single event: the
// toggle fires on the transition back to empty modifiers, and only if no
// unrelated key arrived while the chord was held. That guard (the circuit
// break) keeps the chord from being mistaken for the first half of an
// ordinary shortcut such as Ctrl+C.
package hotkey

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hongmd/goxkey/internal/platform"
)

// Hotkey is a parsed chord: a modifier set plus an optional trigger key.
type Hotkey struct {
	mods   platform.Modifiers
	key    rune
	hasKey bool
}

// Parse reads a "+"-separated spec such as "ctrl+shift" or "super+z".
// At least one modifier is required; at most one non-modifier key may
// follow.
func Parse(spec string) (Hotkey, error) {
	var h Hotkey
	for _, tok := range strings.Split(spec, "+") {
		tok = strings.TrimSpace(strings.ToLower(tok))
		switch tok {
		case "":
			continue
		case "ctrl", "control":
			h.mods |= platform.ModControl
		case "shift":
			h.mods |= platform.ModShift
		case "alt", "option", "opt":
			h.mods |= platform.ModAlt
		case "super", "cmd", "command", "meta", "win":
			h.mods |= platform.ModSuper
		case "capslock":
			h.mods |= platform.ModCapsLock
		case "space":
			if err := h.setKey(platform.KeySpace); err != nil {
				return Hotkey{}, err
			}
		case "enter", "return":
			if err := h.setKey(platform.KeyEnter); err != nil {
				return Hotkey{}, err
			}
		default:
			r := []rune(tok)
			if len(r) != 1 {
				return Hotkey{}, fmt.Errorf("hotkey: unknown token %q in %q", tok, spec)
			}
			if err := h.setKey(r[0]); err != nil {
				return Hotkey{}, err
			}
		}
	}
	if h.mods.IsEmpty() {
		return Hotkey{}, fmt.Errorf("hotkey: %q has no modifier", spec)
	}
	return h, nil
}

func (h *Hotkey) setKey(r rune) error {
	if h.hasKey {
		return fmt.Errorf("hotkey: more than one trigger key")
	}
	h.key = r
	h.hasKey = true
	return nil
}

// Matches reports whether the held modifiers and the pressed key (nil when
// the event carries none) currently satisfy the chord.
func (h Hotkey) Matches(held platform.Modifiers, key *rune) bool {
	if held != h.mods {
		return false
	}
	if !h.hasKey {
		return key == nil
	}
	return key != nil && *key == h.key
}

// String renders the chord in the same form Parse accepts.
func (h Hotkey) String() string {
	var parts []string
	if h.mods.HasControl() {
		parts = append(parts, "ctrl")
	}
	if h.mods.HasShift() {
		parts = append(parts, "shift")
	}
	if h.mods.HasAlt() {
		parts = append(parts, "alt")
	}
	if h.mods.HasSuper() {
		parts = append(parts, "super")
	}
	if h.mods.HasCapsLock() {
		parts = append(parts, "capslock")
	}
	if h.hasKey {
		switch h.key {
		case platform.KeySpace:
			parts = append(parts, "space")
		case platform.KeyEnter:
			parts = append(parts, "enter")
		default:
			parts = append(parts, string(h.key))
		}
	}
	return strings.Join(parts, "+")
}

// Matcher tracks chord state across events. States: idle (nothing held),
// matching (held modifiers equal the chord), circuit-broken (an unrelated
// key arrived while matching). The full modifier release resolves the
// state: matching fires the toggle, circuit-broken resets silently.
type Matcher struct {
	mu           sync.Mutex
	hotkey       Hotkey
	held         platform.Modifiers
	matching     bool
	circuitBreak bool
}

// NewMatcher creates a matcher for the given chord.
func NewMatcher(h Hotkey) *Matcher {
	return &Matcher{hotkey: h}
}

// SetHotkey swaps the chord, resetting in-flight state.
func (m *Matcher) SetHotkey(h Hotkey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotkey = h
	m.held = 0
	m.matching = false
	m.circuitBreak = false
}

// Hotkey returns the configured chord.
func (m *Matcher) Hotkey() Hotkey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hotkey
}

// Held returns the modifiers accumulated since the last full release.
func (m *Matcher) Held() platform.Modifiers {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// Observe processes one event's hotkey bookkeeping and reports whether the
// toggle fires. FlagsChanged events update the held set; every event then
// re-evaluates the match so an unrelated key while matching breaks the
// circuit. Must be called before key-identity handling for the same event.
func (m *Matcher) Observe(kind platform.EventKind, key *rune, mods platform.Modifiers) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	fire := false
	if kind == platform.FlagsChanged {
		if mods.IsEmpty() {
			if m.matching && !m.circuitBreak {
				fire = true
			}
			m.held = 0
			m.matching = false
			m.circuitBreak = false
			return fire
		}
		m.held |= mods
	}

	matched := m.hotkey.Matches(m.held, key)
	if m.matching && !matched {
		m.circuitBreak = true
	}
	m.matching = matched
	return false
}
