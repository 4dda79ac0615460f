// Package engine is the input transformation and replay state machine.
//
// The dispatcher runs once per intercepted event, on the event-source
// thread, and must return before the next event is delivered. It decides
// whether the keystroke is consumed, feeds the word-composition state,
// asks the transformation oracle for the rendered word, and reconciles the
// screen through blind backspace/insert — the engine never reads the
// target application's text buffer.
package engine

import (
	"log/slog"
	"sync"
	"time"
	"unicode"

	"github.com/hongmd/goxkey/internal/hotkey"
	"github.com/hongmd/goxkey/internal/input"
	"github.com/hongmd/goxkey/internal/platform"
	"github.com/hongmd/goxkey/internal/telex"
)

// Quirks describes per-application replay workarounds, keyed by the
// foreground application identity. Treated as data so new target-application
// behaviors are additive.
type Quirks struct {
	// DismissSelection injects a space and deletes it again before each
	// replay. Needed for applications whose accessibility surface hides a
	// pre-selected autocomplete suggestion (browser address bars): the
	// throwaway space deterministically clears the hidden selection.
	DismissSelection bool
}

// DefaultQuirks returns the built-in capability table.
func DefaultQuirks() map[string]Quirks {
	return map[string]Quirks{
		"org.mozilla.firefox":        {DismissSelection: true},
		"com.google.Chrome":          {DismissSelection: true},
		"com.microsoft.edgemac":      {DismissSelection: true},
		"com.brave.Browser":          {DismissSelection: true},
		"com.vivaldi.Vivaldi":        {DismissSelection: true},
		"com.operasoftware.Opera":    {DismissSelection: true},
		"org.chromium.Chromium":      {DismissSelection: true},
		"com.apple.Safari":           {DismissSelection: false},
		"com.googlecode.iterm2":      {DismissSelection: false},
		"com.apple.Spotlight":        {DismissSelection: true},
		"com.raycast.macos":          {DismissSelection: true},
	}
}

// Options configures an Engine.
type Options struct {
	// Enabled is the global default enabled state.
	Enabled bool

	// AutoToggle enables foreground-application driven toggling.
	AutoToggle bool

	// Hotkey is the toggle chord.
	Hotkey hotkey.Hotkey

	// Macros maps finalized words to replacement text.
	Macros map[string]string

	// AllowedWords are exempt from the boundary-time restore safeguard.
	AllowedWords []string

	// AppEnabled overrides the default enabled state per application.
	AppEnabled map[string]bool

	// AppQuirks is the per-application capability table. Nil selects
	// DefaultQuirks.
	AppQuirks map[string]Quirks

	// Validate reports whether a rendered word is linguistically valid.
	// Nil selects telex.IsValidWord.
	Validate func(string) bool

	// Logger receives structured engine logs. Nil selects slog.Default.
	Logger *slog.Logger
}

// Engine owns all mutable state shared between the event-source thread and
// the control surface. One explicitly constructed instance replaces ambient
// globals; it is shared by handle.
type Engine struct {
	log         *slog.Logger
	transformer telex.Transformer
	sink        platform.InputSink
	matcher     *hotkey.Matcher
	notifier    *Notifier
	validate    func(string) bool

	// mu is the word-composition lock. The dispatcher holds it across key
	// handling and must release it before invoking Toggle, which
	// re-acquires it.
	mu             sync.Mutex
	words          *input.State
	enabled        bool
	defaultEnabled bool
	autoToggle     bool
	macros         map[string]string
	appEnabled     map[string]bool
	quirks         map[string]Quirks
	activeApp      string

	// modMu guards the modifier snapshot of the previous event.
	modMu    sync.Mutex
	prevMods platform.Modifiers

	startedAt time.Time
}

// New builds an engine around the transformation oracle and input sink.
func New(transformer telex.Transformer, sink platform.InputSink, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	validate := opts.Validate
	if validate == nil {
		validate = telex.IsValidWord
	}
	quirks := opts.AppQuirks
	if quirks == nil {
		quirks = DefaultQuirks()
	}
	words := input.NewState()
	words.SetAllowedWords(opts.AllowedWords)
	e := &Engine{
		log:            log,
		transformer:    transformer,
		sink:           sink,
		matcher:        hotkey.NewMatcher(opts.Hotkey),
		notifier:       NewNotifier(),
		validate:       validate,
		words:          words,
		enabled:        opts.Enabled,
		defaultEnabled: opts.Enabled,
		autoToggle:     opts.AutoToggle,
		macros:         opts.Macros,
		appEnabled:     opts.AppEnabled,
		quirks:         quirks,
		startedAt:      time.Now(),
	}
	if e.macros == nil {
		e.macros = map[string]string{}
	}
	if e.appEnabled == nil {
		e.appEnabled = map[string]bool{}
	}
	return e
}

// Notifier returns the UI refresh channel: a single-slot signal with
// at-most-one pending refresh.
func (e *Engine) Notifier() *Notifier { return e.notifier }

// Enabled reports whether transformation is currently on.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// Toggle flips the enabled state, clears any temporary disable, resets the
// current word, and signals the UI. Callers must not hold the word lock.
func (e *Engine) Toggle() {
	e.mu.Lock()
	e.enabled = !e.enabled
	e.words.ClearTemporaryDisabled()
	e.words.NewWord()
	enabled := e.enabled
	e.mu.Unlock()

	e.log.Info("toggled", "enabled", enabled)
	e.notifier.Notify()
}

// SetEnabled pins the enabled state, discarding the word in progress.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	changed := e.enabled != enabled
	e.enabled = enabled
	e.words.ClearTemporaryDisabled()
	e.words.NewWord()
	e.mu.Unlock()

	if changed {
		e.log.Info("enabled state set", "enabled", enabled)
		e.notifier.Notify()
	}
}

// SetActiveApp implements the auto-toggle policy for foreground-application
// changes. Repeated notifications for the same application are no-ops: no
// state mutation, no UI refresh.
func (e *Engine) SetActiveApp(appID string) {
	e.mu.Lock()
	if appID == e.activeApp {
		e.mu.Unlock()
		return
	}
	e.activeApp = appID
	e.words.NewWord() // focus moved; the tracked word is gone

	if !e.autoToggle {
		e.mu.Unlock()
		return
	}
	desired := e.defaultEnabled
	if v, ok := e.appEnabled[appID]; ok {
		desired = v
	}
	changed := desired != e.enabled
	if changed {
		e.enabled = desired
	}
	e.mu.Unlock()

	if changed {
		e.log.Info("auto-toggled", "app", appID, "enabled", desired)
		e.notifier.Notify()
	}
}

// ActiveApp returns the last reported foreground application identity.
func (e *Engine) ActiveApp() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeApp
}

// BackspaceCount returns how many on-screen characters the next mutation
// must erase: the displaying-word length, minus one when the user's own
// delete keystroke already removed one.
func (e *Engine) BackspaceCount(isDelete bool) int {
	n := e.words.DisplayingLen()
	if isDelete && n > 0 {
		n--
	}
	return n
}

// ShouldSend reports whether replaying output is worthwhile. A resend of
// the word already on screen is redundant and risks feeding the engine its
// own injected events.
func (e *Engine) ShouldSend(output string) bool {
	return output != e.words.DisplayingWord()
}

// HandleEvent is the single synchronous dispatch entry point. It runs on
// the event-source thread; the return value tells the source whether to
// suppress the original keystroke.
func (e *Engine) HandleEvent(h platform.Handle, kind platform.EventKind, key *platform.PressedKey, mods platform.Modifiers) bool {
	// Hotkey bookkeeping always precedes key-identity handling so a
	// simultaneous modifier release and toggle resolve deterministically.
	var keyChar *rune
	if key != nil {
		if c, ok := key.Char(); ok {
			keyChar = &c
		}
	}
	fireToggle := e.matcher.Observe(kind, keyChar, mods)

	prev := e.swapPrevMods(kind, mods)

	e.mu.Lock()
	defer e.mu.Unlock()

	if fireToggle {
		// Toggle takes the word lock itself; drop it around the call.
		e.mu.Unlock()
		e.Toggle()
		e.mu.Lock()
	}

	if key == nil {
		e.handleBareModifiers(h, kind, prev, mods)
		return false
	}

	if code, ok := key.Raw(); ok {
		return e.handleRawKey(code)
	}

	c, _ := key.Char()
	if !e.enabled {
		e.handleDisabledKey(c, mods)
		return false
	}
	return e.handleKey(h, c, mods)
}

// swapPrevMods records this event's modifiers and returns the previous
// snapshot. The held set accumulates across FlagsChanged events and resets
// on full release.
func (e *Engine) swapPrevMods(kind platform.EventKind, mods platform.Modifiers) platform.Modifiers {
	e.modMu.Lock()
	defer e.modMu.Unlock()
	prev := e.prevMods
	if kind == platform.FlagsChanged && mods.IsEmpty() {
		e.prevMods = 0
	} else {
		e.prevMods = mods
	}
	return prev
}

// handleBareModifiers handles events that carry no key: modifier chords and
// non-keyboard events. A bare Ctrl press hands the raw word back to the
// application and suspends tracking; Super or a non-keyboard event ends the
// word.
func (e *Engine) handleBareModifiers(h platform.Handle, kind platform.EventKind, prev, mods platform.Modifiers) {
	if !prev.IsEmpty() {
		return
	}
	if mods.HasControl() {
		if e.words.TypingBuffer() != "" {
			e.restoreWord(h)
		}
		e.words.SetTemporaryDisabled()
	}
	if mods.HasSuper() || kind == platform.Other {
		e.words.NewWord()
	}
}

func (e *Engine) handleRawKey(code uint16) bool {
	switch code {
	case platform.RawKeyGlobe:
		e.mu.Unlock()
		e.Toggle()
		e.mu.Lock()
		return true
	case platform.RawArrowUp, platform.RawArrowDown:
		e.words.NewWord()
	case platform.RawArrowLeft, platform.RawArrowRight:
		// TODO: track the caret per word instead of resetting on
		// horizontal movement.
		e.words.NewWord()
	default:
		e.words.NewWord()
	}
	return false
}

// handleDisabledKey keeps word boundaries honest while transformation is
// off, so re-enabling starts from a clean word.
func (e *Engine) handleDisabledKey(c rune, mods platform.Modifiers) {
	switch c {
	case platform.KeyEnter, platform.KeyTab, platform.KeySpace, platform.KeyEscape:
		e.words.NewWord()
	default:
		if !mods.IsEmpty() {
			e.words.NewWord()
		}
	}
}

// handleKey dispatches a character key while the engine is enabled.
// Called with the word lock held.
func (e *Engine) handleKey(h platform.Handle, c rune, mods platform.Modifiers) bool {
	switch c {
	case platform.KeyEnter, platform.KeyTab, platform.KeySpace, platform.KeyEscape:
		e.handleWordBoundary(h, c)
		return false
	case platform.KeyDelete:
		if !mods.IsEmpty() && !mods.HasShift() {
			// Option/Cmd-delete erases more than one character;
			// the word model cannot follow, start over.
			e.words.NewWord()
		} else {
			e.words.Pop()
		}
		return false
	}

	switch input.Classify(c) {
	case input.Punctuation:
		e.words.NewWord()
		return false
	case input.Digit:
		if mods.HasShift() {
			// Shift+digit produces a symbol; keep the digit in the
			// history and end the word.
			e.words.Push(c)
			e.words.NewWord()
			return false
		}
		return e.pushAndTransform(h, c, mods)
	case input.Letter:
		if mods.HasSuper() || mods.HasAlt() {
			e.words.NewWord()
			return false
		}
		return e.pushAndTransform(h, c, mods)
	default:
		e.words.NewWord()
		return false
	}
}

func (e *Engine) pushAndTransform(h platform.Handle, c rune, mods platform.Modifiers) bool {
	if !e.words.IsTracking() {
		return false
	}
	if mods.HasShift() || mods.HasCapsLock() {
		c = unicode.ToUpper(c)
	}
	e.words.Push(c)
	return e.transformAndReplay(h, false)
}

// handleWordBoundary finalizes the current word, in order: restore the raw
// keystrokes if the transformed word is neither valid nor allowed, clear
// stale stop-tracking history, expand a macro on tab/space, then reset.
func (e *Engine) handleWordBoundary(h platform.Handle, c rune) {
	display := e.words.DisplayingWord()
	raw := e.words.TypingBuffer()
	transformed := raw != display
	if transformed && display != "" && !e.validate(display) && !e.words.IsAllowedWord(display) {
		e.restoreWord(h)
	}

	if e.words.PreviousWordIsStopTracking() {
		e.words.ClearPreviousWord()
	}

	if c == platform.KeyTab || c == platform.KeySpace {
		if target, ok := e.macros[e.words.DisplayingWord()]; ok {
			e.macroReplace(h, target)
		}
	}

	e.words.NewWord()
}

// transformAndReplay runs the oracle over the typing buffer and rewrites
// the screen. Oracle failure is pass-through: no injection, no state
// mutation. Called with the word lock held.
func (e *Engine) transformAndReplay(h platform.Handle, deleteApplied bool) bool {
	res, err := e.transformer.Transform(e.words.TypingRunes())
	if err != nil {
		return false
	}
	if !e.ShouldSend(res.Output) && !deleteApplied {
		return false
	}

	if e.dismissSelection() {
		// Clear any hidden pre-selected suggestion before the real
		// replace, otherwise the injection overwrites the selection.
		e.sendString(h, " ")
		e.sendBackspace(h, 1)
	}

	e.sendBackspace(h, e.BackspaceCount(deleteApplied))
	e.sendString(h, res.Output)
	e.words.Replace(res.Output)

	if res.ToneMarkRemoved || res.LetterModificationRemoved {
		e.words.StopTracking()
	}
	return true
}

// restoreWord rewrites the raw typed sequence over the transformed word,
// undoing an unwanted transformation. Called with the word lock held.
func (e *Engine) restoreWord(h platform.Handle) {
	raw := e.words.TypingBuffer()
	e.sendBackspace(h, e.BackspaceCount(false))
	e.sendString(h, raw)
	e.words.Replace(raw)
}

// macroReplace swaps the finalized word for its macro target. Called with
// the word lock held.
func (e *Engine) macroReplace(h platform.Handle, target string) {
	e.sendBackspace(h, e.BackspaceCount(false))
	e.sendString(h, target)
	e.words.Replace(target)
}

// dismissSelection consults the quirk table for the foreground app.
func (e *Engine) dismissSelection() bool {
	return e.quirks[e.activeApp].DismissSelection
}

// sendBackspace injects backspaces. Best-effort: the OS buffer cannot be
// read back, so failures are logged and the model proceeds.
func (e *Engine) sendBackspace(h platform.Handle, count int) {
	if count == 0 {
		return
	}
	if err := e.sink.SendBackspace(h, count); err != nil {
		e.log.Warn("send backspace failed", "count", count, "error", err)
	}
}

// sendString injects text, best-effort like sendBackspace.
func (e *Engine) sendString(h platform.Handle, text string) {
	if text == "" {
		return
	}
	if err := e.sink.SendString(h, text); err != nil {
		e.log.Warn("send string failed", "len", len(text), "error", err)
	}
}
