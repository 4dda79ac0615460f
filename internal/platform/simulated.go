package platform

import (
	"strings"
	"sync"
)

// SimulatedSource is an in-process EventSource driven by test or demo code.
// Feed methods deliver events synchronously to the registered callback and
// return the callback's consume flag, mirroring how a real event tap blocks
// on the handler.
type SimulatedSource struct {
	mu      sync.Mutex
	cb      Callback
	stopped chan struct{}
}

// NewSimulatedSource creates a simulated event source.
func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{stopped: make(chan struct{})}
}

// Run registers the callback and blocks until Stop.
func (s *SimulatedSource) Run(cb Callback) error {
	s.mu.Lock()
	s.cb = cb
	s.mu.Unlock()
	<-s.stopped
	return nil
}

// Register installs the callback without blocking, for tests that feed
// events from the same goroutine.
func (s *SimulatedSource) Register(cb Callback) {
	s.mu.Lock()
	s.cb = cb
	s.mu.Unlock()
}

// Stop unblocks Run.
func (s *SimulatedSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stopped:
	default:
		close(s.stopped)
	}
	return nil
}

// Available always reports true for the simulated source.
func (s *SimulatedSource) Available() (bool, string) {
	return true, "simulated event source"
}

func (s *SimulatedSource) deliver(kind EventKind, key *PressedKey, mods Modifiers) bool {
	s.mu.Lock()
	cb := s.cb
	s.mu.Unlock()
	if cb == nil {
		return false
	}
	return cb(0, kind, key, mods)
}

// KeyDown delivers a character key press. Returns the consume flag.
func (s *SimulatedSource) KeyDown(c rune, mods Modifiers) bool {
	k := CharKey(c)
	return s.deliver(KeyDown, &k, mods)
}

// RawKeyDown delivers an unmapped key press.
func (s *SimulatedSource) RawKeyDown(code uint16, mods Modifiers) bool {
	k := RawKey(code)
	return s.deliver(KeyDown, &k, mods)
}

// FlagsChanged delivers a modifier press or release.
func (s *SimulatedSource) FlagsChanged(mods Modifiers) bool {
	return s.deliver(FlagsChanged, nil, mods)
}

// OtherEvent delivers a non-keyboard event (mouse click, scroll).
func (s *SimulatedSource) OtherEvent(mods Modifiers) bool {
	return s.deliver(Other, nil, mods)
}

// SinkOp records one call made against a SimulatedSink.
type SinkOp struct {
	Backspaces int    // number of backspaces, when > 0
	Text       string // inserted text, when non-empty
}

// SimulatedSink is an InputSink that applies injections to an in-memory
// screen buffer. Tests assert against the literal on-screen outcome rather
// than the call sequence alone.
type SimulatedSink struct {
	mu     sync.Mutex
	screen []rune
	ops    []SinkOp
}

// NewSimulatedSink creates an empty simulated screen.
func NewSimulatedSink() *SimulatedSink {
	return &SimulatedSink{}
}

// SendBackspace erases count runes from the end of the screen buffer.
func (s *SimulatedSink) SendBackspace(_ Handle, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < count && len(s.screen) > 0; i++ {
		s.screen = s.screen[:len(s.screen)-1]
	}
	s.ops = append(s.ops, SinkOp{Backspaces: count})
	return nil
}

// SendString appends text to the screen buffer.
func (s *SimulatedSink) SendString(_ Handle, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = append(s.screen, []rune(text)...)
	s.ops = append(s.ops, SinkOp{Text: text})
	return nil
}

// TypeThrough models the OS delivering an unconsumed keystroke to the
// focused application: the character appears on screen without the engine's
// involvement.
func (s *SimulatedSink) TypeThrough(c rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == KeyDelete {
		if len(s.screen) > 0 {
			s.screen = s.screen[:len(s.screen)-1]
		}
		return
	}
	s.screen = append(s.screen, c)
}

// Screen returns the current on-screen text.
func (s *SimulatedSink) Screen() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.screen)
}

// Ops returns the recorded injection calls.
func (s *SimulatedSink) Ops() []SinkOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SinkOp, len(s.ops))
	copy(out, s.ops)
	return out
}

// ResetOps clears the recorded calls, keeping the screen.
func (s *SimulatedSink) ResetOps() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
}

// LastWord returns the trailing non-space run of the screen buffer.
func (s *SimulatedSink) LastWord() string {
	parts := strings.Fields(s.Screen())
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// SimulatedAppWatcher is an AppWatcher driven by test code.
type SimulatedAppWatcher struct {
	mu sync.Mutex
	cb func(appID string)
}

// NewSimulatedAppWatcher creates a simulated foreground-app watcher.
func NewSimulatedAppWatcher() *SimulatedAppWatcher {
	return &SimulatedAppWatcher{}
}

// Watch registers the callback.
func (w *SimulatedAppWatcher) Watch(cb func(appID string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb = cb
	return nil
}

// Stop unregisters the callback.
func (w *SimulatedAppWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb = nil
	return nil
}

// Activate simulates the foreground application changing.
func (w *SimulatedAppWatcher) Activate(appID string) {
	w.mu.Lock()
	cb := w.cb
	w.mu.Unlock()
	if cb != nil {
		cb(appID)
	}
}
