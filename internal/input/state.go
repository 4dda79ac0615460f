// Package input owns the word-composition state: the raw keystrokes of the
// word being typed, the word currently rendered on screen, and the tracking
// flags that decide whether keys are transformed or passed through.
//
// The displaying word is the authoritative record of what the engine has put
// on screen. The replay engine erases exactly that many characters before
// resending, never the typing-buffer length; the two are cleared together at
// every word boundary.
package input

import (
	"strings"
	"sync"
)

// State is the composition state for the in-progress word. All methods are
// safe for concurrent use; the dispatcher additionally serializes compound
// read-modify-write sequences through its own lock.
type State struct {
	mu sync.Mutex

	typingBuffer   []rune
	displayingWord []rune
	tracking       bool
	previousWord   string
	tempDisabled   bool

	// Words finalized after tracking was stopped mid-word. Kept so the
	// next boundary can clear the stale history instead of re-restoring.
	stopTrackingWords map[string]struct{}

	allowedWords map[string]struct{}
}

// NewState creates composition state with tracking enabled.
func NewState() *State {
	return &State{
		tracking:          true,
		stopTrackingWords: make(map[string]struct{}),
		allowedWords:      make(map[string]struct{}),
	}
}

// SetAllowedWords replaces the exception list consulted by IsAllowedWord.
func (s *State) SetAllowedWords(words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowedWords = make(map[string]struct{}, len(words))
	for _, w := range words {
		s.allowedWords[strings.ToLower(w)] = struct{}{}
	}
}

// Push appends a raw character to the typing buffer. Ignored while not
// tracking: the word already passed out of the engine's hands.
func (s *State) Push(c rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tracking {
		return
	}
	s.typingBuffer = append(s.typingBuffer, c)
}

// Pop removes the last raw character, modeling the user's own delete
// keystroke. The displaying word shrinks with it so the next backspace
// count stays aligned with the screen.
func (s *State) Pop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.typingBuffer); n > 0 {
		s.typingBuffer = s.typingBuffer[:n-1]
	}
	if n := len(s.displayingWord); n > 0 {
		s.displayingWord = s.displayingWord[:n-1]
	}
}

// NewWord finalizes the current word: the displaying word is snapshotted
// into the previous word, buffer and displaying word are cleared together,
// and tracking restarts unless temporarily disabled.
func (s *State) NewWord() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.displayingWord) > 0 {
		s.previousWord = string(s.displayingWord)
		if !s.tracking {
			s.stopTrackingWords[s.previousWord] = struct{}{}
		}
	}
	s.typingBuffer = s.typingBuffer[:0]
	s.displayingWord = s.displayingWord[:0]
	if !s.tempDisabled {
		s.tracking = true
	}
}

// Replace records text as what is now rendered on screen.
func (s *State) Replace(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayingWord = []rune(text)
}

// StopTracking stops transformation for the current word. Used when the
// oracle reports it stripped a previously applied mark as a side effect;
// subsequent keys pass through untouched until the next boundary.
func (s *State) StopTracking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracking = false
}

// IsTracking reports whether the engine is composing the current word.
func (s *State) IsTracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracking
}

// TypingBuffer returns the raw characters typed for the current word.
func (s *State) TypingBuffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.typingBuffer)
}

// TypingRunes returns a copy of the raw typing buffer.
func (s *State) TypingRunes() []rune {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rune, len(s.typingBuffer))
	copy(out, s.typingBuffer)
	return out
}

// DisplayingWord returns the word currently rendered on screen.
func (s *State) DisplayingWord() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.displayingWord)
}

// DisplayingLen returns the on-screen word length in runes. This, not the
// typing-buffer length, is the erase count for the next mutation.
func (s *State) DisplayingLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.displayingWord)
}

// PreviousWord returns the last finalized word.
func (s *State) PreviousWord() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previousWord
}

// ClearPreviousWord drops the previous-word snapshot and its stale
// stop-tracking history entry.
func (s *State) ClearPreviousWord() {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stopTrackingWords, s.previousWord)
	s.previousWord = ""
}

// PreviousWordIsStopTracking reports whether the previous word was
// finalized after tracking had been stopped.
func (s *State) PreviousWordIsStopTracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stopTrackingWords[s.previousWord]
	return ok
}

// IsAllowedWord reports whether word is on the exception list, exempting it
// from the boundary-time restore of unwanted transformations.
func (s *State) IsAllowedWord(word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.allowedWords[strings.ToLower(word)]
	return ok
}

// SetTemporaryDisabled suspends tracking until the next explicit toggle.
// Word boundaries do not re-enable it.
func (s *State) SetTemporaryDisabled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempDisabled = true
	s.tracking = false
}

// ClearTemporaryDisabled lifts the suspension; the next boundary restarts
// tracking as usual.
func (s *State) ClearTemporaryDisabled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempDisabled = false
}

// IsTemporaryDisabled reports whether tracking is suspended.
func (s *State) IsTemporaryDisabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tempDisabled
}
