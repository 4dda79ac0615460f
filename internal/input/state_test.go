package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushOnlyWhileTracking(t *testing.T) {
	s := NewState()
	s.Push('v')
	s.Push('i')
	assert.Equal(t, "vi", s.TypingBuffer())

	s.StopTracking()
	s.Push('x')
	assert.Equal(t, "vi", s.TypingBuffer(), "push must be ignored while not tracking")
}

func TestNewWordClearsBothAndRestartsTracking(t *testing.T) {
	s := NewState()
	s.Push('v')
	s.Push('i')
	s.Replace("ví")
	s.StopTracking()

	s.NewWord()

	assert.Empty(t, s.TypingBuffer())
	assert.Empty(t, s.DisplayingWord())
	assert.True(t, s.IsTracking())
	assert.Equal(t, "ví", s.PreviousWord())
}

func TestNewWordKeepsTrackingOffWhileTempDisabled(t *testing.T) {
	s := NewState()
	s.SetTemporaryDisabled()
	s.NewWord()
	assert.False(t, s.IsTracking())

	s.ClearTemporaryDisabled()
	s.NewWord()
	assert.True(t, s.IsTracking())
}

func TestPopShrinksBufferAndDisplayingWord(t *testing.T) {
	s := NewState()
	s.Push('v')
	s.Push('i')
	s.Push('s')
	s.Replace("vís")

	s.Pop()
	assert.Equal(t, "vi", s.TypingBuffer())
	assert.Equal(t, 2, s.DisplayingLen())

	s.Pop()
	s.Pop()
	s.Pop() // extra pop on empty state is harmless
	assert.Empty(t, s.TypingBuffer())
	assert.Zero(t, s.DisplayingLen())
}

func TestDisplayingLenCountsRunes(t *testing.T) {
	s := NewState()
	s.Replace("việt")
	assert.Equal(t, 4, s.DisplayingLen())
}

func TestStopTrackingHistory(t *testing.T) {
	s := NewState()
	s.Push('a')
	s.Replace("aa")
	s.StopTracking()
	s.NewWord()

	assert.True(t, s.PreviousWordIsStopTracking())
	s.ClearPreviousWord()
	assert.False(t, s.PreviousWordIsStopTracking())
	assert.Empty(t, s.PreviousWord())
}

func TestAllowedWords(t *testing.T) {
	s := NewState()
	s.SetAllowedWords([]string{"Windows", "macos"})

	assert.True(t, s.IsAllowedWord("windows"))
	assert.True(t, s.IsAllowedWord("macOS"))
	assert.False(t, s.IsAllowedWord("linux"))
}
