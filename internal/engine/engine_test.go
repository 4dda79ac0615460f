package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongmd/goxkey/internal/hotkey"
	"github.com/hongmd/goxkey/internal/platform"
	"github.com/hongmd/goxkey/internal/telex"
)

// harness wires an engine to simulated platform collaborators. Keystrokes
// go through the same path a real event tap uses: the handler runs first,
// then the unconsumed original keystroke reaches the screen.
type harness struct {
	engine *Engine
	source *platform.SimulatedSource
	sink   *platform.SimulatedSink
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	if opts.Hotkey == (hotkey.Hotkey{}) {
		h, err := hotkey.Parse("ctrl")
		require.NoError(t, err)
		opts.Hotkey = h
	}
	sink := platform.NewSimulatedSink()
	source := platform.NewSimulatedSource()
	e := New(telex.New(), sink, opts)
	source.Register(e.HandleEvent)
	return &harness{engine: e, source: source, sink: sink}
}

// typeKey delivers a character keystroke and, when the engine does not
// consume it, lets it land on the simulated screen.
func (h *harness) typeKey(c rune, mods platform.Modifiers) {
	if !h.source.KeyDown(c, mods) {
		h.sink.TypeThrough(c)
	}
}

func (h *harness) typeString(s string) {
	for _, c := range s {
		h.typeKey(c, 0)
	}
}

func TestTypingComposesOnScreen(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})

	h.typeString("vieetj")
	assert.Equal(t, "việt", h.sink.Screen())
	assert.Equal(t, "việt", h.engine.words.DisplayingWord())
	assert.Equal(t, "vieetj", h.engine.words.TypingBuffer())

	h.typeKey(platform.KeySpace, 0)
	assert.Equal(t, "việt ", h.sink.Screen())
	assert.Empty(t, h.engine.words.TypingBuffer())
	assert.Empty(t, h.engine.words.DisplayingWord())
	assert.True(t, h.engine.words.IsTracking())
}

func TestBackspaceCount(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	h.typeString("vieet") // displaying "viêt", length 4

	assert.Equal(t, 4, h.engine.BackspaceCount(false))
	assert.Equal(t, 3, h.engine.BackspaceCount(true))
}

func TestReplayAfterDeleteLandsCorrectly(t *testing.T) {
	// Model the isDelete contract literally: the user's delete has
	// already removed one on-screen character, then a replay with
	// isDelete=true must still converge to the intended output.
	sink := platform.NewSimulatedSink()
	require.NoError(t, sink.SendString(0, "viêt"))
	sink.TypeThrough(platform.KeyDelete) // screen: "viê"

	// Erase displaying-1 and resend.
	require.NoError(t, sink.SendBackspace(0, 3))
	require.NoError(t, sink.SendString(0, "viê"))
	assert.Equal(t, "viê", sink.Screen())
}

func TestShouldSendSuppressesRedundantResend(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	h.typeString("xanh")

	assert.False(t, h.engine.ShouldSend("xanh"))
	assert.True(t, h.engine.ShouldSend("xanb"))
}

func TestDeleteKeyPopsAndStaysAligned(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	h.typeString("vis") // screen "ví"
	assert.Equal(t, "ví", h.sink.Screen())

	h.typeKey(platform.KeyDelete, 0)
	assert.Equal(t, "v", h.sink.Screen())
	assert.Equal(t, "vi", h.engine.words.TypingBuffer())
	assert.Equal(t, 1, h.engine.words.DisplayingLen())
}

func TestHotkeyTogglesExactlyOnce(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	require.True(t, h.engine.Enabled())

	h.source.FlagsChanged(platform.ModControl)
	assert.True(t, h.engine.Enabled(), "no toggle while held")
	h.source.FlagsChanged(0)
	assert.False(t, h.engine.Enabled(), "toggle on release")

	h.source.FlagsChanged(0)
	assert.False(t, h.engine.Enabled(), "bare release does not fire")
}

func TestHotkeyCircuitBreak(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})

	h.source.FlagsChanged(platform.ModControl)
	h.source.KeyDown('c', platform.ModControl)
	h.source.FlagsChanged(0)
	assert.True(t, h.engine.Enabled(), "Ctrl+C must not toggle")
}

func TestMacroExpansion(t *testing.T) {
	h := newHarness(t, Options{
		Enabled: true,
		Macros:  map[string]string{"btw": "by the way"},
	})
	h.typeString("btw") // composes to "btư" on screen
	h.sink.ResetOps()

	h.typeKey(platform.KeySpace, 0)

	assert.Equal(t, "by the way ", h.sink.Screen())
	ops := h.sink.Ops()
	require.Len(t, ops, 4, "restore (2 ops) then macro replace (2 ops)")
	assert.Equal(t, platform.SinkOp{Backspaces: 3}, ops[2])
	assert.Equal(t, platform.SinkOp{Text: "by the way"}, ops[3])
}

func TestInvalidWordRestoredAtBoundary(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	h.typeString("btw")
	assert.Equal(t, "btư", h.sink.Screen())

	h.typeKey(platform.KeyEnter, 0)
	assert.Equal(t, "btw\n", h.sink.Screen(), "raw form restored before boundary")
}

func TestAllowedWordSurvivesBoundary(t *testing.T) {
	h := newHarness(t, Options{
		Enabled:      true,
		AllowedWords: []string{"btư"},
	})
	h.typeString("btw")
	h.typeKey(platform.KeySpace, 0)
	assert.Equal(t, "btư ", h.sink.Screen())
}

func TestValidWordNotRestored(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	h.typeString("vieetj")
	h.typeKey(platform.KeySpace, 0)
	assert.Equal(t, "việt ", h.sink.Screen())
}

func TestAutoToggleIdempotent(t *testing.T) {
	h := newHarness(t, Options{
		Enabled:    true,
		AutoToggle: true,
		AppEnabled: map[string]bool{"com.apple.Terminal": false},
	})

	h.engine.SetActiveApp("com.apple.Terminal")
	assert.False(t, h.engine.Enabled())
	assert.True(t, h.engine.Notifier().Pending())
	<-h.engine.Notifier().C()

	h.engine.SetActiveApp("com.apple.Terminal")
	h.engine.SetActiveApp("com.apple.Terminal")
	assert.False(t, h.engine.Notifier().Pending(),
		"repeated notifications must not refresh the UI")

	h.engine.SetActiveApp("com.apple.TextEdit")
	assert.True(t, h.engine.Enabled(), "falls back to the global default")
}

func TestAutoToggleDisabledIsNoOp(t *testing.T) {
	h := newHarness(t, Options{
		Enabled:    true,
		AutoToggle: false,
		AppEnabled: map[string]bool{"com.apple.Terminal": false},
	})
	h.engine.SetActiveApp("com.apple.Terminal")
	assert.True(t, h.engine.Enabled())
}

func TestSelectionDismissalQuirk(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	h.engine.SetActiveApp("org.mozilla.firefox")
	h.sink.ResetOps()

	h.typeKey('v', 0)

	ops := h.sink.Ops()
	require.Len(t, ops, 3, "dismissal space+delete, then the replace (no empty backspace)")
	assert.Equal(t, platform.SinkOp{Text: " "}, ops[0], "dismissal space")
	assert.Equal(t, platform.SinkOp{Backspaces: 1}, ops[1], "dismissal delete")
	assert.Equal(t, platform.SinkOp{Text: "v"}, ops[2])
	assert.Equal(t, "v", h.sink.Screen())
}

func TestDisabledEngineTracksBoundaries(t *testing.T) {
	h := newHarness(t, Options{Enabled: false})
	h.typeString("vieetj")
	assert.Equal(t, "vieetj", h.sink.Screen(), "disabled engine passes keys through")
	assert.Empty(t, h.engine.words.TypingBuffer())

	h.engine.Toggle()
	require.True(t, h.engine.Enabled())
	h.typeString("las")
	assert.Equal(t, "vieetjlá", h.sink.Screen(), "re-enabled engine starts clean")
}

func TestPunctuationDismissesWord(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	h.typeString("vis")
	h.typeKey('.', 0)
	assert.Equal(t, "ví.", h.sink.Screen())
	assert.Empty(t, h.engine.words.TypingBuffer())
}

func TestArrowKeyStartsNewWord(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	h.typeString("vis")
	h.source.RawKeyDown(platform.RawArrowLeft, 0)
	assert.Empty(t, h.engine.words.TypingBuffer())
	assert.Empty(t, h.engine.words.DisplayingWord())
}

func TestGlobeKeyToggles(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	consumed := h.source.RawKeyDown(platform.RawKeyGlobe, 0)
	assert.True(t, consumed)
	assert.False(t, h.engine.Enabled())
}

func TestBareCtrlRestoresAndSuspends(t *testing.T) {
	// Hotkey deliberately not ctrl-only, so the bare Ctrl gesture is not
	// the toggle chord.
	chord, err := hotkey.Parse("ctrl+shift")
	require.NoError(t, err)
	h := newHarness(t, Options{Enabled: true, Hotkey: chord})
	h.typeString("vis")
	assert.Equal(t, "ví", h.sink.Screen())

	// A bare Ctrl chord with no prior modifiers: the user is about to do
	// something the engine cannot follow. Hand back the raw keys and
	// stop interfering until toggled.
	h.source.FlagsChanged(platform.ModControl)
	assert.Equal(t, "vis", h.sink.Screen())
	assert.True(t, h.engine.words.IsTemporaryDisabled())

	h.source.FlagsChanged(0)
	h.typeKey(platform.KeySpace, 0)
	assert.False(t, h.engine.words.IsTracking(),
		"boundary does not lift a temporary disable")
}

func TestShiftProducesUppercase(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	h.typeKey('v', platform.ModShift)
	h.typeKey('i', 0)
	assert.Equal(t, "Vi", h.sink.Screen())
}

func TestRevertStopsTracking(t *testing.T) {
	h := newHarness(t, Options{Enabled: true})
	h.typeString("aaa") // second a composes â, third reverts
	assert.Equal(t, "aa", h.sink.Screen())
	assert.False(t, h.engine.words.IsTracking())

	h.typeString("s")
	assert.Equal(t, "aas", h.sink.Screen(), "keys pass through after revert")
}

func TestStatusSnapshot(t *testing.T) {
	h := newHarness(t, Options{
		Enabled: true,
		Macros:  map[string]string{"btw": "by the way"},
	})
	st := h.engine.Status()
	assert.True(t, st.Enabled)
	assert.Equal(t, "ctrl", st.Hotkey)
	assert.Equal(t, 1, st.MacroCount)
}

func TestNotifierCoalesces(t *testing.T) {
	n := NewNotifier()
	n.Notify()
	n.Notify()
	n.Notify()
	<-n.C()
	assert.False(t, n.Pending(), "signals coalesce to one pending refresh")
}
