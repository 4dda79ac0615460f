// Package platform defines the boundary between the input engine and the
// operating system: the event tap that delivers keystrokes, the synthetic
// input sink that writes backspaces and text back into the focused
// application, and the watcher that reports foreground-application changes.
//
// The engine never reads the target application's text buffer. Everything it
// knows about the screen comes from what it has sent through the InputSink.
//
// Platform support:
//   - macOS: CGEventTap + CGEventPost (requires Accessibility permission)
//   - other: simulated implementations only (tests, development)
package platform

import (
	"errors"
)

// ErrNotAvailable is returned when no event tap is available on this
// platform or the required permission is missing.
var ErrNotAvailable = errors.New("platform: event tap not available")

// Handle is an opaque per-event handle supplied by the event source. It is
// passed back to the InputSink so injected events land in the same event
// stream the original keystroke arrived on.
type Handle uintptr

// Callback processes one intercepted event. It runs on the event-source
// thread and must return quickly; the return value tells the source whether
// to suppress the original keystroke from reaching the focused application.
type Callback func(handle Handle, kind EventKind, key *PressedKey, mods Modifiers) bool

// EventSource delivers intercepted keyboard events, one at a time, through
// a synchronous callback.
type EventSource interface {
	// Run registers the callback and blocks delivering events until Stop
	// is called or the source fails.
	Run(cb Callback) error

	// Stop terminates event delivery.
	Stop() error

	// Available reports whether interception can work on this platform
	// with current permissions. The string describes the status.
	Available() (bool, string)
}

// InputSink injects synthetic input into the focused application. Both
// calls are best-effort: the OS gives no reliable read-back, so callers
// proceed as if they succeeded.
type InputSink interface {
	// SendBackspace erases count characters before the cursor.
	SendBackspace(handle Handle, count int) error

	// SendString types text at the cursor.
	SendString(handle Handle, text string) error
}

// AppWatcher reports foreground-application changes.
type AppWatcher interface {
	// Watch registers the callback, invoked with the application identity
	// on every foreground change. Watch does not block.
	Watch(cb func(appID string)) error

	// Stop unregisters the callback.
	Stop() error
}
