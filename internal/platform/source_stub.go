package platform

// StubSource is used where no native event tap is implemented. The daemon
// logs the availability message and keeps the control surface (IPC, config
// reload) running without interception.
type StubSource struct{}

// NewSource returns the event source for this build. Native taps are wired
// per platform; the stub is the fallback.
func NewSource() EventSource { return StubSource{} }

// Run returns ErrNotAvailable immediately.
func (StubSource) Run(Callback) error { return ErrNotAvailable }

// Stop is a no-op.
func (StubSource) Stop() error { return nil }

// Available reports that no event tap exists for this platform.
func (StubSource) Available() (bool, string) {
	return false, "no native event tap for this platform"
}

// StubSink discards synthetic input.
type StubSink struct{}

// NewSink returns the input sink for this build.
func NewSink() InputSink { return StubSink{} }

// SendBackspace is a no-op.
func (StubSink) SendBackspace(Handle, int) error { return nil }

// SendString is a no-op.
func (StubSink) SendString(Handle, string) error { return nil }

// StubAppWatcher never reports a change.
type StubAppWatcher struct{}

// NewAppWatcher returns the foreground-app watcher for this build.
func NewAppWatcher() AppWatcher { return StubAppWatcher{} }

// Watch is a no-op.
func (StubAppWatcher) Watch(func(string)) error { return nil }

// Stop is a no-op.
func (StubAppWatcher) Stop() error { return nil }
