package engine

// Notifier is the UI refresh channel: a single-slot signal where repeated
// notifications coalesce into at most one pending refresh. Consumers get
// eventual consistency with the latest state, nothing more.
type Notifier struct {
	ch chan struct{}
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify signals a state change. Never blocks; a pending refresh absorbs
// the signal.
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// C returns the channel the UI thread receives refreshes on.
func (n *Notifier) C() <-chan struct{} {
	return n.ch
}

// Pending reports whether a refresh is waiting. Test helper.
func (n *Notifier) Pending() bool {
	return len(n.ch) > 0
}
