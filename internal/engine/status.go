package engine

import "time"

// Status is a read-only snapshot of engine state for the control surface.
type Status struct {
	Enabled    bool          `json:"enabled"`
	AutoToggle bool          `json:"auto_toggle"`
	ActiveApp  string        `json:"active_app,omitempty"`
	Hotkey     string        `json:"hotkey"`
	MacroCount int           `json:"macro_count"`
	Uptime     time.Duration `json:"uptime"`
}

// Status snapshots the engine.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Enabled:    e.enabled,
		AutoToggle: e.autoToggle,
		ActiveApp:  e.activeApp,
		Hotkey:     e.matcher.Hotkey().String(),
		MacroCount: len(e.macros),
		Uptime:     time.Since(e.startedAt),
	}
}

// ApplyOptions installs a reloaded configuration. The current enabled state
// survives the reload; the defaults and tables are swapped and the UI is
// refreshed.
func (e *Engine) ApplyOptions(opts Options) {
	e.matcher.SetHotkey(opts.Hotkey)

	e.mu.Lock()
	e.defaultEnabled = opts.Enabled
	e.autoToggle = opts.AutoToggle
	e.macros = opts.Macros
	if e.macros == nil {
		e.macros = map[string]string{}
	}
	e.appEnabled = opts.AppEnabled
	if e.appEnabled == nil {
		e.appEnabled = map[string]bool{}
	}
	if opts.AppQuirks != nil {
		e.quirks = opts.AppQuirks
	}
	e.words.SetAllowedWords(opts.AllowedWords)
	e.mu.Unlock()

	e.notifier.Notify()
}
