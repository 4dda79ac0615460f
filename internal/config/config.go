// Package config handles configuration loading, validation, and
// hot-reloading for goxkey.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete daemon configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Input configures the typing engine.
	Input InputConfig `toml:"input" json:"input" yaml:"input"`

	// Apps configures per-application behavior.
	Apps AppsConfig `toml:"apps" json:"apps" yaml:"apps"`

	// Macros maps trigger words to replacement text.
	Macros map[string]string `toml:"macros" json:"macros" yaml:"macros"`

	// MacroFile is an optional JSON macro table. It is schema-validated
	// on load and merged over the inline table.
	MacroFile string `toml:"macro_file" json:"macro_file" yaml:"macro_file"`

	// Logging configures structured logging.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// IPC configures the control socket.
	IPC IPCConfig `toml:"ipc" json:"ipc" yaml:"ipc"`
}

// InputConfig holds typing-engine settings.
type InputConfig struct {
	// Method is the typing method. Only "telex" is supported.
	Method string `toml:"method" json:"method" yaml:"method"`

	// Enabled is the default enabled state at startup.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// AutoToggle restores the per-application enabled state on focus
	// changes.
	AutoToggle bool `toml:"auto_toggle" json:"auto_toggle" yaml:"auto_toggle"`

	// Hotkey is the toggle chord, e.g. "ctrl" or "ctrl+shift".
	Hotkey string `toml:"hotkey" json:"hotkey" yaml:"hotkey"`

	// AllowedWords are exempt from the boundary-time restore of
	// transformed words that fail syllable validation.
	AllowedWords []string `toml:"allowed_words" json:"allowed_words" yaml:"allowed_words"`
}

// AppsConfig holds per-application behavior.
type AppsConfig struct {
	// Enabled pins the enabled state for specific application
	// identifiers when auto-toggle is on.
	Enabled map[string]bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// DismissSelection lists applications whose hidden autocomplete
	// selection must be cleared before each replay.
	DismissSelection []string `toml:"dismiss_selection" json:"dismiss_selection" yaml:"dismiss_selection"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `toml:"level" json:"level" yaml:"level"`
	Format   string `toml:"format" json:"format" yaml:"format"`
	Output   string `toml:"output" json:"output" yaml:"output"`
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// IPCConfig holds control-socket settings.
type IPCConfig struct {
	// Enabled starts the control socket.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// SocketPath is the Unix socket path. Empty selects the platform
	// default.
	SocketPath string `toml:"socket_path" json:"socket_path" yaml:"socket_path"`
}

// Load reads the configuration from path, falling back to the default
// location when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	loader := NewLoader(path)
	return loader.Load()
}

// SaveConfig writes the configuration to path as TOML, creating parent
// directories as needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Input.AllowedWords = append([]string(nil), c.Input.AllowedWords...)
	clone.Apps.DismissSelection = append([]string(nil), c.Apps.DismissSelection...)
	if c.Apps.Enabled != nil {
		clone.Apps.Enabled = make(map[string]bool, len(c.Apps.Enabled))
		for k, v := range c.Apps.Enabled {
			clone.Apps.Enabled[k] = v
		}
	}
	if c.Macros != nil {
		clone.Macros = make(map[string]string, len(c.Macros))
		for k, v := range c.Macros {
			clone.Macros[k] = v
		}
	}
	return &clone
}
