package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hongmd/goxkey/internal/hotkey"
)

// Validate checks the configuration for consistency. It is called on
// every load, including hot reloads, so a broken edit never replaces a
// working configuration.
func (c *Config) Validate() error {
	if c.Version <= 0 || c.Version > Version {
		return fmt.Errorf("unsupported config version %d", c.Version)
	}

	if c.Input.Method != "telex" {
		return fmt.Errorf("unsupported typing method %q", c.Input.Method)
	}
	if _, err := hotkey.Parse(c.Input.Hotkey); err != nil {
		return fmt.Errorf("invalid hotkey %q: %w", c.Input.Hotkey, err)
	}
	for _, w := range c.Input.AllowedWords {
		if strings.TrimSpace(w) == "" {
			return fmt.Errorf("allowed_words contains an empty entry")
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Output) {
	case "stdout", "stderr", "file":
	default:
		return fmt.Errorf("invalid log output %q", c.Logging.Output)
	}
	if strings.ToLower(c.Logging.Output) == "file" && c.Logging.FilePath == "" {
		return fmt.Errorf("log output is file but file_path is empty")
	}

	for trigger := range c.Macros {
		if trigger == "" {
			return fmt.Errorf("macros contains an empty trigger")
		}
		if strings.ContainsAny(trigger, " \t\n") {
			return fmt.Errorf("macro trigger %q contains whitespace", trigger)
		}
	}

	return nil
}

// ApplyEnvOverrides applies GOXKEY_* environment overrides. Overrides
// are applied after file parsing and before validation.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GOXKEY_HOTKEY"); v != "" {
		c.Input.Hotkey = v
	}
	if v := os.Getenv("GOXKEY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GOXKEY_SOCKET"); v != "" {
		c.IPC.SocketPath = v
	}
	switch strings.ToLower(os.Getenv("GOXKEY_ENABLED")) {
	case "1", "true", "yes":
		c.Input.Enabled = true
	case "0", "false", "no":
		c.Input.Enabled = false
	}
}
