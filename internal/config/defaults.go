package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Input: InputConfig{
			Method:     "telex",
			Enabled:    true,
			AutoToggle: true,
			Hotkey:     "ctrl",
		},
		Apps: AppsConfig{
			DismissSelection: []string{
				"org.mozilla.firefox",
				"com.google.Chrome",
				"com.microsoft.edgemac",
				"com.brave.Browser",
				"com.vivaldi.Vivaldi",
				"com.operasoftware.Opera",
				"org.chromium.Chromium",
				"com.apple.Spotlight",
				"com.raycast.macos",
			},
		},
		Macros: map[string]string{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		IPC: IPCConfig{
			Enabled: true,
		},
	}
}

// PlatformConfigDir returns the platform-specific config directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/goxkey/
//   - Linux:   ~/.config/goxkey/
//   - Windows: %APPDATA%\goxkey\
func PlatformConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home := userHome()
		return filepath.Join(home, "Library", "Application Support", "goxkey")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "goxkey")
	default:
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			configHome = filepath.Join(userHome(), ".config")
		}
		return filepath.Join(configHome, "goxkey")
	}
}

// PlatformRuntimeDir returns the directory for the control socket.
func PlatformRuntimeDir() string {
	switch runtime.GOOS {
	case "windows":
		return ""
	case "linux":
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			return filepath.Join(dir, "goxkey")
		}
		return filepath.Join("/tmp", fmt.Sprintf("goxkey-%d", os.Getuid()))
	default:
		return filepath.Join("/tmp", fmt.Sprintf("goxkey-%d", os.Getuid()))
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// DefaultSocketPath returns the default control socket path.
func DefaultSocketPath() string {
	if runtime.GOOS == "windows" {
		return `\\.\pipe\goxkey`
	}
	return filepath.Join(PlatformRuntimeDir(), "goxkey.sock")
}

func userHome() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return home
}

// FindConfigFile searches standard locations for a config file and
// returns the first hit, or empty string.
func FindConfigFile() string {
	dir := PlatformConfigDir()
	for _, name := range []string{"config.toml", "config.yaml", "config.yml", "config.json"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
