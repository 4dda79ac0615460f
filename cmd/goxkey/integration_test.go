package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongmd/goxkey/internal/config"
	"github.com/hongmd/goxkey/internal/engine"
	"github.com/hongmd/goxkey/internal/ipc"
	"github.com/hongmd/goxkey/internal/logging"
	"github.com/hongmd/goxkey/internal/platform"
	"github.com/hongmd/goxkey/internal/telex"
)

func newTestController(t *testing.T) (*controller, string) {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := config.DefaultConfig()
	cfg.Input.Hotkey = "ctrl+shift"
	cfg.Macros = map[string]string{"btw": "by the way"}
	require.NoError(t, config.SaveConfig(cfg, cfgPath))

	loader := config.NewLoader(cfgPath)
	loaded, err := loader.Load()
	require.NoError(t, err)
	t.Cleanup(func() { loader.Close() })

	logger, err := logging.New(&logging.Config{Level: logging.LevelError})
	require.NoError(t, err)

	eng := engine.New(telex.New(), platform.NewSimulatedSink(), engineOptions(loaded, logger))
	return &controller{
		engine: eng,
		loader: loader,
		logger: logger,
		done:   make(chan struct{}),
	}, cfgPath
}

func TestEngineOptionsFromConfig(t *testing.T) {
	ctl, _ := newTestController(t)

	st := ctl.Status()
	assert.True(t, st.Enabled)
	assert.True(t, st.AutoToggle)
	assert.Equal(t, "ctrl+shift", st.Hotkey)
	assert.Equal(t, 1, st.MacroCount)
}

func TestControlSocketEndToEnd(t *testing.T) {
	ctl, _ := newTestController(t)

	socketPath := filepath.Join(t.TempDir(), "goxkey.sock")
	server := ipc.NewServer(ipc.ServerConfig{SocketPath: socketPath}, ctl)
	require.NoError(t, server.Start())
	defer server.Stop()

	client := ipc.NewClient(ipc.DefaultClientConfig(socketPath))
	require.NoError(t, client.Connect())
	defer client.Close()

	require.NoError(t, client.Ping())

	enabled, err := client.Toggle()
	require.NoError(t, err)
	assert.False(t, enabled)

	status, err := client.Status()
	require.NoError(t, err)
	assert.False(t, status.Enabled)
	assert.Equal(t, "ctrl+shift", status.Hotkey)

	require.NoError(t, client.SetEnabled(true))
	status, err = client.Status()
	require.NoError(t, err)
	assert.True(t, status.Enabled)
}

func TestReloadSwapsEngineTables(t *testing.T) {
	ctl, cfgPath := newTestController(t)

	cfg := ctl.loader.Config().Clone()
	cfg.Macros = map[string]string{"btw": "by the way", "omw": "on my way"}
	cfg.Input.Hotkey = "ctrl+alt"
	require.NoError(t, config.SaveConfig(cfg, cfgPath))

	require.NoError(t, ctl.Reload())

	st := ctl.Status()
	assert.Equal(t, 2, st.MacroCount)
	assert.Equal(t, "ctrl+alt", st.Hotkey)
}

func TestShutdownClosesOnce(t *testing.T) {
	ctl, _ := newTestController(t)

	ctl.Shutdown()
	ctl.Shutdown()

	select {
	case <-ctl.done:
	default:
		t.Fatal("done channel not closed")
	}
}
