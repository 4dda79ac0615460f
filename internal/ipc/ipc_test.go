package ipc

import (
	"bytes"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	mu        sync.Mutex
	enabled   bool
	reloads   int
	reloadErr error
	shutdown  bool
}

func (f *fakeController) Status() StatusResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return StatusResponse{
		Version:    "test",
		Enabled:    f.enabled,
		Hotkey:     "ctrl",
		MacroCount: 2,
	}
}

func (f *fakeController) Toggle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = !f.enabled
	return f.enabled
}

func (f *fakeController) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

func (f *fakeController) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return f.reloadErr
}

func (f *fakeController) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown = true
}

func (f *fakeController) isEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *fakeController) reloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reloads
}

func (f *fakeController) setReloadErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloadErr = err
}

func startServer(t *testing.T, ctrl Controller) (*Server, string) {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "test.sock")
	srv := NewServer(ServerConfig{SocketPath: socketPath}, ctrl)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })
	return srv, socketPath
}

func dial(t *testing.T, socketPath string) *Client {
	t.Helper()
	client := NewClient(DefaultClientConfig(socketPath))
	require.NoError(t, client.Connect())
	t.Cleanup(func() { client.Close() })
	return client
}

func TestMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	msg := NewMessage(MsgStatusRequest, 7, []byte(`{"a":1}`))
	require.NoError(t, msg.Write(&buf))

	got, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, MsgStatusRequest, got.Header.Type)
	assert.Equal(t, uint32(7), got.Header.RequestID)
	assert.Equal(t, []byte(`{"a":1}`), got.Payload)
}

func TestReadMessageRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	msg := NewMessage(MsgPing, 1, nil)
	msg.Header.Magic = 0xDEADBEEF
	require.NoError(t, msg.Write(&buf))

	_, err := ReadMessage(&buf)
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	_, socketPath := startServer(t, &fakeController{})
	client := dial(t, socketPath)
	assert.NoError(t, client.Ping())
}

func TestStatus(t *testing.T) {
	_, socketPath := startServer(t, &fakeController{enabled: true})
	client := dial(t, socketPath)

	status, err := client.Status()
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.Equal(t, "ctrl", status.Hotkey)
	assert.Equal(t, 2, status.MacroCount)
}

func TestToggle(t *testing.T) {
	ctrl := &fakeController{}
	_, socketPath := startServer(t, ctrl)
	client := dial(t, socketPath)

	enabled, err := client.Toggle()
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = client.Toggle()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSetEnabled(t *testing.T) {
	ctrl := &fakeController{enabled: true}
	_, socketPath := startServer(t, ctrl)
	client := dial(t, socketPath)

	require.NoError(t, client.SetEnabled(false))
	assert.False(t, ctrl.isEnabled())
}

func TestReload(t *testing.T) {
	ctrl := &fakeController{}
	_, socketPath := startServer(t, ctrl)
	client := dial(t, socketPath)

	require.NoError(t, client.Reload())
	assert.Equal(t, 1, ctrl.reloadCount())

	ctrl.setReloadErr(errors.New("bad config"))
	err := client.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad config")
}

func TestSecondServerRefusesBusySocket(t *testing.T) {
	ctrl := &fakeController{}
	_, socketPath := startServer(t, ctrl)

	dup := NewServer(ServerConfig{SocketPath: socketPath}, ctrl)
	err := dup.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in use")
}

func TestStaleSocketCleanedUp(t *testing.T) {
	ctrl := &fakeController{}
	srv, socketPath := startServer(t, ctrl)
	require.NoError(t, srv.Stop())

	// A fresh server on the same path must succeed
	again := NewServer(ServerConfig{SocketPath: socketPath}, ctrl)
	require.NoError(t, again.Start())
	defer again.Stop()

	client := dial(t, socketPath)
	assert.NoError(t, client.Ping())
}

func TestClientTimeoutConfig(t *testing.T) {
	cfg := DefaultClientConfig("/tmp/never.sock")
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)

	client := NewClient(cfg)
	err := client.Connect()
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
}
