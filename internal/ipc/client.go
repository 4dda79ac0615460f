package ipc

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Common errors
var (
	ErrNotConnected     = errors.New("not connected to daemon")
	ErrDaemonNotRunning = errors.New("daemon is not running")
)

// ClientConfig configures the IPC client.
type ClientConfig struct {
	SocketPath     string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(socketPath string) ClientConfig {
	return ClientConfig{
		SocketPath:     socketPath,
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

// Client is a synchronous client for the daemon control socket. All
// methods are safe for concurrent use; requests are serialized over a
// single connection.
type Client struct {
	mu        sync.Mutex
	conn      net.Conn
	config    ClientConfig
	nextReqID atomic.Uint32
}

// NewClient creates a new IPC client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{config: cfg}
}

// Connect establishes a connection to the daemon.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, err := net.DialTimeout("unix", c.config.SocketPath, c.config.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonNotRunning, err)
	}
	c.conn = conn
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// roundTrip sends a request and reads the matching response.
func (c *Client) roundTrip(msgType MessageType, payload []byte) (*Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	reqID := c.nextReqID.Add(1)
	msg := NewMessage(msgType, reqID, payload)

	deadline := time.Now().Add(c.config.RequestTimeout)
	c.conn.SetDeadline(deadline)

	if err := msg.Write(c.conn); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	for {
		resp, err := ReadMessage(c.conn)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		// Skip unsolicited messages
		if resp.Header.RequestID != reqID {
			continue
		}
		if resp.Header.Type == MsgError {
			var errResp ErrorResponse
			if err := Decode(resp.Payload, &errResp); err != nil {
				return nil, fmt.Errorf("daemon error (undecodable)")
			}
			return nil, fmt.Errorf("daemon error %d: %s", errResp.Code, errResp.Message)
		}
		return resp, nil
	}
}

// Ping checks that the daemon is responsive.
func (c *Client) Ping() error {
	resp, err := c.roundTrip(MsgPing, nil)
	if err != nil {
		return err
	}
	if resp.Header.Type != MsgPong {
		return fmt.Errorf("unexpected response type 0x%04x", uint16(resp.Header.Type))
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	resp, err := c.roundTrip(MsgStatusRequest, nil)
	if err != nil {
		return nil, err
	}
	var status StatusResponse
	if err := Decode(resp.Payload, &status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &status, nil
}

// Toggle flips the enabled state and returns the new state.
func (c *Client) Toggle() (bool, error) {
	resp, err := c.roundTrip(MsgToggle, nil)
	if err != nil {
		return false, err
	}
	var tr ToggleResponse
	if err := Decode(resp.Payload, &tr); err != nil {
		return false, fmt.Errorf("decode toggle response: %w", err)
	}
	return tr.Enabled, nil
}

// SetEnabled pins the enabled state.
func (c *Client) SetEnabled(enabled bool) error {
	payload, err := Encode(&SetEnabledRequest{Enabled: enabled})
	if err != nil {
		return err
	}
	_, err = c.roundTrip(MsgSetEnabled, payload)
	return err
}

// Reload asks the daemon to re-read its configuration.
func (c *Client) Reload() error {
	resp, err := c.roundTrip(MsgReloadConfig, nil)
	if err != nil {
		return err
	}
	var rr ReloadResponse
	if err := Decode(resp.Payload, &rr); err != nil {
		return fmt.Errorf("decode reload response: %w", err)
	}
	if !rr.Success {
		return fmt.Errorf("reload failed: %s", rr.Error)
	}
	return nil
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown() error {
	_, err := c.roundTrip(MsgShutdown, nil)
	return err
}
