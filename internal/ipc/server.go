package ipc

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hongmd/goxkey/internal/logging"
)

// Controller is the daemon surface exposed over the control socket.
type Controller interface {
	// Status returns a snapshot of the daemon state.
	Status() StatusResponse

	// Toggle flips the enabled state and returns the new state.
	Toggle() bool

	// SetEnabled pins the enabled state.
	SetEnabled(enabled bool)

	// Reload re-reads the configuration from disk.
	Reload() error

	// Shutdown asks the daemon to exit.
	Shutdown()
}

// ServerConfig configures the IPC server.
type ServerConfig struct {
	SocketPath   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *logging.Logger
}

// Server accepts client connections on a local socket and dispatches
// requests to the Controller.
type Server struct {
	socketPath   string
	controller   Controller
	listener     net.Listener
	readTimeout  time.Duration
	writeTimeout time.Duration
	log          *logging.Logger

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewServer creates a new IPC server.
func NewServer(cfg ServerConfig, controller Controller) *Server {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Default()
	}
	return &Server{
		socketPath:   cfg.SocketPath,
		controller:   controller,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		log:          log.WithComponent("ipc"),
		conns:        make(map[net.Conn]struct{}),
	}
}

// Start begins listening for connections.
func (s *Server) Start() error {
	if IsSocketListening(s.socketPath) {
		return fmt.Errorf("socket %s already in use, another instance running?", s.socketPath)
	}

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o700); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	if err := CleanupSocket(s.socketPath); err != nil {
		return fmt.Errorf("cleanup stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}

	// Owner only
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("set socket permissions: %w", err)
	}

	s.listener = listener
	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	s.log.Info("control socket listening", "path", s.socketPath)
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}

	os.Remove(s.socketPath)
	return nil
}

// SocketPath returns the socket path.
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("accept failed", "error", err)
			continue
		}

		if ok, err := VerifyPeerIsCurrentUser(conn); err == nil && !ok {
			s.log.Warn("rejected connection from foreign uid")
			conn.Close()
			continue
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))

		msg, err := ReadMessage(conn)
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
					s.log.Debug("read failed", "error", err)
				}
			}
			return
		}

		response, err := s.processMessage(msg)
		if err != nil {
			response = NewErrorMessage(msg.Header.RequestID, ErrInternalError, err.Error())
		}

		if response != nil {
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := response.Write(conn); err != nil {
				return
			}
		}
	}
}

func (s *Server) processMessage(msg *Message) (*Message, error) {
	reqID := msg.Header.RequestID

	switch msg.Header.Type {
	case MsgPing:
		return NewMessage(MsgPong, reqID, nil), nil

	case MsgStatusRequest:
		return NewResponse(MsgStatusResponse, reqID, s.controller.Status())

	case MsgToggle:
		enabled := s.controller.Toggle()
		return NewResponse(MsgToggleResp, reqID, &ToggleResponse{Enabled: enabled})

	case MsgSetEnabled:
		var req SetEnabledRequest
		if err := Decode(msg.Payload, &req); err != nil {
			return NewErrorMessage(reqID, ErrInvalidRequest, "invalid set-enabled request"), nil
		}
		s.controller.SetEnabled(req.Enabled)
		return NewResponse(MsgSetEnabledResp, reqID, &SetEnabledResponse{Enabled: req.Enabled})

	case MsgReloadConfig:
		resp := &ReloadResponse{Success: true}
		if err := s.controller.Reload(); err != nil {
			resp.Success = false
			resp.Error = err.Error()
		}
		return NewResponse(MsgReloadConfigResp, reqID, resp)

	case MsgShutdown:
		s.controller.Shutdown()
		return NewMessage(MsgPong, reqID, nil), nil

	default:
		return NewErrorMessage(reqID, ErrInvalidRequest, fmt.Sprintf("unknown message type 0x%04x", uint16(msg.Header.Type))), nil
	}
}
