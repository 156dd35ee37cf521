package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/wm"
)

// requestTimeout bounds how long a request may wait for the event loop.
const requestTimeout = 3 * time.Second

// Executor runs a function on the goroutine that owns the manager.
type Executor interface {
	Do(ctx context.Context, fn func(*wm.Manager) error) error
}

// ServerConfig wires a Server.
type ServerConfig struct {
	SocketPath string
	Executor   Executor
	// Reload reloads the configuration; it runs on the executor.
	Reload func(*wm.Manager) error
	Logger *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	exec         Executor
	reload       func(*wm.Manager) error
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.SocketPath == "" {
		return nil, errors.New("socket path is required")
	}
	if cfg.Executor == nil {
		return nil, errors.New("executor is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Remove a stale socket left by a previous run.
	os.Remove(cfg.SocketPath)

	return &Server{
		socketPath: cfg.SocketPath,
		exec:       cfg.Executor,
		reload:     cfg.Reload,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves one newline-terminated JSON request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * requestTimeout))

	reader := bufio.NewReader(conn)

	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Debug("failed to send IPC response", "error", err)
	}
}

func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandListWindows:
		return s.handleListWindows(ctx)
	case CommandRaise:
		return s.handleWindowCommand(ctx, req.Payload, (*wm.Manager).RaiseWindow)
	case CommandClose:
		return s.handleWindowCommand(ctx, req.Payload, (*wm.Manager).CloseWindow)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload(ctx context.Context) *Response {
	if s.reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	s.logger.Info("IPC: received RELOAD command")
	if err := s.exec.Do(ctx, s.reload); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	var st wm.Status
	var screen platform.Rect
	err := s.exec.Do(ctx, func(m *wm.Manager) error {
		st = m.Status()
		screen = m.Screen()
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}

	resp, _ := NewOKResponse(StatusData{
		PID:           os.Getpid(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		ScreenWidth:   screen.Width,
		ScreenHeight:  screen.Height,
		Nodes:         st.Nodes,
		Frames:        st.Frames,
		Stacked:       st.Stacked,
		Focused:       uint32(st.Focused),
		Interaction:   st.Interaction,
		PendingRedraw: st.Pending,
	})
	return resp
}

func (s *Server) handleListWindows(ctx context.Context) *Response {
	var infos []wm.WindowInfo
	err := s.exec.Do(ctx, func(m *wm.Manager) error {
		infos = m.Windows()
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list windows: %v", err))
	}

	data := WindowsData{Windows: make([]WindowData, 0, len(infos))}
	for _, w := range infos {
		data.Windows = append(data.Windows, WindowData{
			Client:     uint32(w.Client),
			Frame:      uint32(w.Frame),
			Title:      w.Title,
			Kind:       w.Kind,
			Management: w.Management,
			State:      w.State,
			X:          w.Geometry.X,
			Y:          w.Geometry.Y,
			Width:      w.Geometry.Width,
			Height:     w.Geometry.Height,
			Focused:    w.Focused,
		})
	}
	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleWindowCommand(ctx context.Context, payload json.RawMessage, op func(*wm.Manager, platform.WindowID) error) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
	}
	if req.Window == 0 {
		return NewErrorResponse("window is required")
	}
	err := s.exec.Do(ctx, func(m *wm.Manager) error {
		return op(m, platform.WindowID(req.Window))
	})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
