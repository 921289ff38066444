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

	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/daemon"
	"github.com/1broseidon/winstack/internal/layout"
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

// Engine is the part of the daemon engine the server drives.
type Engine interface {
	Status(ctx context.Context) ([]daemon.DisplayStatus, error)
	Tree(ctx context.Context, displayID platform.DisplayID) ([]container.TreeEntry, error)
	Windows(ctx context.Context, displayID platform.DisplayID) ([]window.Info, error)
	SwitchLayout(ctx context.Context, displayID platform.DisplayID, mode layout.Mode, reorder bool) error
	Raise(ctx context.Context, id uint32) error
	Focus(ctx context.Context, id uint32) error
	SetSplitRatio(ctx context.Context, displayID platform.DisplayID, ratio float64) error
	MinimizeAll(ctx context.Context, displayID platform.DisplayID) error
}

var _ Engine = (*daemon.Engine)(nil)

// ReloadFunc reloads configuration and applies it.
type ReloadFunc func(ctx context.Context) error

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	reload       ReloadFunc
	logger       *slog.Logger
	timeout      time.Duration
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a server listening on socketPath once started.
func NewServer(socketPath string, engine Engine, reload ReloadFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		engine:     engine,
		reload:     reload,
		logger:     logger.With("component", "ipc"),
		timeout:    5 * time.Second,
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove existing socket if present
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
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

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.send(conn, s.handleCommand(ctx, req))
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)
	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandGetTree:
		return s.handleGetTree(ctx, req.Payload)
	case CommandListWindows:
		return s.handleListWindows(ctx, req.Payload)
	case CommandSwitchLayout:
		return s.handleSwitchLayout(ctx, req.Payload)
	case CommandRaise:
		return s.handleWindow(ctx, req.Payload, s.engine.Raise)
	case CommandFocus:
		return s.handleWindow(ctx, req.Payload, s.engine.Focus)
	case CommandSetSplitRatio:
		return s.handleSetSplitRatio(ctx, req.Payload)
	case CommandMinimizeAll:
		return s.handleMinimizeAll(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload(ctx context.Context) *Response {
	s.logger.Info("IPC: received RELOAD command")
	if s.reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	if err := s.reload(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.logger.Info("IPC: config reloaded successfully")
	return ok(nil)
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus(ctx context.Context) *Response {
	displays, err := s.engine.Status(ctx)
	if err != nil {
		return NewCodedErrorResponse(err)
	}
	return ok(StatusData{
		Displays:      displays,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	})
}

func (s *Server) handleGetTree(ctx context.Context, payload json.RawMessage) *Response {
	var req DisplayPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid tree payload: %v", err))
	}
	entries, err := s.engine.Tree(ctx, platform.DisplayID(req.DisplayID))
	if err != nil {
		return NewCodedErrorResponse(err)
	}
	return ok(TreeData{Entries: entries})
}

func (s *Server) handleListWindows(ctx context.Context, payload json.RawMessage) *Response {
	var req DisplayPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid windows payload: %v", err))
	}
	windows, err := s.engine.Windows(ctx, platform.DisplayID(req.DisplayID))
	if err != nil {
		return NewCodedErrorResponse(err)
	}
	return ok(WindowsData{Windows: windows})
}

func (s *Server) handleSwitchLayout(ctx context.Context, payload json.RawMessage) *Response {
	var req SwitchLayoutPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid layout payload: %v", err))
	}
	mode, err := layout.ParseMode(req.Mode)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	if err := s.engine.SwitchLayout(ctx, platform.DisplayID(req.DisplayID), mode, req.Reorder); err != nil {
		return NewCodedErrorResponse(err)
	}
	s.logger.Info("IPC: layout switched", "display", req.DisplayID, "mode", mode, "reorder", req.Reorder)
	return ok(nil)
}

func (s *Server) handleWindow(ctx context.Context, payload json.RawMessage, op func(context.Context, uint32) error) *Response {
	var req WindowPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
	}
	if req.WindowID == 0 {
		return NewErrorResponse("window_id is required")
	}
	if err := op(ctx, req.WindowID); err != nil {
		return NewCodedErrorResponse(err)
	}
	return ok(nil)
}

func (s *Server) handleSetSplitRatio(ctx context.Context, payload json.RawMessage) *Response {
	var req SplitRatioPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid split payload: %v", err))
	}
	if err := s.engine.SetSplitRatio(ctx, platform.DisplayID(req.DisplayID), req.Ratio); err != nil {
		return NewCodedErrorResponse(err)
	}
	return ok(nil)
}

func (s *Server) handleMinimizeAll(ctx context.Context, payload json.RawMessage) *Response {
	var req DisplayPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid minimize payload: %v", err))
	}
	if err := s.engine.MinimizeAll(ctx, platform.DisplayID(req.DisplayID)); err != nil {
		return NewCodedErrorResponse(err)
	}
	return ok(nil)
}

// Stop gracefully shuts down the IPC server
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

func decodePayload(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, out)
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}
