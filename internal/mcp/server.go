// Package mcp exposes the window stack to MCP clients over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/ipc"
	"github.com/1broseidon/winstack/internal/window"
)

const (
	ServerName    = "winstack"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools call.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetTree(displayID uint64) ([]container.TreeEntry, error)
	ListWindows(displayID uint64) ([]window.Info, error)
	SwitchLayout(displayID uint64, mode string, reorder bool) error
	Raise(windowID uint32) error
	Focus(windowID uint32) error
	SetSplitRatio(displayID uint64, ratio float64) error
	MinimizeAll(displayID uint64) error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for window stack inspection and control.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a new MCP server backed by the running daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger.With("component", "mcp"),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List the displays the window manager tracks with their layout mode, window count and focused window.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List managed windows, topmost first, with type, mode and geometry. Limit to one display with display_id.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_stack",
		Description: "Return the full stacking order of a display, topmost first, including system windows, layer and occlusion.",
	}, s.handleGetStack)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "raise_window",
		Description: "Raise an app window to the top of its layer. Fails with INVALID_TYPE if it is already on top.",
	}, s.handleRaiseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Give input focus to a managed window and make it the active window of its display.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_layout",
		Description: "Switch the layout mode of a display (or all displays) to cascade or tile.",
	}, s.handleSwitchLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_split_ratio",
		Description: "Move the split-screen divider of a display. The ratio is the primary side's share, strictly between 0 and 1.",
	}, s.handleSetSplitRatio)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_all",
		Description: "Minimize every app window on a display (or all displays).",
	}, s.handleMinimizeAll)
}
