// Package mcp exposes the running window manager to agents as a Model
// Context Protocol server on stdio. Every tool is a thin call over the IPC
// socket, so the server runs as a separate process from the manager.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/casement/internal/ipc"
)

const (
	ServerName    = "casement"
	ServerVersion = "0.1.0"
)

// WindowClient is the subset of the IPC client the tools call.
type WindowClient interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	Raise(id uint32) error
	Close(id uint32) error
	Reload() error
}

var _ WindowClient = (*ipc.Client)(nil)

// Server is the MCP server for window manager control.
type Server struct {
	mcpServer *mcpsdk.Server
	client    WindowClient
	logger    *slog.Logger
}

// NewServer creates a server that forwards tool calls through client.
func NewServer(client WindowClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{client: client, logger: logger}

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
		Name:        "wm_status",
		Description: "Report whether the casement window manager is running, with screen size, window counts, the focused window and the current pointer interaction (idle, drag, resize, close).",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List managed windows topmost first with id, title, geometry and focus. Window ids are returned in hex and accepted by raise_window and close_window.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "raise_window",
		Description: "Raise a window to the top of the stacking order and give it input focus.",
	}, s.handleRaiseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Politely ask a window's program to close it (WM_DELETE_WINDOW). The program may prompt or refuse.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Reload casement's configuration file. Theme, hotkeys, spawn placement and log level take effect immediately; border insets are fixed until restart.",
	}, s.handleReload)
}
