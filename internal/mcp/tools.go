package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	out := StatusOutput{
		PID:           st.PID,
		UptimeSeconds: st.UptimeSeconds,
		Screen:        fmt.Sprintf("%dx%d", st.ScreenWidth, st.ScreenHeight),
		Windows:       st.Stacked,
		Frames:        st.Frames,
		Interaction:   st.Interaction,
	}
	if st.Focused != 0 {
		out.Focused = formatWindow(st.Focused)
	}
	return nil, out, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.client.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	filter := strings.ToLower(strings.TrimSpace(args.Title))

	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(data.Windows))}
	for _, w := range data.Windows {
		if filter != "" && !strings.Contains(strings.ToLower(w.Title), filter) {
			continue
		}
		info := WindowInfo{
			Window:  formatWindow(w.Client),
			Title:   w.Title,
			Kind:    w.Kind,
			State:   w.State,
			X:       w.X,
			Y:       w.Y,
			Width:   w.Width,
			Height:  w.Height,
			Focused: w.Focused,
		}
		if w.Frame != 0 {
			info.Frame = formatWindow(w.Frame)
		}
		out.Windows = append(out.Windows, info)
	}
	s.logger.Debug("mcp list_windows", "count", len(out.Windows), "filter", filter)
	return nil, out, nil
}

func (s *Server) handleRaiseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	id, err := parseWindow(args.Window)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if err := s.client.Raise(id); err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: formatWindow(id), Done: true}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	id, err := parseWindow(args.Window)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if err := s.client.Close(id); err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: formatWindow(id), Done: true}, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.client.Reload(); err != nil {
		return nil, nil, err
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: "Configuration reloaded"},
		},
	}, nil, nil
}

// parseWindow accepts hex with a 0x prefix or decimal.
func parseWindow(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("window is required")
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: use hex (0x1a00007) or decimal", s)
	}
	if v == 0 {
		return 0, fmt.Errorf("window id must not be 0")
	}
	return uint32(v), nil
}

func formatWindow(id uint32) string {
	return fmt.Sprintf("%#x", id)
}
