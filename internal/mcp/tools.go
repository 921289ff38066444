package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/layout"
	"github.com/1broseidon/winstack/internal/window"
)

func summarizeWindow(w window.Info) WindowSummary {
	return WindowSummary{
		ID:        w.ID,
		Name:      w.Name,
		DisplayID: uint64(w.DisplayID),
		Type:      w.Type.String(),
		Mode:      w.Mode.String(),
		Focused:   w.Focused,
		X:         w.Rect.X,
		Y:         w.Rect.Y,
		Width:     w.Rect.Width,
		Height:    w.Rect.Height,
	}
}

func stackEntry(e container.TreeEntry) StackEntry {
	return StackEntry{
		ID:      e.ID,
		Name:    e.Name,
		Parent:  e.Parent,
		Layer:   e.Bucket,
		Type:    e.Type.String(),
		Z:       e.Z,
		Visible: e.Visible,
		Covered: e.Covered,
	}
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, ListDisplaysOutput{}, err
	}
	out := ListDisplaysOutput{Displays: make([]DisplaySummary, 0, len(status.Displays))}
	for _, d := range status.Displays {
		out.Displays = append(out.Displays, DisplaySummary{
			ID:      uint64(d.ID),
			Name:    d.Name,
			Layout:  d.Layout,
			Windows: d.Windows,
			Focused: d.Focused,
		})
	}
	return nil, out, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.daemon.ListWindows(args.DisplayID)
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: make([]WindowSummary, 0, len(windows))}
	for _, w := range windows {
		out.Windows = append(out.Windows, summarizeWindow(w))
	}
	return nil, out, nil
}

func (s *Server) handleGetStack(_ context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, GetStackOutput, error) {
	entries, err := s.daemon.GetTree(args.DisplayID)
	if err != nil {
		return nil, GetStackOutput{}, err
	}
	out := GetStackOutput{Entries: make([]StackEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, stackEntry(e))
	}
	return nil, out, nil
}

func (s *Server) handleRaiseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if args.WindowID == 0 {
		return nil, WindowOutput{}, fmt.Errorf("window_id is required")
	}
	if err := s.daemon.Raise(args.WindowID); err != nil {
		return nil, WindowOutput{}, fmt.Errorf("raise window %d: %w", args.WindowID, err)
	}
	s.logger.Info("window raised", "window", args.WindowID)
	return nil, WindowOutput{WindowID: args.WindowID}, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if args.WindowID == 0 {
		return nil, WindowOutput{}, fmt.Errorf("window_id is required")
	}
	if err := s.daemon.Focus(args.WindowID); err != nil {
		return nil, WindowOutput{}, fmt.Errorf("focus window %d: %w", args.WindowID, err)
	}
	s.logger.Info("window focused", "window", args.WindowID)
	return nil, WindowOutput{WindowID: args.WindowID}, nil
}

func (s *Server) handleSwitchLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchLayoutInput) (*mcpsdk.CallToolResult, SwitchLayoutOutput, error) {
	// Validate locally so a typo does not cost a round trip.
	mode, err := layout.ParseMode(args.Mode)
	if err != nil {
		return nil, SwitchLayoutOutput{}, err
	}
	if err := s.daemon.SwitchLayout(args.DisplayID, mode.String(), args.Reorder); err != nil {
		return nil, SwitchLayoutOutput{}, err
	}
	return nil, SwitchLayoutOutput{Mode: mode.String()}, nil
}

func (s *Server) handleSetSplitRatio(_ context.Context, _ *mcpsdk.CallToolRequest, args SplitRatioInput) (*mcpsdk.CallToolResult, any, error) {
	if args.Ratio <= 0 || args.Ratio >= 1 {
		return nil, nil, fmt.Errorf("ratio %.2f must be strictly between 0 and 1", args.Ratio)
	}
	return nil, nil, s.daemon.SetSplitRatio(args.DisplayID, args.Ratio)
}

func (s *Server) handleMinimizeAll(_ context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, any, error) {
	return nil, nil, s.daemon.MinimizeAll(args.DisplayID)
}
