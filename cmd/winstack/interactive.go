package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/winstack/internal/ipc"
	"github.com/1broseidon/winstack/internal/mcp"
	"github.com/1broseidon/winstack/internal/tui"
)

func newTUICmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open a live view of the window stack",
		Long: `Open a live view of the window stack.

Keybindings:
  tab, 1/2  Switch between stack and displays
  f         Focus selected window
  u         Raise selected window
  l         Cycle layout mode
  m         Minimize all app windows
  r         Refresh now
  q         Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(ipc.NewClient(), interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "refresh interval")
	return cmd
}

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdio, backed by the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			return mcp.NewServer(ipc.NewClient(), logger).Run(cmd.Context())
		},
	})
	return cmd
}
