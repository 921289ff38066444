package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/ipc"
)

func newStatusCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ipc.NewClient().GetStatus()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, status)
			}
			fmt.Fprintf(out, "daemon_running: %v\n", status.DaemonRunning)
			fmt.Fprintf(out, "uptime:         %s\n", time.Duration(status.UptimeSeconds)*time.Second)
			for _, d := range status.Displays {
				fmt.Fprintf(out, "display %d (%s): layout=%s windows=%d focused=%d bounds=%s\n",
					d.ID, d.Name, d.Layout, d.Windows, d.Focused, d.Bounds)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newTreeCmd() *cobra.Command {
	var (
		displayID uint64
		jsonOut   bool
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the window stack, top first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := ipc.NewClient().GetTree(displayID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, entries)
			}
			fmt.Fprintln(out, renderTree(entries, isTerminal(out)))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&displayID, "display", 0, "display id (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newLayoutCmd() *cobra.Command {
	var (
		displayID uint64
		reorder   bool
	)
	cmd := &cobra.Command{
		Use:       "layout <cascade|tile>",
		Short:     "Switch the layout mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"cascade", "tile"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ipc.NewClient().SwitchLayout(displayID, args[0], reorder)
		},
	}
	cmd.Flags().Uint64Var(&displayID, "display", 0, "display id (0 for all)")
	cmd.Flags().BoolVar(&reorder, "reorder", false, "re-run placement for every window")
	return cmd
}

func newRaiseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "raise <window-id>",
		Short: "Raise a window to the top of its layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWindowID(args[0])
			if err != nil {
				return err
			}
			return ipc.NewClient().Raise(id)
		},
	}
}

func newFocusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "focus <window-id>",
		Short: "Focus a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWindowID(args[0])
			if err != nil {
				return err
			}
			return ipc.NewClient().Focus(id)
		},
	}
}

func newSplitRatioCmd() *cobra.Command {
	var displayID uint64
	cmd := &cobra.Command{
		Use:   "split-ratio <ratio>",
		Short: "Move the split divider, ratio in (0, 1)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratio, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid ratio %q: %w", args[0], err)
			}
			return ipc.NewClient().SetSplitRatio(displayID, ratio)
		},
	}
	cmd.Flags().Uint64Var(&displayID, "display", 0, "display id (0 for all)")
	return cmd
}

func newMinimizeAllCmd() *cobra.Command {
	var displayID uint64
	cmd := &cobra.Command{
		Use:   "minimize-all",
		Short: "Minimize every app window and return to cascade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ipc.NewClient().MinimizeAll(displayID)
		},
	}
	cmd.Flags().Uint64Var(&displayID, "display", 0, "display id (0 for all)")
	return cmd
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask the daemon to reload its config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ipc.NewClient().Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
			return nil
		},
	}
}

func parseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(id), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	treeHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	treeFocusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	treeCoveredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderTree formats entries as a table. Colors are applied only when styled.
func renderTree(entries []container.TreeEntry, styled bool) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		state := "visible"
		switch {
		case e.Focused:
			state = "focused"
		case e.Covered:
			state = "covered"
		case !e.Visible:
			state = "hidden"
		}
		parent := "-"
		if e.Parent != 0 {
			parent = strconv.FormatUint(uint64(e.Parent), 10)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.Name,
			strconv.FormatUint(uint64(e.Display), 10),
			parent,
			e.Bucket,
			e.Type.String(),
			e.Mode.String(),
			strconv.Itoa(int(e.Priority)),
			strconv.Itoa(e.Z),
			fmt.Sprintf("%d,%d %dx%d", e.Rect.X, e.Rect.Y, e.Rect.Width, e.Rect.Height),
			state,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "DISPLAY", "PARENT", "BUCKET", "TYPE", "MODE", "PRIO", "Z", "RECT", "STATE").
		Rows(rows...)
	if styled {
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return treeHeaderStyle
			}
			if row < 0 || row >= len(entries) {
				return lipgloss.NewStyle()
			}
			switch {
			case entries[row].Focused:
				return treeFocusedStyle
			case entries[row].Covered || !entries[row].Visible:
				return treeCoveredStyle
			}
			return lipgloss.NewStyle()
		})
	}
	return t.Render()
}
