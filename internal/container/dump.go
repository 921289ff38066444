package container

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

// TreeEntry is one row of a window tree dump.
type TreeEntry struct {
	ID       uint32             `json:"id"`
	Name     string             `json:"name,omitempty"`
	Display  platform.DisplayID `json:"display_id"`
	Parent   uint32             `json:"parent,omitempty"`
	Bucket   string             `json:"bucket"`
	Type     window.Type        `json:"type"`
	Mode     window.Mode        `json:"mode"`
	Flags    uint32             `json:"flags"`
	Priority int32              `json:"priority"`
	Z        int                `json:"z"`
	Rect     platform.Rect      `json:"rect"`
	Visible  bool               `json:"visible"`
	Covered  bool               `json:"covered"`
	Focused  bool               `json:"focused,omitempty"`
}

// Tree lists every attached window, top first.
func (c *Container) Tree() []TreeEntry {
	nodes := c.forest.Flatten()
	out := make([]TreeEntry, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, TreeEntry{
			ID:       n.ID,
			Name:     n.Name,
			Display:  n.DisplayID,
			Parent:   n.ParentID(),
			Bucket:   c.forest.HostBucket(n).String(),
			Type:     n.Type,
			Mode:     n.Mode,
			Flags:    uint32(n.Flags),
			Priority: n.Priority,
			Z:        n.ZOrder,
			Rect:     n.LayoutRect,
			Visible:  n.CurrentVisibility,
			Covered:  n.IsCovered,
			Focused:  n.ID == c.focusedWindow,
		})
	}
	return out
}

// FormatTree renders entries as an aligned table.
func FormatTree(entries []TreeEntry) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WindowName\tDisplayId\tWinId\tType\tMode\tFlag\tZOrd\tRect")
	for _, e := range entries {
		name := e.Name
		if e.Parent != window.InvalidID {
			name = "  " + name
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%d\t%d\t%s\n",
			name, e.Display, e.ID, e.Type, e.Mode, e.Flags, e.Z, e.Rect)
	}
	w.Flush()
	return b.String()
}

// DumpTree logs the window tree at debug level.
func (c *Container) DumpTree() {
	if !c.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	c.logger.Debug("window tree\n" + FormatTree(c.Tree()))
}
