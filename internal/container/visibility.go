package container

import (
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

// UpdateWindowVisibilityInfos recomputes occlusion for every attached window,
// top first. A window is covered when its display-clipped rect lies inside a
// single rect already seen above it; partial overlaps never cover. Changed
// states are appended to infos and the whole batch is reported.
func (c *Container) UpdateWindowVisibilityInfos(infos []window.VisibilityInfo) []window.VisibilityInfo {
	var seen []platform.Rect
	display := c.display.Bounds
	c.forest.TraverseTopToBottom(func(n *window.Node) bool {
		r := n.LayoutRect.ClipToDisplay(display)
		covered := false
		for _, above := range seen {
			if r.IsInsideOf(above) {
				covered = true
				break
			}
		}
		if !covered {
			seen = append(seen, r)
		}
		if n.IsCovered != covered {
			n.IsCovered = covered
			infos = append(infos, window.VisibilityInfo{
				WindowID: n.ID,
				PID:      n.PID,
				UID:      n.UID,
				Visible:  !covered,
			})
			c.logger.Debug("occlusion changed", "window", n.ID, "covered", covered)
		}
		return false
	})
	c.agent.UpdateWindowVisibilityInfo(infos)
	return infos
}

// TraverseContainer returns every attached window top to bottom, with
// children that render beneath their host listed right after it.
func (c *Container) TraverseContainer() []*window.Node {
	return c.forest.Flatten()
}

// WindowList returns the public snapshot of every attached window, top
// first.
func (c *Container) WindowList() []window.Info {
	nodes := c.forest.Flatten()
	out := make([]window.Info, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, c.info(n))
	}
	return out
}

func (c *Container) info(n *window.Node) window.Info {
	return window.Info{
		ID:        n.ID,
		Name:      n.Name,
		Rect:      n.LayoutRect,
		Focused:   n.ID == c.focusedWindow,
		DisplayID: n.DisplayID,
		Mode:      n.Mode,
		Type:      n.Type,
	}
}

// notifyAccessibility reports n together with the current window list.
// Removal is always reported, additions only for visible windows and focus
// changes only for the focused window.
func (c *Container) notifyAccessibility(n *window.Node, kind window.UpdateType) {
	if n == nil {
		return
	}
	switch kind {
	case window.UpdateRemoved:
	case window.UpdateAdded:
		if !n.CurrentVisibility {
			return
		}
	case window.UpdateFocused:
		if n.ID != c.focusedWindow {
			return
		}
	default:
		return
	}
	c.agent.NotifyAccessibilityWindowInfo(window.AccessibilityInfo{
		Current: c.info(n),
		Windows: c.WindowList(),
	}, kind)
}
