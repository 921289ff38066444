// Package avoid tracks system-bar windows and the screen edges they occupy.
package avoid

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
)

// ControlKind is the structural change reported for an avoid-type window.
type ControlKind int

const (
	NodeAdd ControlKind = iota
	NodeUpdate
	NodeRemove
)

// AreaType selects which avoid areas a caller is interested in.
type AreaType int

const (
	AreaSystem AreaType = iota
	AreaCutout
	AreaSystemGesture
)

// Pos is the screen edge a bar is docked to.
type Pos int

const (
	PosLeft Pos = iota
	PosTop
	PosRight
	PosBottom
	PosUnknown
)

// PosOf classifies a bar rect: wide bars sit on the top or bottom edge,
// tall bars on the left or right, by which half of the display holds their
// centre.
func PosOf(rect, display platform.Rect) Pos {
	if rect.IsEmpty() {
		return PosUnknown
	}
	if rect.Width >= rect.Height {
		if 2*rect.Y+rect.Height < 2*display.Y+display.Height {
			return PosTop
		}
		return PosBottom
	}
	if 2*rect.X+rect.Width < 2*display.X+display.Width {
		return PosLeft
	}
	return PosRight
}

// ChangeFunc receives the new system avoid areas (left, top, right, bottom).
type ChangeFunc func(areas []platform.Rect, displayID platform.DisplayID)

// Controller computes the avoid areas of one display.
type Controller struct {
	displayID platform.DisplayID
	display   platform.Rect
	nodes     map[uint32]*window.Node
	areas     []platform.Rect
	onChange  ChangeFunc
	logger    *slog.Logger
}

// NewController creates a controller for displayID. onChange may be nil.
func NewController(displayID platform.DisplayID, display platform.Rect, onChange ChangeFunc, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		displayID: displayID,
		display:   display,
		nodes:     make(map[uint32]*window.Node),
		areas:     make([]platform.Rect, PosUnknown),
		onChange:  onChange,
		logger:    logger.With("component", "avoid", "display", displayID),
	}
}

// SetDisplayRect updates the display geometry and recomputes areas.
func (c *Controller) SetDisplayRect(r platform.Rect) {
	c.display = r
	c.recompute()
}

// AvoidControl registers, refreshes or drops an avoid-type window.
func (c *Controller) AvoidControl(n *window.Node, kind ControlKind) error {
	if n == nil {
		return wmerr.ErrNullPtr
	}
	if !window.IsAvoidAreaWindow(n.Type) {
		return fmt.Errorf("window %d is %s: %w", n.ID, n.Type, wmerr.ErrInvalidType)
	}
	_, known := c.nodes[n.ID]
	switch kind {
	case NodeAdd:
		if known {
			return fmt.Errorf("avoid window %d already added: %w", n.ID, wmerr.ErrInvalidParam)
		}
		c.nodes[n.ID] = n
	case NodeUpdate:
		if !known {
			return fmt.Errorf("avoid window %d unknown: %w", n.ID, wmerr.ErrInvalidParam)
		}
		c.nodes[n.ID] = n
	case NodeRemove:
		if !known {
			return fmt.Errorf("avoid window %d unknown: %w", n.ID, wmerr.ErrInvalidParam)
		}
		delete(c.nodes, n.ID)
	default:
		return wmerr.ErrInvalidParam
	}
	c.recompute()
	return nil
}

// AvoidAreaByType returns the avoid rects ordered left, top, right, bottom.
// Only system areas are tracked; other types report empty rects.
func (c *Controller) AvoidAreaByType(t AreaType) []platform.Rect {
	if t != AreaSystem {
		return make([]platform.Rect, PosUnknown)
	}
	return slices.Clone(c.areas)
}

func (c *Controller) recompute() {
	areas := make([]platform.Rect, PosUnknown)
	for _, n := range c.nodes {
		if !n.CurrentVisibility {
			continue
		}
		pos := PosOf(n.LayoutRect, c.display)
		if pos == PosUnknown {
			continue
		}
		areas[pos] = n.LayoutRect
	}
	if slices.Equal(areas, c.areas) {
		return
	}
	c.areas = areas
	c.logger.Debug("avoid areas changed", "left", areas[PosLeft], "top", areas[PosTop],
		"right", areas[PosRight], "bottom", areas[PosBottom])
	if c.onChange != nil {
		c.onChange(slices.Clone(areas), c.displayID)
	}
}
