package layout

import (
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

// Cascade places new floating windows on a diagonal staircase and supports a
// two-way split around a divider window.
type Cascade struct {
	base

	splitRatio float64

	dividerRect   platform.Rect
	primaryRect   platform.Rect
	secondaryRect platform.Rect

	primaryLimitRect   platform.Rect
	secondaryLimitRect platform.Rect

	firstCascadeRect platform.Rect
	curCascadeRect   platform.Rect
	firstAppPlaced   bool
}

var _ Policy = (*Cascade)(nil)

// NewCascade creates a cascade policy; call Launch before use.
func NewCascade(d Deps) *Cascade {
	c := &Cascade{base: newBase(d, "cascade")}
	c.splitRatio = c.settings.SplitRatio
	return c
}

func (c *Cascade) Launch() {
	c.updateDisplayInfo()
	c.logger.Info("cascade layout launched")
}

func (c *Cascade) Clean() {
	c.logger.Info("cascade layout cleaned")
}

// Reset returns split geometry to the configured ratio.
func (c *Cascade) Reset() {
	c.splitRatio = c.settings.SplitRatio
	c.updateDisplayInfo()
}

func (c *Cascade) UpdateDisplayInfo(display platform.Display) {
	c.display = display
	c.updateDisplayInfo()
	c.layoutWindowTree()
}

func (c *Cascade) updateDisplayInfo() {
	c.initSplitRects()
	c.initLimitRects()
	c.initCascadeRect()
}

func (c *Cascade) Geometry() Geometry {
	return Geometry{
		Display:      c.displayRect(),
		Limit:        c.limitRect,
		Divider:      c.dividerRect,
		Primary:      c.primaryRect,
		Secondary:    c.secondaryRect,
		FirstCascade: c.firstCascadeRect,
	}
}

func (c *Cascade) AddWindowNode(n *window.Node) {
	if n.RequestRect.IsEmpty() {
		c.setCascadeRect(n)
	}
	if n.Type == window.TypeDockSlice {
		n.RequestRect = c.dividerRect
	}
	c.UpdateWindowNode(n)
}

func (c *Cascade) UpdateWindowNode(n *window.Node) {
	switch {
	case avoidType(n.Type):
		c.layoutWindowTree()
	case n.Type == window.TypeDockSlice:
		c.updateLayoutRect(n)
		c.setSplitRect(n.LayoutRect)
		c.logger.Info("divider moved", "window", n.ID, "rect", n.LayoutRect)
		c.layoutWindowTree()
	default:
		c.layoutWindowNode(n)
	}
}

func (c *Cascade) RemoveWindowNode(n *window.Node) {
	if avoidType(n.Type) || n.Type == window.TypeDockSlice {
		c.layoutWindowTree()
	}
	c.notifyHidden(n)
}

// Reorder re-cascades every main window from the bottom up and lays the
// whole tree out again.
func (c *Cascade) Reorder() {
	var rect platform.Rect
	first := true
	for _, n := range c.forest.Root(window.BucketApp) {
		if n.Type != window.TypeAppMain {
			continue
		}
		if first {
			rect = c.firstCascadeRect
			first = false
		} else {
			rect = c.stepCascadeRect(rect)
			c.curCascadeRect = rect
		}
		n.RequestRect = rect
	}
	c.layoutWindowTree()
}

// SetSplitRatio moves the divider to ratio of the limit rect.
func (c *Cascade) SetSplitRatio(ratio float64) {
	c.splitRatio = ratio
	if !c.displayRect().IsVertical() {
		c.dividerRect.X = c.limitRect.X + int(float64(c.limitRect.Width-c.dividerRect.Width)*ratio)
	} else {
		c.dividerRect.Y = c.limitRect.Y + int(float64(c.limitRect.Height-c.dividerRect.Height)*ratio)
	}
	c.logger.Info("split ratio set", "ratio", ratio, "divider", c.dividerRect)
	c.setSplitRect(c.dividerRect)
	for _, n := range c.forest.Root(window.BucketApp) {
		if n.Type == window.TypeDockSlice {
			n.RequestRect = c.dividerRect
		}
	}
	c.layoutWindowTree()
}

func (c *Cascade) layoutWindowNode(n *window.Node) {
	if !n.Attached() {
		return
	}
	if !n.CurrentVisibility {
		c.logger.Debug("window not visible, skip layout", "window", n.ID)
		return
	}
	c.visitVisible(n, c.layoutOne)
}

func (c *Cascade) layoutOne(n *window.Node) {
	c.updateLayoutRect(n)
	if avoidType(n.Type) {
		c.carveLimit(n, &c.limitRect)
		clampSplitLimit(c.limitRect, &c.primaryLimitRect)
		clampSplitLimit(c.limitRect, &c.secondaryLimitRect)
		c.logger.Debug("limit rects", "limit", c.limitRect,
			"primary", c.primaryLimitRect, "secondary", c.secondaryLimitRect)
	}
}

func (c *Cascade) layoutWindowTree() {
	c.initLimitRects()
	c.walkTree(c.layoutOne)
}

func (c *Cascade) updateLayoutRect(n *window.Node) {
	needAvoid := n.HasFlag(window.FlagNeedAvoid)
	parentLimit := n.HasFlag(window.FlagParentLimit)
	floating := n.Mode == window.ModeFloating || n.Type == window.TypeDockSlice

	displayRect := c.displayRectFor(n.Mode)
	limitRect := displayRect
	if needAvoid {
		limitRect = c.limitRectFor(n.Mode)
	}

	winRect := n.RequestRect
	if !floating {
		winRect = limitRect
	} else {
		if n.DecorEnable {
			winRect = c.decorate(winRect)
		}
		if window.IsSubWindow(n.Type) && parentLimit {
			if parent := c.forest.ParentNode(n); parent != nil {
				fitInto(parent.LayoutRect, &winRect)
			}
		}
	}
	c.limitWindowSize(n, displayRect, &winRect)

	if n.Type == window.TypeDockSlice {
		c.limitMoveBounds(&winRect)
	}
	c.applyRect(n, winRect)
}

// limitMoveBounds keeps a dragged divider inside the limit rect. A tall
// divider moves horizontally, a wide one vertically; the other axis is
// stretched to the remaining span.
func (c *Cascade) limitMoveBounds(r *platform.Rect) {
	cur := *r
	r.X = max(cur.X, c.limitRect.X)
	r.Y = max(cur.Y, c.limitRect.Y)
	if r.Width < r.Height {
		r.X = min(r.X+r.Width, c.limitRect.Right()) - r.Width
		r.Height = cur.Bottom() - r.Y
	} else {
		r.Y = min(r.Y+r.Height, c.limitRect.Bottom()) - r.Height
		r.Width = cur.Right() - r.X
	}
}

func (c *Cascade) initCascadeRect() {
	display := c.displayRect()
	w := int(float64(display.Width) * c.settings.CascadeRatio)
	h := int(float64(display.Height) * c.settings.CascadeRatio)

	r := platform.Rect{Width: w, Height: h}
	if w <= c.limitRect.Width && h <= c.limitRect.Height {
		r.X = c.limitRect.X + c.limitRect.Width/2 - w/2
		r.Y = c.limitRect.Y + c.limitRect.Height/2 - h/2
	}
	c.firstCascadeRect = r
	c.curCascadeRect = r
}

func (c *Cascade) initLimitRects() {
	c.limitRect = c.displayRect()
	c.primaryLimitRect = c.primaryRect
	c.secondaryLimitRect = c.secondaryRect
}

func (c *Cascade) limitRectFor(mode window.Mode) platform.Rect {
	switch mode {
	case window.ModeSplitPrimary:
		return c.primaryLimitRect
	case window.ModeSplitSecondary:
		return c.secondaryLimitRect
	default:
		return c.limitRect
	}
}

func (c *Cascade) displayRectFor(mode window.Mode) platform.Rect {
	switch mode {
	case window.ModeSplitPrimary:
		return c.primaryRect
	case window.ModeSplitSecondary:
		return c.secondaryRect
	default:
		return c.displayRect()
	}
}

func clampSplitLimit(limit platform.Rect, split *platform.Rect) {
	*split = limit.Intersect(*split)
}

func (c *Cascade) initSplitRects() {
	display := c.displayRect()
	dw := c.settings.DividerWidth
	if !display.IsVertical() {
		c.dividerRect = platform.Rect{
			X:      display.X + int(float64(display.Width-dw)*c.splitRatio),
			Y:      display.Y,
			Width:  dw,
			Height: display.Height,
		}
	} else {
		c.dividerRect = platform.Rect{
			X:      display.X,
			Y:      display.Y + int(float64(display.Height-dw)*c.splitRatio),
			Width:  display.Width,
			Height: dw,
		}
	}
	c.logger.Debug("init divider rect", "divider", c.dividerRect)
	c.setSplitRect(c.dividerRect)
}

// setSplitRect derives the primary and secondary rects from a divider rect.
func (c *Cascade) setSplitRect(div platform.Rect) {
	display := c.displayRect()
	c.dividerRect.Width = div.Width
	c.dividerRect.Height = div.Height
	if !display.IsVertical() {
		c.primaryRect = platform.Rect{
			X:      display.X,
			Y:      display.Y,
			Width:  div.X - display.X,
			Height: display.Height,
		}
		sx := div.X + c.dividerRect.Width
		c.secondaryRect = platform.Rect{X: sx, Y: display.Y, Width: display.Right() - sx, Height: display.Height}
	} else {
		c.primaryRect = platform.Rect{
			X:      display.X,
			Y:      display.Y,
			Width:  display.Width,
			Height: div.Y - display.Y,
		}
		sy := div.Y + c.dividerRect.Height
		c.secondaryRect = platform.Rect{X: display.X, Y: sy, Width: display.Width, Height: display.Bottom() - sy}
	}
}

func (c *Cascade) stepCascadeRect(r platform.Rect) platform.Rect {
	display := c.displayRect()
	step := c.settings.CascadeOffset
	out := platform.Rect{Width: r.Width, Height: r.Height}
	if r.X+step >= c.limitRect.X && r.Right()+step <= display.Right() {
		out.X = r.X + step
	} else {
		out.X = c.limitRect.X
	}
	if r.Y+step >= c.limitRect.Y && r.Bottom()+step <= display.Bottom() {
		out.Y = r.Y + step
	} else {
		out.Y = c.limitRect.Y
	}
	return out
}

// curCascade steps from the request rect of the highest app-bucket window
// other than n and the divider.
func (c *Cascade) curCascade(n *window.Node) platform.Rect {
	var last platform.Rect
	roots := c.forest.Root(window.BucketApp)
	for i := len(roots) - 1; i >= 0; i-- {
		if roots[i].Type != window.TypeDockSlice && roots[i].ID != n.ID {
			last = roots[i].RequestRect
			break
		}
	}
	if last.IsEmpty() {
		return c.firstCascadeRect
	}
	return c.stepCascadeRect(last)
}

func (c *Cascade) setCascadeRect(n *window.Node) {
	var r platform.Rect
	switch {
	case window.IsAppWindow(n.Type) && !c.firstAppPlaced:
		r = c.firstCascadeRect
		c.firstAppPlaced = true
	case window.IsAppWindow(n.Type):
		c.curCascadeRect = c.curCascade(n)
		r = c.curCascadeRect
	default:
		r = c.firstCascadeRect
	}
	c.logger.Debug("cascade rect", "window", n.ID, "rect", r)
	n.RequestRect = r
}
