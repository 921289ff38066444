package container

import (
	"fmt"

	"github.com/1broseidon/winstack/internal/avoid"
	"github.com/1broseidon/winstack/internal/layout"
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
)

// SwitchLayoutPolicy makes mode the active layout policy. With reorder the
// new policy re-lays-out every window from scratch.
func (c *Container) SwitchLayoutPolicy(mode layout.Mode, reorder bool) error {
	if !mode.Valid() {
		return fmt.Errorf("switch layout to %s: %w", mode, wmerr.ErrInvalidParam)
	}
	if c.mode != mode {
		if c.mode == layout.ModeCascade {
			c.policy().Reset()
			c.pair.Clear()
		}
		c.policy().Clean()
		c.mode = mode
		if c.policyDisplay[mode] != c.display {
			c.policy().UpdateDisplayInfo(c.display)
			c.policyDisplay[mode] = c.display
		}
		c.policy().Launch()
		c.logger.Info("layout policy switched", "mode", mode)
		c.DumpTree()
	} else {
		c.logger.Debug("layout policy unchanged", "mode", mode)
	}
	if reorder {
		c.pair.Clear()
		c.policy().Reorder()
		c.DumpTree()
	}
	c.NotifyIfSystemBarTintChanged()
	return nil
}

func (c *Container) LayoutMode() layout.Mode { return c.mode }

// Geometry returns the active policy's rects.
func (c *Container) Geometry() layout.Geometry { return c.policy().Geometry() }

// ApplySettings replaces the container tunables. Layout policies are rebuilt
// and the active one relaunched so new sizes apply to every window.
func (c *Container) ApplySettings(s Settings) {
	c.settings = s
	c.minimizedByOther = s.MinimizeByOther
	c.policy().Clean()
	c.policies = c.newPolicies()
	for m := range c.policies {
		c.policyDisplay[m] = c.display
	}
	c.policy().Launch()
	c.policy().Reorder()
	c.NotifyIfSystemBarTintChanged()
	c.logger.Info("settings applied", "mode", c.mode)
}

func (c *Container) newPolicies() map[layout.Mode]layout.Policy {
	deps := layout.Deps{
		DisplayID:  c.displayID,
		Display:    c.display,
		Forest:     c.forest,
		Compositor: c.compose,
		Settings:   c.settings.Layout,
		Minimize:   func(n *window.Node) { c.MinimizeWindowFromAbility(n, true) },
		Logger:     c.baseLogger,
	}
	return map[layout.Mode]layout.Policy{
		layout.ModeCascade: layout.NewCascade(deps),
		layout.ModeTile:    layout.NewTile(deps),
	}
}

// SetWindowMode moves n into mode, recording why its size is about to
// change.
func (c *Container) SetWindowMode(n *window.Node, mode window.Mode) error {
	if n == nil {
		return fmt.Errorf("set window mode: %w", wmerr.ErrNullPtr)
	}
	src := n.Mode
	if src == mode {
		return nil
	}
	switch {
	case src == window.ModeFullscreen && mode == window.ModeFloating:
		n.SizeReason = window.SizeChangeRecover
	case mode == window.ModeFullscreen:
		n.SizeReason = window.SizeChangeMaximize
	default:
		n.SizeReason = window.SizeChangeResize
	}
	n.Mode = mode
	c.pair.UpdateIfSplitRelated(n)
	if mode == window.ModeFullscreen && window.IsMainWindow(n.Type) && c.minimizedByOther {
		if err := c.MinimizeStructuredAppWindowsExceptSelf(n); err != nil {
			c.logger.Warn("minimize other windows failed", "window", n.ID, "error", err)
		}
	}
	if n.Client != nil {
		n.Client.UpdateWindowMode(mode)
	}
	c.logger.Info("window mode changed", "window", n.ID, "from", src, "to", mode)
	return c.UpdateWindowNode(n, window.UpdateMode)
}

// UpdateSizeChangeReason pushes reason to n's client, or to every split
// window when n is the divider.
func (c *Container) UpdateSizeChangeReason(n *window.Node, reason window.SizeChangeReason) {
	if n == nil {
		return
	}
	if n.Type != window.TypeDockSlice {
		if n.Client != nil {
			n.Client.UpdateWindowRect(n.LayoutRect, n.DecorEnable, reason)
		}
		n.SizeReason = window.SizeChangeUndefined
		return
	}
	for _, w := range c.forest.Root(window.BucketApp) {
		if w.Client == nil || !w.IsSplitMode() {
			continue
		}
		w.Client.UpdateWindowRect(w.LayoutRect, w.DecorEnable, reason)
		w.SizeReason = window.SizeChangeUndefined
	}
}

// SetSplitRatio moves the divider so the primary side takes ratio of the
// split extent.
func (c *Container) SetSplitRatio(ratio float64) error {
	if ratio <= 0 || ratio >= 1 {
		return fmt.Errorf("split ratio %.2f: %w", ratio, wmerr.ErrInvalidParam)
	}
	c.policy().SetSplitRatio(ratio)
	c.NotifyIfSystemBarRegionChanged()
	c.UpdateWindowVisibilityInfos(nil)
	return nil
}

// ModeChangeHotZones returns the drag targets along the top, left and right
// display edges.
func (c *Container) ModeChangeHotZones() HotZones {
	d := c.display.Bounds
	cfg := c.settings.HotZones
	return HotZones{
		Fullscreen: platform.Rect{X: d.X, Y: d.Y, Width: d.Width, Height: cfg.FullscreenRange},
		Primary:    platform.Rect{X: d.X, Y: d.Y, Width: cfg.PrimaryRange, Height: d.Height},
		Secondary:  platform.Rect{X: d.Right() - cfg.SecondaryRange, Y: d.Y, Width: cfg.SecondaryRange, Height: d.Height},
	}
}

// ProcessDisplayChange applies new display geometry to the avoid controller
// and the active policy. Inactive policies catch up when switched to.
func (c *Container) ProcessDisplayChange(d platform.Display) error {
	if d.ID != c.displayID {
		return fmt.Errorf("display %d is not %d: %w", d.ID, c.displayID, wmerr.ErrInvalidDisplay)
	}
	if d == c.display {
		return nil
	}
	c.logger.Info("display changed", "from", c.display.Bounds, "to", d.Bounds)
	c.display = d
	c.avoid.SetDisplayRect(d.Bounds)
	c.policy().UpdateDisplayInfo(d)
	c.policyDisplay[c.mode] = d
	c.NotifyIfSystemBarRegionChanged()
	c.UpdateWindowVisibilityInfos(nil)
	c.DumpTree()
	return nil
}

// OnAvoidAreaChange forwards new system avoid areas to fullscreen app
// windows.
func (c *Container) OnAvoidAreaChange(areas []platform.Rect, displayID platform.DisplayID) {
	if displayID != c.displayID {
		return
	}
	for _, n := range c.forest.Root(window.BucketApp) {
		if n.Mode == window.ModeFullscreen && n.Client != nil {
			n.Client.UpdateAvoidArea(areas)
		}
	}
}

// AvoidAreaByType returns the display's avoid rects (left, top, right,
// bottom).
func (c *Container) AvoidAreaByType(t avoid.AreaType) []platform.Rect {
	return c.avoid.AvoidAreaByType(t)
}

func (c *Container) DisplayID() platform.DisplayID { return c.displayID }

func (c *Container) Display() platform.Display { return c.display }

func (c *Container) DisplayRect() platform.Rect { return c.display.Bounds }

func (c *Container) VirtualPixelRatio() float64 {
	return c.policy().VirtualPixelRatio(c.displayID)
}

func (c *Container) IsVerticalDisplay() bool { return c.display.Bounds.IsVertical() }

// ScreenID resolves the compositor screen of this display, 0 without a
// display service.
func (c *Container) ScreenID() uint64 {
	if c.displays == nil {
		return 0
	}
	return c.displays.ScreenID(c.displayID)
}
