package container

import (
	"fmt"

	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
)

// maxBrightness scales a [0,1] window brightness to the power service range.
const maxBrightness = 255

// SetFocusWindow moves focus to id.
func (c *Container) SetFocusWindow(id uint32) error {
	if c.focusedWindow == id {
		c.logger.Debug("focus unchanged", "window", id)
		return wmerr.ErrDoNothing
	}
	c.updateFocusStatus(c.focusedWindow, false)
	c.focusedWindow = id
	c.notifyAccessibility(c.forest.Find(id), window.UpdateFocused)
	c.updateFocusStatus(id, true)
	return nil
}

func (c *Container) FocusWindow() uint32 { return c.focusedWindow }

func (c *Container) updateFocusStatus(id uint32, focused bool) {
	n := c.forest.Find(id)
	if n == nil {
		if id != window.InvalidID {
			c.logger.Warn("focus target not found", "window", id)
		}
		return
	}
	if n.Client != nil {
		n.Client.UpdateFocusStatus(focused)
	}
	if focused {
		c.logger.Info("focus changed", "window", id, "name", n.Name)
	}
	c.agent.UpdateFocusChangeInfo(window.FocusChangeInfo{
		WindowID:  n.ID,
		DisplayID: n.DisplayID,
		PID:       n.PID,
		UID:       n.UID,
		Type:      n.Type,
	}, focused)
}

// SetActiveWindow makes id the active window and applies its brightness.
// byRemoved is set when activation moves because the previous holder left.
func (c *Container) SetActiveWindow(id uint32, byRemoved bool) error {
	if c.activeWindow == id {
		c.logger.Debug("active window unchanged", "window", id)
		return wmerr.ErrDoNothing
	}
	c.updateActiveStatus(c.activeWindow, false)
	c.activeWindow = id
	c.updateActiveStatus(id, true)
	c.updateBrightness(id, byRemoved)
	return nil
}

func (c *Container) ActiveWindow() uint32 { return c.activeWindow }

func (c *Container) BrightnessWindow() uint32 { return c.brightnessWindow }

// DisplayBrightness is the brightness last applied, or -1 for the system
// default.
func (c *Container) DisplayBrightness() float64 { return c.displayBrightness }

func (c *Container) updateActiveStatus(id uint32, active bool) {
	n := c.forest.Find(id)
	if n == nil {
		if id != window.InvalidID {
			c.logger.Warn("active target not found", "window", id)
		}
		return
	}
	if n.Client != nil {
		n.Client.UpdateActiveStatus(active)
	}
}

func (c *Container) updateBrightness(id uint32, byRemoved bool) {
	n := c.forest.Find(id)
	if n == nil {
		return
	}
	if !byRemoved && !window.IsAppWindow(n.Type) {
		return
	}
	c.logger.Debug("brightness", "display", c.displayBrightness, "window", n.Brightness)
	if n.Brightness == window.UndefinedBrightness {
		if c.displayBrightness != n.Brightness {
			c.logger.Info("restore default brightness")
			if c.power != nil {
				if err := c.power.RestoreBrightness(); err != nil {
					c.logger.Warn("restore brightness failed", "error", err)
				}
			}
			c.displayBrightness = window.UndefinedBrightness
		}
		c.brightnessWindow = window.InvalidID
		return
	}
	if c.displayBrightness != n.Brightness {
		level := uint32(n.Brightness * maxBrightness)
		c.logger.Info("override brightness", "level", level, "window", id)
		if c.power != nil {
			if err := c.power.OverrideBrightness(level); err != nil {
				c.logger.Warn("override brightness failed", "error", err)
			}
		}
		c.displayBrightness = n.Brightness
	}
	c.brightnessWindow = id
}

// HandleKeepScreenOn takes or releases n's screen-on lock.
func (c *Container) HandleKeepScreenOn(n *window.Node, requireLock bool) {
	if n == nil || c.power == nil {
		return
	}
	name := screenLockName(n)
	switch {
	case requireLock && !n.ScreenLocked():
		if err := c.power.AcquireScreenLock(name); err != nil {
			c.logger.Error("acquire screen lock failed", "window", n.ID, "error", err)
			return
		}
		n.SetScreenLocked(true)
	case !requireLock && n.ScreenLocked():
		if err := c.power.ReleaseScreenLock(name); err != nil {
			c.logger.Error("release screen lock failed", "window", n.ID, "error", err)
			return
		}
		n.SetScreenLocked(false)
	default:
		return
	}
	c.logger.Info("keep screen on", "window", n.ID, "lock", requireLock)
}

func screenLockName(n *window.Node) string {
	if n.Name == "" {
		return fmt.Sprintf("window-%d", n.ID)
	}
	return fmt.Sprintf("%s-%d", n.Name, n.ID)
}

// ProcessWindowStateChange freezes or unfreezes every visible window below
// the keyguard that may not show over it.
func (c *Container) ProcessWindowStateChange(state window.State, reason window.StateChangeReason) {
	if reason != window.StateChangeKeyguard {
		return
	}
	top := c.zorder.Priority(window.TypeKeyguard)
	for _, b := range []window.Bucket{window.BucketBelow, window.BucketApp, window.BucketAbove} {
		for _, n := range c.forest.Root(b) {
			c.updateWindowState(n, top, state)
		}
	}
}

func (c *Container) updateWindowState(n *window.Node, top int32, state window.State) {
	if n.Attached() && n.CurrentVisibility &&
		n.Priority < top && !n.HasFlag(window.FlagShowWhenLocked) {
		if n.Client != nil {
			n.Client.UpdateWindowState(state)
		}
		switch state {
		case window.StateFrozen:
			c.HandleKeepScreenOn(n, false)
		case window.StateUnfrozen:
			c.HandleKeepScreenOn(n, n.KeepScreenOn)
		}
	}
	for _, child := range c.forest.ChildNodes(window.Parent{ID: n.ID}) {
		c.updateWindowState(child, top, state)
	}
}

// NextFocusableWindow returns the first focusable window below id in
// stacking order.
func (c *Container) NextFocusableWindow(id uint32) *window.Node {
	var next *window.Node
	found := false
	c.forest.TraverseTopToBottom(func(n *window.Node) bool {
		if found && n.Focusable {
			next = n
			return true
		}
		if n.ID == id {
			found = true
		}
		return false
	})
	return next
}

// NextActiveWindow picks the window to activate after id goes away. For a
// system window that is the lowest app window or the desktop; for an app
// window it is the next one down the stack.
func (c *Container) NextActiveWindow(id uint32) *window.Node {
	cur := c.forest.Find(id)
	if cur == nil {
		c.logger.Warn("next active window: not found", "window", id)
		return nil
	}
	switch {
	case window.IsSystemWindow(cur.Type):
		for _, n := range c.forest.Root(window.BucketApp) {
			if n.Type != window.TypeDockSlice {
				return n
			}
		}
		for _, n := range c.forest.Root(window.BucketBelow) {
			if n.Type == window.TypeDesktop {
				return n
			}
		}
	case window.IsAppWindow(cur.Type):
		nodes := c.forest.Flatten()
		for i, n := range nodes {
			if n.ID != id {
				continue
			}
			for _, next := range nodes[i+1:] {
				if next.Type != window.TypeDockSlice {
					return next
				}
			}
			break
		}
	}
	c.logger.Debug("no next active window", "window", id)
	return nil
}
