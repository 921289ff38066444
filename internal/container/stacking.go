package container

import (
	"fmt"

	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
)

// RaiseZOrderForAppWindow brings an app window, or the split pair it belongs
// to, to the top of the app windows.
func (c *Container) RaiseZOrderForAppWindow(n, parent *window.Node) error {
	if n == nil {
		return fmt.Errorf("raise window: %w", wmerr.ErrNullPtr)
	}
	if c.isTopWindow(n.ID, window.BucketApp) || c.isTopWindow(n.ID, window.BucketAbove) {
		c.logger.Info("window already on top", "window", n.ID)
		return fmt.Errorf("raise window %d: already on top: %w", n.ID, wmerr.ErrInvalidType)
	}

	switch {
	case window.IsSubWindow(n.Type):
		if parent == nil {
			return fmt.Errorf("raise subwindow %d: no parent: %w", n.ID, wmerr.ErrNullPtr)
		}
		c.raiseWindowToTop(n)
		if parent.IsSplitMode() {
			c.raiseSplitRelatedWindowToTop(parent)
		} else {
			c.raiseWindowToTop(parent)
		}
	case window.IsMainWindow(n.Type):
		if n.IsSplitMode() {
			c.raiseSplitRelatedWindowToTop(n)
		} else {
			c.raiseWindowToTop(n)
		}
	}
	c.AssignZOrder()
	c.DumpTree()
	c.logger.Info("window raised", "window", n.ID)
	return nil
}

// isTopWindow reports whether id is the topmost window of bucket, counting
// positive-priority children above their host.
func (c *Container) isTopWindow(id uint32, bucket window.Bucket) bool {
	roots := c.forest.Root(bucket)
	if len(roots) == 0 {
		return false
	}
	top := roots[len(roots)-1]
	children := c.forest.ChildNodes(window.Parent{ID: top.ID})
	if k := len(children); k > 0 && children[k-1].Priority > 0 {
		return children[k-1].ID == id
	}
	return top.ID == id
}

// raiseWindowToTop moves n to the end of its priority band among its
// siblings.
func (c *Container) raiseWindowToTop(n *window.Node) {
	if !c.forest.Pull(n, n.Parent()) {
		return
	}
	c.updateWindowTree(n)
	c.logger.Debug("raise window to top", "window", n.ID)
}

// raiseSplitRelatedWindowToTop raises n's split pair in pair order.
func (c *Container) raiseSplitRelatedWindowToTop(n *window.Node) {
	if n == nil {
		return
	}
	app := window.Parent{Root: window.BucketApp}
	var pulled []*window.Node
	for _, w := range c.pair.OrderedPair(n) {
		if c.forest.Pull(w, app) {
			pulled = append(pulled, w)
		}
	}
	for _, w := range pulled {
		c.updateWindowTree(w)
	}
	c.AssignZOrder()
}

func (c *Container) hasKeyguard() bool {
	for _, n := range c.forest.Root(window.BucketAbove) {
		if n.Type == window.TypeKeyguard {
			return true
		}
	}
	return false
}

func (c *Container) lockedPriority() int32 {
	return c.zorder.Priority(window.TypeKeyguard) + 1
}

// raiseInputMethodWindowPriorityIfNeeded keeps the input method usable above
// a keyguard.
func (c *Container) raiseInputMethodWindowPriorityIfNeeded(n *window.Node) {
	if n.Type != window.TypeInputMethodFloat || !c.hasKeyguard() {
		return
	}
	c.logger.Info("raise input method above keyguard", "window", n.ID)
	n.Priority = c.lockedPriority()
}

// raiseShowWhenLockedWindowIfNeeded lifts show-when-locked windows above a
// keyguard: all of them when the keyguard itself arrives, or n alone when it
// arrives while a keyguard is up.
func (c *Container) raiseShowWhenLockedWindowIfNeeded(n *window.Node) {
	if n.Type == window.TypeKeyguard {
		c.reorderForLockState(true)
		return
	}
	if !n.HasFlag(window.FlagShowWhenLocked) || n.ParentID() != window.InvalidID || !c.hasKeyguard() {
		return
	}
	c.logger.Info("show-when-locked window raised above keyguard", "window", n.ID)
	n.Priority = c.lockedPriority()
	c.forest.SetParent(n, window.Parent{Root: window.BucketAbove})
}

// DropShowWhenLockedWindowIfNeeded returns show-when-locked windows to the
// app bucket once keyguard n goes away.
func (c *Container) DropShowWhenLockedWindowIfNeeded(n *window.Node) {
	if n == nil || n.Type != window.TypeKeyguard {
		return
	}
	c.reorderForLockState(false)
	c.AssignZOrder()
}

// reorderForLockState moves every show-when-locked root window between the
// app and above buckets, keeping their relative order. It is the only place
// that rewrites priorities for lock state.
func (c *Container) reorderForLockState(up bool) {
	src, dst := window.BucketApp, window.BucketAbove
	priority := c.lockedPriority()
	if !up {
		src, dst = window.BucketAbove, window.BucketApp
		priority = c.zorder.Priority(window.TypeAppMain)
	}
	c.logger.Info("keyguard changed, re-stacking show-when-locked windows", "up", up)

	var moving []*window.Node
	for _, n := range c.forest.Root(src) {
		if n.HasFlag(window.FlagShowWhenLocked) {
			moving = append(moving, n)
		}
	}
	for _, n := range moving {
		c.forest.Remove(n)
		n.Priority = priority
		c.forest.InsertByPriority(n, window.Parent{Root: dst})
		c.logger.Debug("show-when-locked window moved", "window", n.ID, "to", dst)
	}
}
