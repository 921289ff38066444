package container

import (
	"errors"
	"fmt"
	"slices"

	"github.com/1broseidon/winstack/internal/layout"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
)

// MinimizeWindowFromAbility asks n's owner to minimize it. Requests not
// made by the user are dropped unless minimizing by others is enabled.
func (c *Container) MinimizeWindowFromAbility(n *window.Node, fromUser bool) {
	if n == nil || n.Client == nil {
		return
	}
	if !fromUser && !c.minimizedByOther {
		c.logger.Debug("minimize by other disabled", "window", n.ID)
		return
	}
	if err := n.Client.Minimize(fromUser); err != nil {
		c.logger.Warn("minimize window failed", "window", n.ID, "error", err)
		return
	}
	c.logger.Info("window minimized", "window", n.ID, "from_user", fromUser)
}

// MinimizeAllAppWindows minimizes every main app window and returns the
// display to cascade layout.
func (c *Container) MinimizeAllAppWindows() error {
	err := c.MinimizeAppNodeExceptOptions(true, nil, nil)
	if serr := c.SwitchLayoutPolicy(layout.ModeCascade, false); serr != nil {
		c.logger.Warn("switch to cascade failed", "error", serr)
	}
	if err != nil {
		return fmt.Errorf("minimize all: %w", err)
	}
	return nil
}

// MinimizeOldestAppWindow minimizes the bottom main app window, looking in
// the app bucket before the above bucket.
func (c *Container) MinimizeOldestAppWindow() {
	for _, b := range []window.Bucket{window.BucketApp, window.BucketAbove} {
		for _, n := range c.forest.Root(b) {
			if n.Type == window.TypeAppMain {
				c.logger.Info("minimizing oldest app window", "window", n.ID)
				c.MinimizeWindowFromAbility(n, true)
				return
			}
		}
	}
	c.logger.Debug("no app window to minimize")
}

// MinimizeAppNodeExceptOptions minimizes main app windows except those
// listed by id or in one of the given modes.
func (c *Container) MinimizeAppNodeExceptOptions(fromUser bool, exceptIDs []uint32, exceptModes []window.Mode) error {
	var errs []error
	for _, n := range c.forest.Root(window.BucketApp) {
		if n.Type != window.TypeAppMain ||
			slices.Contains(exceptIDs, n.ID) ||
			slices.Contains(exceptModes, n.Mode) ||
			n.Client == nil {
			continue
		}
		if err := n.Client.Minimize(fromUser); err != nil {
			errs = append(errs, fmt.Errorf("window %d: %w", n.ID, err))
			continue
		}
		c.logger.Info("window minimized", "window", n.ID, "from_user", fromUser)
	}
	return errors.Join(errs...)
}

// MinimizeStructuredAppWindowsExceptSelf clears the screen for n, leaving
// floating and picture-in-picture windows alone.
func (c *Container) MinimizeStructuredAppWindowsExceptSelf(n *window.Node) error {
	if n == nil {
		return wmerr.ErrNullPtr
	}
	return c.MinimizeAppNodeExceptOptions(false, []uint32{n.ID},
		[]window.Mode{window.ModeFloating, window.ModePip})
}

// SetMinimizedByOther controls whether a window going fullscreen minimizes
// the other app windows.
func (c *Container) SetMinimizedByOther(v bool) { c.minimizedByOther = v }

func (c *Container) MinimizedByOther() bool { return c.minimizedByOther }
