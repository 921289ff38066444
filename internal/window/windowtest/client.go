// Package windowtest provides a recording window.Client for tests.
package windowtest

import (
	"sync"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

// RectUpdate is one UpdateWindowRect call.
type RectUpdate struct {
	Rect      platform.Rect
	Decorated bool
	Reason    window.SizeChangeReason
}

// Client records every call made to it.
type Client struct {
	mu sync.Mutex

	Rects       []RectUpdate
	Modes       []window.Mode
	Focus       []bool
	Active      []bool
	States      []window.State
	AvoidAreas  [][]platform.Rect
	Minimized   []bool
	MinimizeErr error
}

var _ window.Client = (*Client)(nil)

func (c *Client) UpdateWindowRect(rect platform.Rect, decorated bool, reason window.SizeChangeReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Rects = append(c.Rects, RectUpdate{Rect: rect, Decorated: decorated, Reason: reason})
}

func (c *Client) UpdateWindowMode(mode window.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Modes = append(c.Modes, mode)
}

func (c *Client) UpdateFocusStatus(focused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Focus = append(c.Focus, focused)
}

func (c *Client) UpdateActiveStatus(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Active = append(c.Active, active)
}

func (c *Client) UpdateWindowState(state window.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.States = append(c.States, state)
}

func (c *Client) UpdateAvoidArea(areas []platform.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AvoidAreas = append(c.AvoidAreas, areas)
}

func (c *Client) Minimize(fromUser bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Minimized = append(c.Minimized, fromUser)
	return c.MinimizeErr
}

// RectCount returns the number of rect updates received so far.
func (c *Client) RectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Rects)
}

// LastRect returns the most recent rect update.
func (c *Client) LastRect() (RectUpdate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Rects) == 0 {
		return RectUpdate{}, false
	}
	return c.Rects[len(c.Rects)-1], true
}
