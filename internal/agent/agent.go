// Package agent delivers window-manager notifications to registered
// listeners: system-bar tints, accessibility window changes, visibility
// transitions and focus changes.
package agent

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

// Listener receives notifications. Calls arrive on the notifying display's
// worker and must not block.
type Listener interface {
	NotifySystemBarTints(displayID platform.DisplayID, tints []window.SystemBarRegionTint)
	NotifyAccessibilityWindowInfo(info window.AccessibilityInfo, kind window.UpdateType)
	NotifyWindowVisibility(infos []window.VisibilityInfo)
	NotifyFocusChanged(info window.FocusChangeInfo, focused bool)
}

// Controller fans notifications out to every registered listener.
type Controller struct {
	mu        sync.RWMutex
	listeners map[uuid.UUID]Listener
	order     []uuid.UUID
	logger    *slog.Logger
}

// NewController creates a controller with no listeners.
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		listeners: make(map[uuid.UUID]Listener),
		logger:    logger.With("component", "agent"),
	}
}

// Register adds l and returns the id used to unregister it.
func (c *Controller) Register(l Listener) uuid.UUID {
	id := uuid.New()
	c.mu.Lock()
	c.listeners[id] = l
	c.order = append(c.order, id)
	c.mu.Unlock()
	c.logger.Debug("listener registered", "id", id)
	return id
}

// Unregister removes the listener with id. Unknown ids are ignored.
func (c *Controller) Unregister(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.listeners[id]; !ok {
		return
	}
	delete(c.listeners, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
	c.logger.Debug("listener unregistered", "id", id)
}

func (c *Controller) snapshot() []Listener {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Listener, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.listeners[id])
	}
	return out
}

func (c *Controller) UpdateSystemBarTints(displayID platform.DisplayID, tints []window.SystemBarRegionTint) {
	if len(tints) == 0 {
		return
	}
	for _, l := range c.snapshot() {
		l.NotifySystemBarTints(displayID, tints)
	}
}

func (c *Controller) NotifyAccessibilityWindowInfo(info window.AccessibilityInfo, kind window.UpdateType) {
	for _, l := range c.snapshot() {
		l.NotifyAccessibilityWindowInfo(info, kind)
	}
}

func (c *Controller) UpdateWindowVisibilityInfo(infos []window.VisibilityInfo) {
	if len(infos) == 0 {
		return
	}
	for _, l := range c.snapshot() {
		l.NotifyWindowVisibility(infos)
	}
}

func (c *Controller) UpdateFocusChangeInfo(info window.FocusChangeInfo, focused bool) {
	for _, l := range c.snapshot() {
		l.NotifyFocusChanged(info, focused)
	}
}
