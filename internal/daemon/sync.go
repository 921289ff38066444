package daemon

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
)

const (
	netWMTypePrefix = "_NET_WM_WINDOW_TYPE_"
	netWMStateFull  = "_NET_WM_STATE_FULLSCREEN"
	netWMStateHide  = "_NET_WM_STATE_HIDDEN"
)

// TypeFromKinds maps EWMH window types to a window type. transient reports
// whether the window names a WM_TRANSIENT_FOR parent; nearTop whether it
// sits in the upper half of its display.
func TypeFromKinds(kinds []string, transient, nearTop bool) window.Type {
	for _, k := range kinds {
		switch k {
		case netWMTypePrefix + "DESKTOP":
			return window.TypeDesktop
		case netWMTypePrefix + "DOCK":
			if nearTop {
				return window.TypeStatusBar
			}
			return window.TypeNavigationBar
		case netWMTypePrefix + "SPLASH":
			return window.TypeAppLaunching
		case netWMTypePrefix + "NOTIFICATION":
			return window.TypeToast
		case netWMTypePrefix + "DIALOG":
			if transient {
				return window.TypeAppSub
			}
			return window.TypeFloat
		case netWMTypePrefix + "TOOLBAR", netWMTypePrefix + "MENU", netWMTypePrefix + "UTILITY":
			if transient {
				return window.TypeAppComponent
			}
			return window.TypeFloat
		case netWMTypePrefix + "DROPDOWN_MENU", netWMTypePrefix + "POPUP_MENU",
			netWMTypePrefix + "COMBO", netWMTypePrefix + "TOOLTIP":
			if transient {
				return window.TypeAppComponent
			}
			return window.TypeFloat
		case netWMTypePrefix + "NORMAL":
			if transient {
				return window.TypeAppSub
			}
			return window.TypeAppMain
		}
	}
	if transient {
		return window.TypeAppSub
	}
	return window.TypeAppMain
}

// ModeFromStates maps EWMH states to a window mode.
func ModeFromStates(states []string) window.Mode {
	if slices.Contains(states, netWMStateFull) {
		return window.ModeFullscreen
	}
	return window.ModeFloating
}

// hidden reports whether the window is iconified.
func hidden(w platform.Window) bool {
	return slices.Contains(w.States, netWMStateHide)
}

// displayFor picks the display holding the window's center, falling back to
// the first display.
func displayFor(w platform.Window, displays []platform.Display) (platform.Display, bool) {
	if len(displays) == 0 {
		return platform.Display{}, false
	}
	cx := w.Bounds.X + w.Bounds.Width/2
	cy := w.Bounds.Y + w.Bounds.Height/2
	for _, d := range displays {
		if d.Bounds.Contains(cx, cy) {
			return d, true
		}
	}
	return displays[0], true
}

// NodeFromWindow builds the node for a platform window on display d.
func NodeFromWindow(w platform.Window, d platform.Display, backend platform.Backend, logger *slog.Logger) *window.Node {
	nearTop := w.Bounds.Y+w.Bounds.Height/2 < d.Bounds.Y+d.Bounds.Height/2
	t := TypeFromKinds(w.Kinds, w.Transient != 0, nearTop)
	n := window.NewNode(uint32(w.ID), d.ID, t, ModeFromStates(w.States))
	n.Name = w.AppID
	if n.Name == "" {
		n.Name = w.Title
	}
	n.PID = w.PID
	n.RequestRect = w.Bounds
	n.Surface = platform.SurfaceID(w.ID)
	n.Client = &platformClient{backend: backend, id: w.ID, logger: logger}
	return n
}

// platformClient forwards the engine's requests for one window back to the
// window system.
type platformClient struct {
	backend platform.Backend
	id      platform.WindowID
	logger  *slog.Logger
}

var _ window.Client = (*platformClient)(nil)

// UpdateWindowRect is a no-op: the compositor already moved the surface.
func (c *platformClient) UpdateWindowRect(rect platform.Rect, decorated bool, reason window.SizeChangeReason) {
	c.logger.Debug("window rect", "window", c.id, "rect", rect, "reason", reason)
}

func (c *platformClient) UpdateWindowMode(mode window.Mode) {
	c.logger.Debug("window mode", "window", c.id, "mode", mode)
}

func (c *platformClient) UpdateFocusStatus(focused bool) {
	if !focused {
		return
	}
	if err := c.backend.Activate(c.id); err != nil {
		c.logger.Warn("activate window failed", "window", c.id, "error", err)
	}
}

func (c *platformClient) UpdateActiveStatus(active bool) {}

func (c *platformClient) UpdateWindowState(state window.State) {
	c.logger.Debug("window state", "window", c.id, "state", state)
}

func (c *platformClient) UpdateAvoidArea(areas []platform.Rect) {}

func (c *platformClient) Minimize(fromUser bool) error {
	return c.backend.Minimize(c.id)
}

// StateSynchronizer mirrors the platform's windows and displays into the
// engine. It is driven by a single goroutine, normally the reconciler.
type StateSynchronizer struct {
	engine  *Engine
	backend platform.Backend
	logger  *slog.Logger

	modes    map[uint32]window.Mode
	active   platform.WindowID
	decorate atomic.Bool
}

// NewStateSynchronizer creates a synchronizer for engine over backend.
func NewStateSynchronizer(engine *Engine, backend platform.Backend, logger *slog.Logger) *StateSynchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateSynchronizer{
		engine:  engine,
		backend: backend,
		logger:  logger.With("component", "sync"),
		modes:   make(map[uint32]window.Mode),
	}
}

// SetDecorate controls whether newly managed main windows get frame
// decoration. Safe to call from any goroutine.
func (s *StateSynchronizer) SetDecorate(enabled bool) {
	s.decorate.Store(enabled)
}

// SyncDisplays creates, updates and destroys engine displays to match the
// backend.
func (s *StateSynchronizer) SyncDisplays(ctx context.Context) error {
	actual, err := s.backend.Displays()
	if err != nil {
		return err
	}
	known, err := s.engine.Displays(ctx)
	if err != nil {
		return err
	}

	present := make(map[platform.DisplayID]bool, len(actual))
	for _, d := range actual {
		present[d.ID] = true
		idx := slices.IndexFunc(known, func(k platform.Display) bool { return k.ID == d.ID })
		if idx < 0 {
			if err := s.engine.ProcessDisplayCreate(ctx, d); err != nil {
				s.logger.Warn("display create failed", "display", d.ID, "error", err)
			}
			continue
		}
		if known[idx] != d {
			if err := s.engine.ProcessDisplayChange(ctx, d); err != nil {
				s.logger.Warn("display change failed", "display", d.ID, "error", err)
			}
		}
	}
	for _, k := range known {
		if present[k.ID] {
			continue
		}
		removed, err := s.engine.ProcessDisplayDestroy(ctx, k.ID)
		if err != nil {
			s.logger.Warn("display destroy failed", "display", k.ID, "error", err)
			continue
		}
		for _, id := range removed {
			delete(s.modes, id)
		}
	}
	return nil
}

// SyncWindows adds new windows, removes vanished or iconified ones and
// follows fullscreen changes. windows are in stacking order, bottom first.
func (s *StateSynchronizer) SyncWindows(ctx context.Context, windows []platform.Window) error {
	managed, err := s.engine.Managed(ctx)
	if err != nil {
		return err
	}
	displays, err := s.engine.Displays(ctx)
	if err != nil {
		return err
	}

	seen := make(map[uint32]bool, len(windows))
	var pending []platform.Window
	for _, w := range windows {
		if hidden(w) {
			continue
		}
		id := uint32(w.ID)
		seen[id] = true
		if _, ok := managed[id]; ok {
			s.syncMode(ctx, id, ModeFromStates(w.States))
			continue
		}
		pending = append(pending, w)
	}

	// Transient windows can precede their parent in the list.
	for pass := 0; pass < 2 && len(pending) > 0; pass++ {
		var retry []platform.Window
		for _, w := range pending {
			if w.Transient != 0 && !seen[uint32(w.Transient)] {
				s.logger.Debug("transient parent not present", "window", w.ID, "parent", w.Transient)
				continue
			}
			if w.Transient != 0 {
				if _, ok := managed[uint32(w.Transient)]; !ok {
					retry = append(retry, w)
					continue
				}
			}
			if s.addWindow(ctx, w, displays) {
				managed[uint32(w.ID)] = 0
			}
		}
		pending = retry
	}

	for id := range managed {
		if seen[id] {
			continue
		}
		s.HandleWindowClosed(ctx, id)
	}
	return nil
}

// SyncFocus follows the platform's active window.
func (s *StateSynchronizer) SyncFocus(ctx context.Context) error {
	active, err := s.backend.ActiveWindow()
	if err != nil {
		return err
	}
	if active == 0 || active == s.active {
		return nil
	}
	err = s.engine.Focus(ctx, uint32(active))
	switch {
	case err == nil:
		s.active = active
	case errors.Is(err, wmerr.ErrNullPtr), errors.Is(err, wmerr.ErrInvalidParam):
		// Unmanaged or unfocusable; try again once it changes.
		s.active = active
	default:
		return err
	}
	return nil
}

// HandleWindowClosed drops a window that no longer exists on the platform.
func (s *StateSynchronizer) HandleWindowClosed(ctx context.Context, id uint32) {
	delete(s.modes, id)
	if platform.WindowID(id) == s.active {
		s.active = 0
	}
	if err := s.engine.RemoveWindow(ctx, id); err != nil {
		s.logger.Warn("remove window failed", "window", id, "error", err)
		return
	}
	s.logger.Info("window closed", "window", id)
}

func (s *StateSynchronizer) addWindow(ctx context.Context, w platform.Window, displays []platform.Display) bool {
	d, ok := displayFor(w, displays)
	if !ok {
		return false
	}
	n := NodeFromWindow(w, d, s.backend, s.logger)
	n.DecorEnable = s.decorate.Load() && n.Type == window.TypeAppMain
	var parent uint32
	if window.IsSubWindow(n.Type) {
		parent = uint32(w.Transient)
	}
	if err := s.engine.AddWindow(ctx, n, parent); err != nil {
		s.logger.Warn("add window failed", "window", w.ID, "type", n.Type, "error", err)
		return false
	}
	s.modes[n.ID] = n.Mode
	s.logger.Info("window managed", "window", w.ID, "name", n.Name, "type", n.Type, "display", d.ID)
	return true
}

func (s *StateSynchronizer) syncMode(ctx context.Context, id uint32, mode window.Mode) {
	last, ok := s.modes[id]
	if ok && last == mode {
		return
	}
	s.modes[id] = mode
	if !ok {
		return
	}
	if err := s.engine.SetWindowMode(ctx, id, mode); err != nil {
		s.logger.Warn("set window mode failed", "window", id, "mode", mode, "error", err)
	}
}
