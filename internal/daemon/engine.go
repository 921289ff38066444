package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/1broseidon/winstack/internal/agent"
	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/layout"
	"github.com/1broseidon/winstack/internal/pair"
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
)

// EngineDeps are the collaborators shared by every display container.
type EngineDeps struct {
	Compositor     platform.Compositor
	DisplayService platform.DisplayService
	Power          platform.PowerService
	Agent          *agent.Controller
	Settings       container.Settings
	Logger         *slog.Logger
}

// DisplayStatus summarizes one display for status queries.
type DisplayStatus struct {
	ID         platform.DisplayID `json:"id"`
	Name       string             `json:"name"`
	Bounds     platform.Rect      `json:"bounds"`
	Layout     string             `json:"layout"`
	Windows    int                `json:"windows"`
	Focused    uint32             `json:"focused"`
	Active     uint32             `json:"active"`
	Brightness float64            `json:"brightness"`
	Geometry   layout.Geometry    `json:"geometry"`
	Split      pair.Snapshot      `json:"split"`
}

// Engine owns one container per display. Every method is executed on the
// engine's worker, so callers may use it from any goroutine once Run has
// started.
type Engine struct {
	worker *Worker
	deps   EngineDeps
	logger *slog.Logger

	// Touched only on the worker.
	containers map[platform.DisplayID]*container.Container
	owner      map[uint32]platform.DisplayID
	settings   container.Settings
}

// NewEngine creates an engine with no displays.
func NewEngine(deps EngineDeps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deps.Logger = logger
	if deps.Agent == nil {
		deps.Agent = agent.NewController(logger)
	}
	return &Engine{
		worker:     NewWorker(logger),
		deps:       deps,
		logger:     logger.With("component", "engine"),
		containers: make(map[platform.DisplayID]*container.Container),
		owner:      make(map[uint32]platform.DisplayID),
		settings:   deps.Settings,
	}
}

// Run drives the engine's worker until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	return e.worker.Run(ctx)
}

// Agent returns the listener bus every container reports to.
func (e *Engine) Agent() *agent.Controller {
	return e.deps.Agent
}

// Post runs fn on the worker without waiting. Callbacks that arrive on
// foreign goroutines use it to get back onto the worker.
func (e *Engine) Post(fn func()) bool {
	return e.worker.Post(fn)
}

// ProcessDisplayCreate creates the container for a new display.
func (e *Engine) ProcessDisplayCreate(ctx context.Context, d platform.Display) error {
	return e.worker.Do(ctx, func() error {
		if _, ok := e.containers[d.ID]; ok {
			return fmt.Errorf("create display %d: already exists: %w", d.ID, wmerr.ErrInvalidParam)
		}
		if d.Bounds.IsEmpty() {
			return fmt.Errorf("create display %d: empty bounds: %w", d.ID, wmerr.ErrInvalidDisplay)
		}
		e.containers[d.ID] = container.New(container.Deps{
			Display:        d,
			Compositor:     e.deps.Compositor,
			DisplayService: e.deps.DisplayService,
			Power:          e.deps.Power,
			Agent:          e.deps.Agent,
			Settings:       e.settings,
			Logger:         e.deps.Logger,
		})
		e.logger.Info("display created", "display", d.ID, "name", d.Name, "bounds", d.Bounds)
		return nil
	})
}

// ProcessDisplayChange pushes new display geometry to its container.
func (e *Engine) ProcessDisplayChange(ctx context.Context, d platform.Display) error {
	return e.worker.Do(ctx, func() error {
		c, err := e.container(d.ID)
		if err != nil {
			return err
		}
		if c.Display() == d {
			return nil
		}
		return c.ProcessDisplayChange(d)
	})
}

// ProcessDisplayDestroy tears down a display's container and returns the
// windows that went with it.
func (e *Engine) ProcessDisplayDestroy(ctx context.Context, id platform.DisplayID) ([]uint32, error) {
	var removed []uint32
	err := e.worker.Do(ctx, func() error {
		c, err := e.container(id)
		if err != nil {
			return err
		}
		removed = c.Destroy()
		for _, wid := range removed {
			delete(e.owner, wid)
		}
		delete(e.containers, id)
		e.logger.Info("display destroyed", "display", id, "windows", len(removed))
		return nil
	})
	return removed, err
}

// AddWindow attaches n to the container of n.DisplayID. A non-zero parentID
// makes n a subwindow of that window.
func (e *Engine) AddWindow(ctx context.Context, n *window.Node, parentID uint32) error {
	if n == nil {
		return fmt.Errorf("add window: %w", wmerr.ErrNullPtr)
	}
	return e.worker.Do(ctx, func() error {
		if _, ok := e.owner[n.ID]; ok {
			return fmt.Errorf("add window %d: already managed: %w", n.ID, wmerr.ErrInvalidParam)
		}
		c, err := e.container(n.DisplayID)
		if err != nil {
			return err
		}
		var parent *window.Node
		if parentID != window.InvalidID {
			if parent = c.FindWindowNodeByID(parentID); parent == nil {
				return fmt.Errorf("add window %d: parent %d not found: %w", n.ID, parentID, wmerr.ErrNullPtr)
			}
		}
		if err := c.AddWindowNode(n, parent); err != nil {
			return err
		}
		e.owner[n.ID] = n.DisplayID
		if limit := e.settings.MaxAppWindows; limit > 0 && n.Type == window.TypeAppMain &&
			c.WindowCountByType(window.TypeAppMain) > limit {
			c.MinimizeOldestAppWindow()
		}
		return nil
	})
}

// RemoveWindow destroys a window and its subwindows.
func (e *Engine) RemoveWindow(ctx context.Context, id uint32) error {
	return e.worker.Do(ctx, func() error {
		c, n, err := e.lookup(id)
		if err != nil {
			return err
		}
		ids, err := c.DestroyWindowNode(n)
		if err != nil {
			return err
		}
		for _, wid := range ids {
			delete(e.owner, wid)
		}
		return nil
	})
}

// UpdateWindow applies mutate to a window and re-runs layout for reason.
func (e *Engine) UpdateWindow(ctx context.Context, id uint32, reason window.UpdateReason, mutate func(n *window.Node)) error {
	return e.worker.Do(ctx, func() error {
		c, n, err := e.lookup(id)
		if err != nil {
			return err
		}
		if mutate != nil {
			mutate(n)
		}
		return c.UpdateWindowNode(n, reason)
	})
}

// SetWindowMode changes a window between floating, fullscreen and split.
func (e *Engine) SetWindowMode(ctx context.Context, id uint32, mode window.Mode) error {
	return e.worker.Do(ctx, func() error {
		c, n, err := e.lookup(id)
		if err != nil {
			return err
		}
		return c.SetWindowMode(n, mode)
	})
}

// Raise brings an app window, or its split pair, to the top.
func (e *Engine) Raise(ctx context.Context, id uint32) error {
	return e.worker.Do(ctx, func() error {
		c, n, err := e.lookup(id)
		if err != nil {
			return err
		}
		var parent *window.Node
		if window.IsSubWindow(n.Type) {
			parent = c.FindWindowNodeByID(n.ParentID())
		}
		return c.RaiseZOrderForAppWindow(n, parent)
	})
}

// Focus makes id the focused and active window of its display.
func (e *Engine) Focus(ctx context.Context, id uint32) error {
	return e.worker.Do(ctx, func() error {
		c, n, err := e.lookup(id)
		if err != nil {
			return err
		}
		if !n.Focusable {
			return fmt.Errorf("focus window %d: not focusable: %w", id, wmerr.ErrInvalidParam)
		}
		if err := c.SetFocusWindow(id); err != nil && !errors.Is(err, wmerr.ErrDoNothing) {
			return err
		}
		if err := c.SetActiveWindow(id, false); err != nil && !errors.Is(err, wmerr.ErrDoNothing) {
			return err
		}
		return nil
	})
}

// FocusNext moves focus to the next focusable window below the current one
// on displayID and returns its id.
func (e *Engine) FocusNext(ctx context.Context, displayID platform.DisplayID) (uint32, error) {
	var next uint32
	err := e.worker.Do(ctx, func() error {
		c, err := e.container(displayID)
		if err != nil {
			return err
		}
		cur := c.FocusWindow()
		n := c.NextFocusableWindow(cur)
		if n == nil {
			// Wrap around to the top.
			for _, cand := range c.TraverseContainer() {
				if cand.Focusable && cand.ID != cur {
					n = cand
					break
				}
			}
		}
		if n == nil {
			return fmt.Errorf("focus next on display %d: %w", displayID, wmerr.ErrDoNothing)
		}
		if err := c.SetFocusWindow(n.ID); err != nil && !errors.Is(err, wmerr.ErrDoNothing) {
			return err
		}
		if err := c.SetActiveWindow(n.ID, false); err != nil && !errors.Is(err, wmerr.ErrDoNothing) {
			return err
		}
		next = n.ID
		return nil
	})
	return next, err
}

// SwitchLayout switches one display, or every display when displayID is 0,
// to mode.
func (e *Engine) SwitchLayout(ctx context.Context, displayID platform.DisplayID, mode layout.Mode, reorder bool) error {
	return e.worker.Do(ctx, func() error {
		targets, err := e.targets(displayID)
		if err != nil {
			return err
		}
		for _, c := range targets {
			if err := c.SwitchLayoutPolicy(mode, reorder); err != nil {
				return fmt.Errorf("display %d: %w", c.DisplayID(), err)
			}
		}
		return nil
	})
}

// CycleLayout advances displayID to the next layout mode and returns it.
func (e *Engine) CycleLayout(ctx context.Context, displayID platform.DisplayID) (layout.Mode, error) {
	var mode layout.Mode
	err := e.worker.Do(ctx, func() error {
		c, err := e.container(displayID)
		if err != nil {
			return err
		}
		mode = layout.ModeCascade
		if c.LayoutMode() == layout.ModeCascade {
			mode = layout.ModeTile
		}
		return c.SwitchLayoutPolicy(mode, false)
	})
	return mode, err
}

// SetSplitRatio moves the split divider of displayID.
func (e *Engine) SetSplitRatio(ctx context.Context, displayID platform.DisplayID, ratio float64) error {
	return e.worker.Do(ctx, func() error {
		targets, err := e.targets(displayID)
		if err != nil {
			return err
		}
		for _, c := range targets {
			if err := c.SetSplitRatio(ratio); err != nil {
				return err
			}
		}
		return nil
	})
}

// MinimizeAll minimizes every app window of one display, or of every display
// when displayID is 0.
func (e *Engine) MinimizeAll(ctx context.Context, displayID platform.DisplayID) error {
	return e.worker.Do(ctx, func() error {
		targets, err := e.targets(displayID)
		if err != nil {
			return err
		}
		for _, c := range targets {
			if err := c.MinimizeAllAppWindows(); err != nil {
				return err
			}
		}
		return nil
	})
}

// ProcessWindowStateChange forwards a keyguard freeze or unfreeze to every
// display.
func (e *Engine) ProcessWindowStateChange(ctx context.Context, state window.State, reason window.StateChangeReason) error {
	return e.worker.Do(ctx, func() error {
		for _, c := range e.sorted() {
			c.ProcessWindowStateChange(state, reason)
		}
		return nil
	})
}

// ApplySettings replaces the tunables of every container. Displays created
// later use them too.
func (e *Engine) ApplySettings(ctx context.Context, s container.Settings) error {
	return e.worker.Do(ctx, func() error {
		e.settings = s
		for _, c := range e.sorted() {
			c.ApplySettings(s)
		}
		e.logger.Info("settings applied", "displays", len(e.containers), "mode", s.DefaultMode)
		return nil
	})
}

// Status summarizes every display, ordered by id.
func (e *Engine) Status(ctx context.Context) ([]DisplayStatus, error) {
	var out []DisplayStatus
	err := e.worker.Do(ctx, func() error {
		for _, c := range e.sorted() {
			d := c.Display()
			out = append(out, DisplayStatus{
				ID:         d.ID,
				Name:       d.Name,
				Bounds:     d.Bounds,
				Layout:     c.LayoutMode().String(),
				Windows:    c.Len(),
				Focused:    c.FocusWindow(),
				Active:     c.ActiveWindow(),
				Brightness: c.DisplayBrightness(),
				Geometry:   c.Geometry(),
				Split:      c.PairSnapshot(),
			})
		}
		return nil
	})
	return out, err
}

// Tree returns the window tree of one display, or of every display when
// displayID is 0.
func (e *Engine) Tree(ctx context.Context, displayID platform.DisplayID) ([]container.TreeEntry, error) {
	var out []container.TreeEntry
	err := e.worker.Do(ctx, func() error {
		targets, err := e.targets(displayID)
		if err != nil {
			return err
		}
		for _, c := range targets {
			out = append(out, c.Tree()...)
		}
		return nil
	})
	return out, err
}

// Windows lists the windows of one display, or of every display when
// displayID is 0, top first.
func (e *Engine) Windows(ctx context.Context, displayID platform.DisplayID) ([]window.Info, error) {
	var out []window.Info
	err := e.worker.Do(ctx, func() error {
		targets, err := e.targets(displayID)
		if err != nil {
			return err
		}
		for _, c := range targets {
			out = append(out, c.WindowList()...)
		}
		return nil
	})
	return out, err
}

// Window returns the tree entry of one window.
func (e *Engine) Window(ctx context.Context, id uint32) (container.TreeEntry, error) {
	var out container.TreeEntry
	err := e.worker.Do(ctx, func() error {
		c, _, err := e.lookup(id)
		if err != nil {
			return err
		}
		for _, entry := range c.Tree() {
			if entry.ID == id {
				out = entry
				return nil
			}
		}
		return fmt.Errorf("window %d: %w", id, wmerr.ErrNullPtr)
	})
	return out, err
}

// Managed returns every managed window id with its display.
func (e *Engine) Managed(ctx context.Context) (map[uint32]platform.DisplayID, error) {
	out := make(map[uint32]platform.DisplayID)
	err := e.worker.Do(ctx, func() error {
		for id, d := range e.owner {
			out[id] = d
		}
		return nil
	})
	return out, err
}

// Displays returns the managed displays ordered by id.
func (e *Engine) Displays(ctx context.Context) ([]platform.Display, error) {
	var out []platform.Display
	err := e.worker.Do(ctx, func() error {
		for _, c := range e.sorted() {
			out = append(out, c.Display())
		}
		return nil
	})
	return out, err
}

func (e *Engine) container(id platform.DisplayID) (*container.Container, error) {
	c, ok := e.containers[id]
	if !ok {
		return nil, fmt.Errorf("display %d: %w", id, wmerr.ErrInvalidDisplay)
	}
	return c, nil
}

func (e *Engine) lookup(id uint32) (*container.Container, *window.Node, error) {
	displayID, ok := e.owner[id]
	if !ok {
		return nil, nil, fmt.Errorf("window %d: not managed: %w", id, wmerr.ErrNullPtr)
	}
	c, err := e.container(displayID)
	if err != nil {
		return nil, nil, err
	}
	n := c.FindWindowNodeByID(id)
	if n == nil {
		return nil, nil, fmt.Errorf("window %d: %w", id, wmerr.ErrDestroyedObject)
	}
	return c, n, nil
}

func (e *Engine) targets(displayID platform.DisplayID) ([]*container.Container, error) {
	if displayID == 0 {
		return e.sorted(), nil
	}
	c, err := e.container(displayID)
	if err != nil {
		return nil, err
	}
	return []*container.Container{c}, nil
}

func (e *Engine) sorted() []*container.Container {
	ids := make([]platform.DisplayID, 0, len(e.containers))
	for id := range e.containers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*container.Container, 0, len(ids))
	for _, id := range ids {
		out = append(out, e.containers[id])
	}
	return out
}
