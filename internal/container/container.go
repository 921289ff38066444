// Package container holds the window forest of one display and keeps its
// stacking order, layout, occlusion and system-bar state consistent across
// every structural change.
//
// A Container is not safe for concurrent use. The daemon engine funnels every
// call for every display through its single worker.
package container

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/winstack/internal/agent"
	"github.com/1broseidon/winstack/internal/avoid"
	"github.com/1broseidon/winstack/internal/layout"
	"github.com/1broseidon/winstack/internal/pair"
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
	"github.com/1broseidon/winstack/internal/zorder"
)

// HotZonesConfig sizes the screen-edge regions that switch window mode while
// dragging.
type HotZonesConfig struct {
	FullscreenRange int
	PrimaryRange    int
	SecondaryRange  int
}

// HotZones are the resolved mode-change regions.
type HotZones struct {
	Fullscreen platform.Rect `json:"fullscreen"`
	Primary    platform.Rect `json:"primary"`
	Secondary  platform.Rect `json:"secondary"`
}

// Settings are the container tunables.
type Settings struct {
	Layout           layout.Settings
	DefaultMode      layout.Mode
	AnimationEnabled bool
	MinimizeByOther  bool
	HotZones         HotZonesConfig
	// MaxAppWindows caps main app windows per display; the oldest is
	// minimized past it. 0 disables the cap.
	MaxAppWindows int
}

// DefaultSettings returns cascade layout with animations on.
func DefaultSettings() Settings {
	return Settings{
		Layout:           layout.DefaultSettings(),
		DefaultMode:      layout.ModeCascade,
		AnimationEnabled: true,
		MinimizeByOther:  true,
		HotZones:         HotZonesConfig{FullscreenRange: 50, PrimaryRange: 50, SecondaryRange: 50},
		MaxAppWindows:    100,
	}
}

// Deps are the collaborators of a container. Agent, DisplayService and
// Power may be nil.
type Deps struct {
	Display        platform.Display
	Compositor     platform.Compositor
	DisplayService platform.DisplayService
	Power          platform.PowerService
	Agent          *agent.Controller
	Settings       Settings
	Logger         *slog.Logger
}

// barTypes fixes the iteration order of system-bar state.
var barTypes = []window.Type{window.TypeStatusBar, window.TypeNavigationBar}

// Container is the window forest of one display.
type Container struct {
	displayID platform.DisplayID
	display   platform.Display

	forest   *window.Forest
	zorder   zorder.Policy
	pair     *pair.Pair
	avoid    *avoid.Controller
	agent    *agent.Controller
	compose  platform.Compositor
	displays platform.DisplayService
	power    platform.PowerService
	settings Settings
	logger   *slog.Logger

	// baseLogger is handed to collaborators that tag their own component.
	baseLogger *slog.Logger

	mode          layout.Mode
	policies      map[layout.Mode]layout.Policy
	policyDisplay map[layout.Mode]platform.Display

	sysBarNodes map[window.Type]*window.Node
	sysBarTints map[window.Type]*window.SystemBarRegionTint

	focusedWindow     uint32
	activeWindow      uint32
	brightnessWindow  uint32
	displayBrightness float64
	minimizedByOther  bool
	zOrderCount       int
}

// New creates the container for one display and launches its default
// layout policy.
func New(d Deps) *Container {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode := d.Settings.DefaultMode
	if !mode.Valid() {
		mode = layout.ModeCascade
	}
	c := &Container{
		displayID:         d.Display.ID,
		display:           d.Display,
		forest:            window.NewForest(),
		agent:             d.Agent,
		compose:           d.Compositor,
		displays:          d.DisplayService,
		power:             d.Power,
		settings:          d.Settings,
		logger:            logger.With("component", "container", "display", d.Display.ID),
		baseLogger:        logger,
		mode:              mode,
		policyDisplay:     make(map[layout.Mode]platform.Display),
		sysBarNodes:       make(map[window.Type]*window.Node),
		sysBarTints:       make(map[window.Type]*window.SystemBarRegionTint),
		displayBrightness: window.UndefinedBrightness,
		minimizedByOther:  d.Settings.MinimizeByOther,
	}
	if c.agent == nil {
		c.agent = agent.NewController(logger)
	}
	c.pair = pair.New(c.logger)
	c.avoid = avoid.NewController(c.displayID, d.Display.Bounds, c.OnAvoidAreaChange, logger)

	c.policies = c.newPolicies()
	for m := range c.policies {
		c.policyDisplay[m] = d.Display
	}

	for _, t := range barTypes {
		c.sysBarTints[t] = &window.SystemBarRegionTint{Type: t, Prop: window.DefaultSystemBarProperty()}
	}

	c.policy().Launch()
	return c
}

func (c *Container) policy() layout.Policy { return c.policies[c.mode] }

// AddWindowNode attaches n under its root bucket, or under parent when n is
// a subwindow, then stacks, lays out and reports it.
func (c *Container) AddWindowNode(n, parent *window.Node) error {
	if n == nil {
		return fmt.Errorf("add window: %w", wmerr.ErrNullPtr)
	}
	if n.Surface == 0 {
		c.logger.Error("add window without surface", "window", n.ID)
		return fmt.Errorf("add window %d: no surface: %w", n.ID, wmerr.ErrNullPtr)
	}
	if err := c.addWindowNodeOnWindowTree(n, parent); err != nil {
		c.logger.Error("add window rejected", "window", n.ID, "error", err)
		return err
	}

	c.pair.UpdateIfSplitRelated(n)
	c.updateWindowTree(n)
	if n.IsSplitMode() || n.Type == window.TypeDockSlice {
		c.raiseSplitRelatedWindowToTop(n)
	}
	c.updateSurfaceTree(n, true, n.PlayedShowAnimation)
	c.AssignZOrder()
	c.policy().AddWindowNode(n)
	c.notifySystemBarChange(n, avoid.NodeAdd)
	c.UpdateWindowVisibilityInfos(nil)
	c.DumpTree()
	c.notifyAccessibility(n, window.UpdateAdded)
	c.logger.Info("window added", "window", n.ID, "type", n.Type, "mode", n.Mode)
	return nil
}

// addWindowNodeOnWindowTree validates placement and prepares n's parent
// handle and visibility. Nothing is changed when it fails.
func (c *Container) addWindowNodeOnWindowTree(n, parent *window.Node) error {
	root := window.BucketFor(n.Type)
	if root == window.BucketNone {
		return fmt.Errorf("add window %d: no root for type %s: %w", n.ID, n.Type, wmerr.ErrNullPtr)
	}
	if n.Attached() {
		return fmt.Errorf("add window %d: already attached: %w", n.ID, wmerr.ErrInvalidParam)
	}

	if parent != nil {
		pp := parent.Parent()
		underRoot := pp.ID == window.InvalidID && pp.Root == root
		lockedAbove := parent.HasFlag(window.FlagShowWhenLocked) &&
			pp.ID == window.InvalidID && pp.Root == window.BucketAbove
		if !underRoot && !lockedAbove {
			return fmt.Errorf("add window %d under %d: parent must be a main window: %w",
				n.ID, parent.ID, wmerr.ErrInvalidParam)
		}
		c.forest.Register(n)
		n.RequestedVisibility = true
		n.CurrentVisibility = parent.CurrentVisibility
		c.forest.SetParent(n, window.Parent{ID: parent.ID})
		return nil
	}

	c.forest.Register(n)
	n.RequestedVisibility = true
	n.CurrentVisibility = true
	c.forest.SetParent(n, window.Parent{Root: root})
	for _, child := range c.forest.ChildNodes(window.Parent{ID: n.ID}) {
		child.CurrentVisibility = child.RequestedVisibility
	}
	if window.IsAvoidAreaWindow(n.Type) {
		c.sysBarNodes[n.Type] = n
	}
	return nil
}

// updateWindowTree resolves n's priority and inserts it under its parent.
func (c *Container) updateWindowTree(n *window.Node) {
	n.Priority = c.zorder.Priority(n.Type)
	c.raiseInputMethodWindowPriorityIfNeeded(n)
	c.raiseShowWhenLockedWindowIfNeeded(n)
	c.forest.InsertByPriority(n, n.Parent())
}

// updateSurfaceTree attaches or detaches n's surface and its children's.
func (c *Container) updateSurfaceTree(n *window.Node, add, animationPlayed bool) {
	if c.compose == nil {
		return
	}
	animate := c.settings.AnimationEnabled && !animationPlayed
	children := c.forest.ChildNodes(window.Parent{ID: n.ID})
	if add {
		c.attach(n.Surface, animate)
		for _, child := range children {
			if child.CurrentVisibility {
				c.attach(child.Surface, animate)
			}
		}
		return
	}
	surface := n.Surface
	if n.Leash != 0 {
		surface = n.Leash
	}
	c.detach(surface, animate)
	for _, child := range children {
		c.detach(child.Surface, animate)
	}
}

func (c *Container) attach(s platform.SurfaceID, animate bool) {
	if s == 0 {
		return
	}
	if err := c.compose.AttachSurface(c.displayID, s, animate); err != nil {
		c.logger.Warn("attach surface failed", "surface", s, "error", err)
	}
}

func (c *Container) detach(s platform.SurfaceID, animate bool) {
	if s == 0 {
		return
	}
	if err := c.compose.DetachSurface(c.displayID, s, animate); err != nil {
		c.logger.Warn("detach surface failed", "surface", s, "error", err)
	}
}

// AssignZOrder numbers every surface bottom to top starting at 0.
func (c *Container) AssignZOrder() {
	z := 0
	c.forest.TraverseBottomToTop(func(n *window.Node) bool {
		if n.Surface == 0 {
			c.logger.Error("assign z-order: window has no surface", "window", n.ID)
			return false
		}
		n.ZOrder = z
		if c.compose != nil {
			if err := c.compose.SetSurfaceZ(n.Surface, z); err != nil {
				c.logger.Warn("set surface z failed", "window", n.ID, "error", err)
			}
		}
		z++
		return false
	})
	c.zOrderCount = z
}

// UpdateWindowNode re-lays-out n after its properties changed.
func (c *Container) UpdateWindowNode(n *window.Node, reason window.UpdateReason) error {
	if n == nil {
		return fmt.Errorf("update window: %w", wmerr.ErrNullPtr)
	}
	if window.IsMainWindow(n.Type) && window.IsSwitchCascadeReason(reason) {
		if err := c.SwitchLayoutPolicy(layout.ModeCascade, false); err != nil {
			return err
		}
	}
	c.policy().UpdateWindowNode(n)
	c.notifySystemBarChange(n, avoid.NodeUpdate)
	c.DumpTree()
	c.logger.Debug("window updated", "window", n.ID, "reason", reason)
	return nil
}

// notifySystemBarChange refreshes the avoid controller and region state for
// system bars, and the expected tint for everything else.
func (c *Container) notifySystemBarChange(n *window.Node, kind avoid.ControlKind) {
	if !window.IsAvoidAreaWindow(n.Type) {
		c.NotifyIfSystemBarTintChanged()
		return
	}
	if err := c.avoid.AvoidControl(n, kind); err != nil {
		c.logger.Warn("avoid control failed", "window", n.ID, "error", err)
	}
	c.NotifyIfSystemBarRegionChanged()
}

// RemoveWindowNode detaches n, hides it and its children and reports the
// change.
func (c *Container) RemoveWindowNode(n *window.Node) error {
	if n == nil {
		c.logger.Error("remove window: node is gone")
		return fmt.Errorf("remove window: %w", wmerr.ErrDestroyedObject)
	}

	if !n.Attached() {
		c.logger.Warn("remove window: not attached", "window", n.ID)
	} else if !c.forest.Remove(n) {
		c.logger.Warn("remove window: missing from parent", "window", n.ID)
	}

	n.RequestedVisibility = false
	n.CurrentVisibility = false
	n.IsCovered = true
	infos := []window.VisibilityInfo{{WindowID: n.ID, PID: n.PID, UID: n.UID, Visible: false}}
	for _, child := range c.forest.ChildNodes(window.Parent{ID: n.ID}) {
		if child.CurrentVisibility {
			child.CurrentVisibility = false
			child.IsCovered = true
			infos = append(infos, window.VisibilityInfo{WindowID: child.ID, PID: child.PID, UID: child.UID, Visible: false})
		}
	}

	c.updateSurfaceTree(n, false, n.PlayedHideAnimation)
	c.policy().RemoveWindowNode(n)
	c.pair.HandleRemoveWindow(n)
	c.DropShowWhenLockedWindowIfNeeded(n)
	c.notifySystemBarChange(n, avoid.NodeRemove)
	if c.sysBarNodes[n.Type] == n {
		delete(c.sysBarNodes, n.Type)
	}
	c.UpdateWindowVisibilityInfos(infos)
	c.DumpTree()
	c.notifyAccessibility(n, window.UpdateRemoved)
	c.recoverDefaultOrientationIfNeeded()
	c.logger.Info("window removed", "window", n.ID)
	return nil
}

func (c *Container) recoverDefaultOrientationIfNeeded() {
	if len(c.forest.Root(window.BucketApp)) > 0 || c.displays == nil {
		return
	}
	c.logger.Info("no app windows left, restoring default orientation")
	if err := c.displays.SetOrientationFromWindow(c.displayID, platform.OrientationUnspecified); err != nil {
		c.logger.Warn("restore orientation failed", "error", err)
	}
}

// DestroyWindowNode removes n and releases its surfaces and those of its
// children. It returns every freed window id.
func (c *Container) DestroyWindowNode(n *window.Node) ([]uint32, error) {
	if err := c.RemoveWindowNode(n); err != nil {
		return nil, err
	}
	n.Surface = 0
	n.Leash = 0
	ids := []uint32{n.ID}
	for _, child := range c.forest.ChildNodes(window.Parent{ID: n.ID}) {
		ids = append(ids, child.ID)
		c.forest.SetParent(child, window.Parent{})
		child.Surface = 0
		c.forest.Unregister(child.ID)
	}
	c.forest.ClearChildren(n)
	c.forest.Unregister(n.ID)
	return ids, nil
}

// Destroy tears down every window on the display and returns their ids.
func (c *Container) Destroy() []uint32 {
	var removed []uint32
	for _, b := range []window.Bucket{window.BucketBelow, window.BucketApp, window.BucketAbove} {
		for _, n := range c.forest.Root(b) {
			ids, err := c.DestroyWindowNode(n)
			if err != nil {
				c.logger.Warn("destroy window failed", "window", n.ID, "error", err)
				continue
			}
			removed = append(removed, ids...)
		}
	}
	c.logger.Info("display container destroyed", "windows", len(removed))
	return removed
}
