// Package layout computes window rectangles. A Policy owns the geometry of
// one display: its limit rect (display minus system bars), split rects and
// the placement of every window in the display's forest.
package layout

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

// Mode selects a layout policy.
type Mode int

const (
	ModeCascade Mode = iota
	ModeTile
	modeEnd
)

// Valid reports whether m names a policy.
func (m Mode) Valid() bool { return m >= ModeCascade && m < modeEnd }

func (m Mode) String() string {
	switch m {
	case ModeCascade:
		return "cascade"
	case ModeTile:
		return "tile"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode resolves "cascade" or "tile".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "cascade":
		return ModeCascade, nil
	case "tile":
		return ModeTile, nil
	default:
		return ModeCascade, fmt.Errorf("unknown layout mode %q", s)
	}
}

// Policy places windows. All methods run on the display's worker.
type Policy interface {
	Launch()
	Clean()
	Reset()
	UpdateDisplayInfo(display platform.Display)
	AddWindowNode(n *window.Node)
	UpdateWindowNode(n *window.Node)
	RemoveWindowNode(n *window.Node)
	Reorder()
	SetSplitRatio(ratio float64)
	VirtualPixelRatio(displayID platform.DisplayID) float64
	Geometry() Geometry
}

// Geometry is a read-only view of a policy's current rects.
type Geometry struct {
	Display      platform.Rect `json:"display"`
	Limit        platform.Rect `json:"limit"`
	Divider      platform.Rect `json:"divider"`
	Primary      platform.Rect `json:"primary"`
	Secondary    platform.Rect `json:"secondary"`
	FirstCascade platform.Rect `json:"first_cascade"`
}

// Settings are the tunables shared by every policy.
type Settings struct {
	CascadeOffset int
	CascadeRatio  float64
	SplitRatio    float64
	DividerWidth  int

	// Frame and title sizes and the minimum floating size are in
	// virtual pixels.
	FrameWidth  int
	TitleHeight int
	MinWidth    int
	MinHeight   int
	// Maximum window size in pixels, 0 for the display size.
	MaxWidth  int
	MaxHeight int
	// VirtualPixelRatio overrides the DPI-derived ratio when positive.
	VirtualPixelRatio float64

	MaxTileWindows  int
	TileGap         int
	TileArrangement Arrangement
}

// DefaultSettings returns the stock tunables.
func DefaultSettings() Settings {
	return Settings{
		CascadeOffset: 48,
		CascadeRatio:  0.35,
		SplitRatio:    0.5,
		DividerWidth:  8,
		FrameWidth:    4,
		TitleHeight:   48,
		MinWidth:      100,
		MinHeight:     100,

		TileArrangement: ArrangeGrid,
	}
}

// Minimizer is called when a policy needs a window out of the way.
type Minimizer func(n *window.Node)

// Deps are the collaborators handed to a policy.
type Deps struct {
	DisplayID  platform.DisplayID
	Display    platform.Display
	Forest     *window.Forest
	Compositor platform.Compositor
	Settings   Settings
	Minimize   Minimizer
	Logger     *slog.Logger
}

func avoidType(t window.Type) bool {
	return window.IsAvoidAreaWindow(t)
}

// base carries what cascade and tile share: display geometry, size clamps,
// decoration and the push of changed rects to client and compositor.
type base struct {
	displayID  platform.DisplayID
	display    platform.Display
	forest     *window.Forest
	compositor platform.Compositor
	settings   Settings
	minimize   Minimizer
	logger     *slog.Logger

	limitRect platform.Rect
}

func newBase(d Deps, name string) base {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		displayID:  d.DisplayID,
		display:    d.Display,
		forest:     d.Forest,
		compositor: d.Compositor,
		settings:   d.Settings,
		minimize:   d.Minimize,
		logger:     logger.With("component", "layout", "policy", name, "display", d.DisplayID),
		limitRect:  d.Display.Bounds,
	}
}

func (b *base) displayRect() platform.Rect { return b.display.Bounds }

func (b *base) VirtualPixelRatio(platform.DisplayID) float64 {
	if b.settings.VirtualPixelRatio > 0 {
		return b.settings.VirtualPixelRatio
	}
	if b.display.DPI > 0 {
		return b.display.DPI / 160
	}
	return 1
}

func (b *base) vp(v int) int {
	return int(float64(v) * b.VirtualPixelRatio(b.displayID))
}

// decorate grows a client rect by the frame on three sides and the title bar.
func (b *base) decorate(r platform.Rect) platform.Rect {
	frame := b.vp(b.settings.FrameWidth)
	title := b.vp(b.settings.TitleHeight)
	return platform.Rect{
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width + 2*frame,
		Height: r.Height + title + frame,
	}
}

// limitWindowSize clamps a rect to the maximum window size; floating app
// windows are also held to the minimum size.
func (b *base) limitWindowSize(n *window.Node, displayRect platform.Rect, r *platform.Rect) {
	maxW, maxH := displayRect.Width, displayRect.Height
	if b.settings.MaxWidth > 0 {
		maxW = min(maxW, b.settings.MaxWidth)
	}
	if b.settings.MaxHeight > 0 {
		maxH = min(maxH, b.settings.MaxHeight)
	}
	if n.Mode == window.ModeFloating && !window.IsSystemWindow(n.Type) {
		minW, minH := b.vp(b.settings.MinWidth), b.vp(b.settings.MinHeight)
		if displayRect.IsVertical() {
			minW, minH = minH, minW
		}
		r.Width = max(r.Width, min(minW, maxW))
		r.Height = max(r.Height, min(minH, maxH))
	}
	r.Width = min(r.Width, maxW)
	r.Height = min(r.Height, maxH)
}

// fitInto shrinks r to fit limit and then slides it inside.
func fitInto(limit platform.Rect, r *platform.Rect) {
	r.Width = min(limit.Width, r.Width)
	r.Height = min(limit.Height, r.Height)
	r.X = max(limit.X, r.X)
	r.Y = max(limit.Y, r.Y)
	r.X = min(limit.Right()-r.Width, r.X)
	r.Y = min(limit.Bottom()-r.Height, r.Y)
}

// carveLimit removes the region of a system bar from limit.
func (b *base) carveLimit(n *window.Node, limit *platform.Rect) {
	if !avoidType(n.Type) {
		return
	}
	bar := n.LayoutRect
	if bar.IsEmpty() {
		return
	}
	w, h := limit.Width, limit.Height
	if bar.Width >= bar.Height {
		if 2*bar.Y+bar.Height < 2*b.displayRect().Y+b.displayRect().Height {
			offset := bar.Bottom() - limit.Y
			limit.Y += offset
			h -= offset
		} else {
			h -= limit.Bottom() - bar.Y
		}
	} else {
		if 2*bar.X+bar.Width < 2*b.displayRect().X+b.displayRect().Width {
			offset := bar.Right() - limit.X
			limit.X += offset
			w -= offset
		} else {
			w -= limit.Right() - bar.X
		}
	}
	limit.Width = max(0, w)
	limit.Height = max(0, h)
}

// applyRect stores the layout rect and pushes it outward when it changed.
func (b *base) applyRect(n *window.Node, r platform.Rect) {
	last := n.LayoutRect
	n.LayoutRect = r
	if last == r {
		return
	}
	if n.Client != nil {
		n.Client.UpdateWindowRect(r, n.DecorEnable, n.SizeReason)
	}
	n.SizeReason = window.SizeChangeUndefined
	if b.compositor != nil && n.Surface != 0 {
		if err := b.compositor.SetSurfaceBounds(n.Surface, r); err != nil {
			b.logger.Warn("set surface bounds failed", "window", n.ID, "error", err)
		}
	}
	b.logger.Debug("layout rect changed", "window", n.ID, "from", last, "to", r)
}

// visitVisible walks n and its descendants, skipping hidden subtrees.
func (b *base) visitVisible(n *window.Node, fn func(*window.Node)) {
	if !n.CurrentVisibility {
		return
	}
	fn(n)
	for _, c := range b.forest.ChildNodes(window.Parent{ID: n.ID}) {
		b.visitVisible(c, fn)
	}
}

// walkTree visits every visible node, Above first so system bars shape the
// limit rect before ordinary windows are placed.
func (b *base) walkTree(fn func(*window.Node)) {
	for _, bucket := range []window.Bucket{window.BucketAbove, window.BucketApp, window.BucketBelow} {
		for _, n := range b.forest.Root(bucket) {
			b.visitVisible(n, fn)
		}
	}
}

func (b *base) notifyHidden(n *window.Node) {
	if n.Client != nil {
		n.Client.UpdateWindowRect(n.LayoutRect, n.DecorEnable, window.SizeChangeHide)
	}
}
