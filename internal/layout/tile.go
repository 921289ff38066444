package layout

import (
	"slices"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

// Tile arranges the foreground main windows in a grid over the limit rect.
// When more windows arrive than fit, the oldest is minimized.
type Tile struct {
	base

	// foreground holds tiled main windows, oldest first.
	foreground []uint32
	rects      map[uint32]platform.Rect
	firstRect  platform.Rect
}

var _ Policy = (*Tile)(nil)

// NewTile creates a tile policy; call Launch before use.
func NewTile(d Deps) *Tile {
	return &Tile{
		base:  newBase(d, "tile"),
		rects: make(map[uint32]platform.Rect),
	}
}

// Launch adopts the visible main windows already on the display.
func (t *Tile) Launch() {
	t.initRects()
	t.foreground = t.foreground[:0]
	for _, n := range t.forest.Root(window.BucketApp) {
		if t.tileable(n) {
			t.push(n)
		}
	}
	t.logger.Info("tile layout launched", "windows", len(t.foreground), "max", t.maxTileNum())
	t.layoutWindowTree()
}

func (t *Tile) Clean() {
	t.foreground = nil
	clear(t.rects)
	t.logger.Info("tile layout cleaned")
}

func (t *Tile) Reset() {
	t.foreground = nil
	clear(t.rects)
	t.initRects()
}

func (t *Tile) UpdateDisplayInfo(display platform.Display) {
	t.display = display
	t.initRects()
	for len(t.foreground) > t.maxTileNum() {
		t.evictOldest()
	}
	t.layoutWindowTree()
}

func (t *Tile) Geometry() Geometry {
	return Geometry{
		Display:      t.displayRect(),
		Limit:        t.limitRect,
		FirstCascade: t.firstRect,
	}
}

func (t *Tile) AddWindowNode(n *window.Node) {
	if n.RequestRect.IsEmpty() {
		n.RequestRect = t.firstRect
	}
	if t.tileable(n) && !slices.Contains(t.foreground, n.ID) {
		t.push(n)
	}
	t.layoutWindowTree()
}

func (t *Tile) UpdateWindowNode(n *window.Node) {
	tiled := slices.Contains(t.foreground, n.ID)
	switch {
	case tiled && !t.tileable(n):
		t.drop(n.ID)
	case !tiled && t.tileable(n):
		t.push(n)
	}
	t.layoutWindowTree()
}

func (t *Tile) RemoveWindowNode(n *window.Node) {
	t.drop(n.ID)
	t.layoutWindowTree()
	t.notifyHidden(n)
}

func (t *Tile) Reorder() {
	t.layoutWindowTree()
}

// SetSplitRatio is meaningless while tiling; the ratio is kept by cascade.
func (t *Tile) SetSplitRatio(ratio float64) {
	t.logger.Debug("split ratio ignored in tile layout", "ratio", ratio)
}

// Foreground returns the tiled window ids, oldest first.
func (t *Tile) Foreground() []uint32 {
	return slices.Clone(t.foreground)
}

func (t *Tile) tileable(n *window.Node) bool {
	return n.Type == window.TypeAppMain && n.CurrentVisibility && !n.IsSplitMode()
}

func (t *Tile) push(n *window.Node) {
	t.foreground = append(t.foreground, n.ID)
	for len(t.foreground) > t.maxTileNum() {
		t.evictOldest()
	}
}

func (t *Tile) drop(id uint32) {
	if i := slices.Index(t.foreground, id); i >= 0 {
		t.foreground = slices.Delete(t.foreground, i, i+1)
	}
	delete(t.rects, id)
}

func (t *Tile) evictOldest() {
	id := t.foreground[0]
	t.foreground = t.foreground[1:]
	delete(t.rects, id)
	n := t.forest.Lookup(id)
	if n == nil {
		return
	}
	t.logger.Info("tile full, minimizing oldest window", "window", id)
	if t.minimize != nil {
		t.minimize(n)
	}
}

// maxTileNum is the configured cap, or as many minimum-width columns as fit
// across the limit rect.
func (t *Tile) maxTileNum() int {
	if t.settings.MaxTileWindows > 0 {
		return t.settings.MaxTileWindows
	}
	gap := t.settings.TileGap
	minW := t.vp(t.settings.MinWidth)
	if minW+gap <= 0 {
		return 1
	}
	return max(1, (t.limitRect.Width-gap)/(minW+gap))
}

func (t *Tile) initRects() {
	t.limitRect = t.displayRect()
	d := t.displayRect()
	w := int(float64(d.Width) * t.settings.CascadeRatio)
	h := int(float64(d.Height) * t.settings.CascadeRatio)
	t.firstRect = platform.Rect{
		X:      d.X + d.Width/2 - w/2,
		Y:      d.Y + d.Height/2 - h/2,
		Width:  w,
		Height: h,
	}
}

// layoutWindowTree places system bars first so the tile area excludes
// them, then computes the grid and places everything else.
func (t *Tile) layoutWindowTree() {
	t.limitRect = t.displayRect()
	t.walkTree(func(n *window.Node) {
		if avoidType(n.Type) {
			t.placeFree(n)
			t.carveLimit(n, &t.limitRect)
		}
	})

	clear(t.rects)
	positions, err := CalculatePositions(len(t.foreground), t.limitRect, t.settings.TileGap, t.settings.TileArrangement)
	if err != nil {
		t.logger.Warn("tile positions unavailable", "error", err)
	}
	for i, id := range t.foreground {
		if i < len(positions) {
			t.rects[id] = positions[i]
		}
	}

	t.walkTree(func(n *window.Node) {
		if avoidType(n.Type) {
			return
		}
		if r, ok := t.rects[n.ID]; ok {
			t.limitWindowSize(n, t.displayRect(), &r)
			t.applyRect(n, r)
			return
		}
		t.placeFree(n)
	})
}

// placeFree lays out a window that is not tiled: floating windows keep
// their request rect, everything else fills its limit.
func (t *Tile) placeFree(n *window.Node) {
	displayRect := t.displayRect()
	r := displayRect
	if n.HasFlag(window.FlagNeedAvoid) {
		r = t.limitRect
	}
	if n.Mode == window.ModeFloating {
		r = n.RequestRect
		if n.DecorEnable {
			r = t.decorate(r)
		}
		if window.IsSubWindow(n.Type) && n.HasFlag(window.FlagParentLimit) {
			if parent := t.forest.ParentNode(n); parent != nil {
				fitInto(parent.LayoutRect, &r)
			}
		}
	}
	t.limitWindowSize(n, displayRect, &r)
	t.applyRect(n, r)
}
