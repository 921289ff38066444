package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

func TestTileEvictsOldestWhenFull(t *testing.T) {
	f := newFixture(1000, 800)
	f.deps.Settings.MaxTileWindows = 2
	var minimized []uint32
	f.deps.Minimize = func(n *window.Node) { minimized = append(minimized, n.ID) }
	tl := NewTile(f.deps)
	tl.Launch()

	var nodes []*window.Node
	for id := uint32(1); id <= 3; id++ {
		n, _ := f.attach(id, window.TypeAppMain, window.ModeFloating)
		tl.AddWindowNode(n)
		nodes = append(nodes, n)
	}

	assert.Equal(t, []uint32{1}, minimized)
	assert.Equal(t, []uint32{2, 3}, tl.Foreground())
	assert.Equal(t, platform.Rect{Width: 500, Height: 800}, nodes[1].LayoutRect)
	assert.Equal(t, platform.Rect{X: 500, Width: 500, Height: 800}, nodes[2].LayoutRect)
}

func TestTileLaunchAdoptsExistingWindows(t *testing.T) {
	f := newFixture(1000, 800)
	a, _ := f.attach(1, window.TypeAppMain, window.ModeFloating)
	b, _ := f.attach(2, window.TypeAppMain, window.ModeFloating)
	split, _ := f.attach(3, window.TypeAppMain, window.ModeSplitPrimary)

	tl := NewTile(f.deps)
	tl.Launch()

	require.Equal(t, []uint32{1, 2}, tl.Foreground())
	assert.Equal(t, platform.Rect{Width: 500, Height: 800}, a.LayoutRect)
	assert.Equal(t, platform.Rect{X: 500, Width: 500, Height: 800}, b.LayoutRect)
	assert.NotContains(t, tl.Foreground(), split.ID)
}

func TestTileRemoveRelayouts(t *testing.T) {
	f := newFixture(1000, 800)
	tl := NewTile(f.deps)
	tl.Launch()

	a, _ := f.attach(1, window.TypeAppMain, window.ModeFloating)
	tl.AddWindowNode(a)
	b, bClient := f.attach(2, window.TypeAppMain, window.ModeFloating)
	tl.AddWindowNode(b)

	tl.RemoveWindowNode(b)

	assert.Equal(t, []uint32{1}, tl.Foreground())
	assert.Equal(t, platform.Rect{Width: 1000, Height: 800}, a.LayoutRect)
	last, ok := bClient.LastRect()
	require.True(t, ok)
	assert.Equal(t, window.SizeChangeHide, last.Reason)
}

func TestTileAreaExcludesSystemBars(t *testing.T) {
	f := newFixture(1000, 800)
	f.deps.Settings.TileGap = 10
	tl := NewTile(f.deps)
	tl.Launch()

	bar, _ := f.attach(1, window.TypeStatusBar, window.ModeFloating)
	bar.RequestRect = platform.Rect{Width: 1000, Height: 40}
	tl.AddWindowNode(bar)
	app, _ := f.attach(2, window.TypeAppMain, window.ModeFloating)
	tl.AddWindowNode(app)

	assert.Equal(t, platform.Rect{Y: 40, Width: 1000, Height: 760}, tl.Geometry().Limit)
	assert.Equal(t, platform.Rect{X: 10, Y: 50, Width: 980, Height: 740}, app.LayoutRect)
}

func TestTileDerivedCapacity(t *testing.T) {
	f := newFixture(1000, 800)
	tl := NewTile(f.deps)
	tl.Launch()
	assert.Equal(t, 10, tl.maxTileNum())

	f.deps.Settings.MaxTileWindows = 3
	assert.Equal(t, 3, NewTile(f.deps).maxTileNum())
}
