package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

func TestCascadeFirstRectIsCentered(t *testing.T) {
	f := newFixture(1000, 1000)
	c := NewCascade(f.deps)
	c.Launch()

	n, client := f.attach(1, window.TypeAppMain, window.ModeFloating)
	c.AddWindowNode(n)

	want := platform.Rect{X: 325, Y: 325, Width: 350, Height: 350}
	assert.Equal(t, want, n.RequestRect)
	assert.Equal(t, want, n.LayoutRect)
	last, ok := client.LastRect()
	require.True(t, ok)
	assert.Equal(t, want, last.Rect)
}

func TestCascadeStepsFromTopmostWindow(t *testing.T) {
	f := newFixture(1000, 1000)
	c := NewCascade(f.deps)
	c.Launch()

	first, _ := f.attach(1, window.TypeAppMain, window.ModeFloating)
	c.AddWindowNode(first)
	second, _ := f.attach(2, window.TypeAppMain, window.ModeFloating)
	c.AddWindowNode(second)
	third, _ := f.attach(3, window.TypeAppMain, window.ModeFloating)
	c.AddWindowNode(third)

	assert.Equal(t, platform.Rect{X: 373, Y: 373, Width: 350, Height: 350}, second.LayoutRect)
	assert.Equal(t, platform.Rect{X: 421, Y: 421, Width: 350, Height: 350}, third.LayoutRect)
}

func TestCascadeKeepsRequestedRect(t *testing.T) {
	f := newFixture(1000, 1000)
	c := NewCascade(f.deps)
	c.Launch()

	n, _ := f.attach(1, window.TypeAppMain, window.ModeFloating)
	n.RequestRect = platform.Rect{X: 10, Y: 20, Width: 400, Height: 300}
	c.AddWindowNode(n)
	assert.Equal(t, platform.Rect{X: 10, Y: 20, Width: 400, Height: 300}, n.LayoutRect)
}

func TestStepCascadeRectWraps(t *testing.T) {
	f := newFixture(1000, 1000)
	c := NewCascade(f.deps)
	c.Launch()

	tests := []struct {
		name string
		in   platform.Rect
		want platform.Rect
	}{
		{
			name: "fits",
			in:   platform.Rect{X: 100, Y: 100, Width: 350, Height: 350},
			want: platform.Rect{X: 148, Y: 148, Width: 350, Height: 350},
		},
		{
			name: "x overflows",
			in:   platform.Rect{X: 640, Y: 100, Width: 350, Height: 350},
			want: platform.Rect{X: 0, Y: 148, Width: 350, Height: 350},
		},
		{
			name: "both overflow",
			in:   platform.Rect{X: 640, Y: 640, Width: 350, Height: 350},
			want: platform.Rect{X: 0, Y: 0, Width: 350, Height: 350},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.stepCascadeRect(tt.in))
		})
	}
}

func TestCascadeFullscreenUsesLimitRect(t *testing.T) {
	f := newFixture(1000, 800)
	c := NewCascade(f.deps)
	c.Launch()

	bar, _ := f.attach(1, window.TypeStatusBar, window.ModeFloating)
	bar.RequestRect = platform.Rect{Width: 1000, Height: 40}
	c.AddWindowNode(bar)

	app, _ := f.attach(2, window.TypeAppMain, window.ModeFullscreen)
	app.Flags = window.FlagNeedAvoid
	c.AddWindowNode(app)

	assert.Equal(t, platform.Rect{Y: 40, Width: 1000, Height: 760}, app.LayoutRect)
	assert.Equal(t, platform.Rect{Y: 40, Width: 1000, Height: 760}, c.Geometry().Limit)

	game, _ := f.attach(3, window.TypeAppMain, window.ModeFullscreen)
	c.AddWindowNode(game)
	assert.Equal(t, platform.Rect{Width: 1000, Height: 800}, game.LayoutRect)
}

func TestInitSplitRectsFollowsOrientation(t *testing.T) {
	t.Run("portrait", func(t *testing.T) {
		f := newFixture(720, 1280)
		c := NewCascade(f.deps)
		c.Launch()
		g := c.Geometry()
		assert.Equal(t, platform.Rect{X: 0, Y: 636, Width: 720, Height: 8}, g.Divider)
		assert.Equal(t, platform.Rect{Width: 720, Height: 636}, g.Primary)
		assert.Equal(t, platform.Rect{Y: 644, Width: 720, Height: 636}, g.Secondary)
	})
	t.Run("landscape", func(t *testing.T) {
		f := newFixture(1280, 720)
		c := NewCascade(f.deps)
		c.Launch()
		g := c.Geometry()
		assert.Equal(t, platform.Rect{X: 636, Y: 0, Width: 8, Height: 720}, g.Divider)
		assert.Equal(t, platform.Rect{Width: 636, Height: 720}, g.Primary)
		assert.Equal(t, platform.Rect{X: 644, Width: 636, Height: 720}, g.Secondary)
	})
}

func TestSplitWindowsFollowDivider(t *testing.T) {
	f := newFixture(1280, 720)
	c := NewCascade(f.deps)
	c.Launch()

	primary, _ := f.attach(1, window.TypeAppMain, window.ModeSplitPrimary)
	c.AddWindowNode(primary)
	secondary, _ := f.attach(2, window.TypeAppMain, window.ModeSplitSecondary)
	c.AddWindowNode(secondary)
	divider, _ := f.attach(3, window.TypeDockSlice, window.ModeFloating)
	c.AddWindowNode(divider)

	assert.Equal(t, platform.Rect{Width: 636, Height: 720}, primary.LayoutRect)
	assert.Equal(t, platform.Rect{X: 644, Width: 636, Height: 720}, secondary.LayoutRect)

	c.SetSplitRatio(0.25)
	assert.Equal(t, platform.Rect{X: 318, Width: 8, Height: 720}, divider.LayoutRect)
	assert.Equal(t, platform.Rect{Width: 318, Height: 720}, primary.LayoutRect)
	assert.Equal(t, platform.Rect{X: 326, Width: 954, Height: 720}, secondary.LayoutRect)

	c.Reset()
	assert.Equal(t, platform.Rect{X: 636, Width: 8, Height: 720}, c.Geometry().Divider)
}

func TestDividerCannotLeaveLimitRect(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		in   platform.Rect
		want platform.Rect
	}{
		{
			name: "tall dragged left",
			w:    1280, h: 720,
			in:   platform.Rect{X: -40, Y: 0, Width: 8, Height: 720},
			want: platform.Rect{X: 0, Y: 0, Width: 8, Height: 720},
		},
		{
			name: "tall dragged right",
			w:    1280, h: 720,
			in:   platform.Rect{X: 1300, Y: 0, Width: 8, Height: 720},
			want: platform.Rect{X: 1272, Y: 0, Width: 8, Height: 720},
		},
		{
			name: "wide dragged down",
			w:    720, h: 1280,
			in:   platform.Rect{X: 0, Y: 1290, Width: 720, Height: 8},
			want: platform.Rect{X: 0, Y: 1272, Width: 720, Height: 8},
		},
		{
			name: "wide dragged up",
			w:    720, h: 1280,
			in:   platform.Rect{X: 0, Y: -5, Width: 720, Height: 8},
			want: platform.Rect{X: 0, Y: 0, Width: 720, Height: 8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.w, tt.h)
			c := NewCascade(f.deps)
			c.Launch()
			r := tt.in
			c.limitMoveBounds(&r)
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestCascadeReorder(t *testing.T) {
	f := newFixture(1000, 1000)
	c := NewCascade(f.deps)
	c.Launch()

	a, _ := f.attach(1, window.TypeAppMain, window.ModeFloating)
	a.RequestRect = platform.Rect{X: 5, Y: 5, Width: 200, Height: 200}
	b, _ := f.attach(2, window.TypeAppMain, window.ModeFloating)
	b.RequestRect = platform.Rect{X: 600, Y: 10, Width: 300, Height: 300}

	c.Reorder()

	assert.Equal(t, platform.Rect{X: 325, Y: 325, Width: 350, Height: 350}, a.LayoutRect)
	assert.Equal(t, platform.Rect{X: 373, Y: 373, Width: 350, Height: 350}, b.LayoutRect)
}

func TestCascadeRemoveNotifiesHide(t *testing.T) {
	f := newFixture(1000, 1000)
	c := NewCascade(f.deps)
	c.Launch()

	n, client := f.attach(1, window.TypeAppMain, window.ModeFloating)
	c.AddWindowNode(n)
	c.RemoveWindowNode(n)

	last, ok := client.LastRect()
	require.True(t, ok)
	assert.Equal(t, window.SizeChangeHide, last.Reason)
}

func TestCascadeSkipsHiddenWindow(t *testing.T) {
	f := newFixture(1000, 1000)
	c := NewCascade(f.deps)
	c.Launch()

	n, client := f.attach(1, window.TypeAppMain, window.ModeFloating)
	n.CurrentVisibility = false
	c.AddWindowNode(n)

	assert.Equal(t, 0, client.RectCount())
	assert.True(t, n.LayoutRect.IsEmpty())
}
