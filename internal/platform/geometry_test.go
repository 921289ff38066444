package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectIsInsideOf(t *testing.T) {
	outer := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{name: "identical", r: outer, want: true},
		{name: "strictly inside", r: Rect{X: 10, Y: 10, Width: 50, Height: 50}, want: true},
		{name: "touching far edge", r: Rect{X: 50, Y: 50, Width: 50, Height: 50}, want: true},
		{name: "overhanging", r: Rect{X: 60, Y: 60, Width: 50, Height: 50}, want: false},
		{name: "negative origin", r: Rect{X: -1, Y: 0, Width: 10, Height: 10}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.IsInsideOf(outer))
		})
	}
}

func TestRectClipToDisplay(t *testing.T) {
	display := Rect{Width: 1000, Height: 800}
	got := Rect{X: -50, Y: 700, Width: 200, Height: 300}.ClipToDisplay(display)
	assert.Equal(t, Rect{X: 0, Y: 700, Width: 150, Height: 100}, got)
}

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 25, Width: 100, Height: 50}
	assert.Equal(t, Rect{X: 50, Y: 25, Width: 50, Height: 50}, a.Intersect(b))
	assert.True(t, a.Intersect(Rect{X: 200, Y: 200, Width: 1, Height: 1}).IsEmpty())
}

func TestEaseOut(t *testing.T) {
	assert.Equal(t, 0.0, EaseOut(-1))
	assert.Equal(t, 1.0, EaseOut(2))
	assert.InDelta(t, 0.875, EaseOut(0.5), 1e-9)
	assert.Greater(t, EaseOut(0.25), 0.25)
}
