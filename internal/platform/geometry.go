package platform

import "fmt"

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d %d %d %d]", r.X, r.Y, r.Width, r.Height)
}

// IsEmpty reports whether the rect has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right is the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom is the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// IsInsideOf reports whether r lies entirely within other.
func (r Rect) IsInsideOf(other Rect) bool {
	return r.X >= other.X && r.Y >= other.Y &&
		r.Right() <= other.Right() && r.Bottom() <= other.Bottom()
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Intersect returns the overlap of r and other. The result may be empty.
func (r Rect) Intersect(other Rect) Rect {
	x := max(r.X, other.X)
	y := max(r.Y, other.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  min(r.Right(), other.Right()) - x,
		Height: min(r.Bottom(), other.Bottom()) - y,
	}
}

// ClipToDisplay clamps r to the display. Only the near edges move inward
// for the origin and only the far edges for the extent, so the result of an
// off-screen rect has a non-positive size.
func (r Rect) ClipToDisplay(display Rect) Rect {
	x := max(display.X, r.X)
	y := max(display.Y, r.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  min(display.Right(), r.Right()) - x,
		Height: min(display.Bottom(), r.Bottom()) - y,
	}
}

// IsVertical reports whether the rect is taller than it is wide.
func (r Rect) IsVertical() bool {
	return r.Width < r.Height
}
