package platform

import "time"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// DisplayID identifies a physical display.
type DisplayID uint64

// SurfaceID is an opaque compositor surface handle. The zero value is the
// null surface.
type SurfaceID uint64

// Orientation is a display rotation request.
type Orientation uint32

const (
	OrientationUnspecified Orientation = iota
	OrientationVertical
	OrientationHorizontal
	OrientationReverseVertical
	OrientationReverseHorizontal
)

// Display describes a physical display.
type Display struct {
	ID     DisplayID
	Name   string
	Bounds Rect
	// DPI is the horizontal density reported by the output, 0 when unknown.
	DPI float64
}

// Window is a top-level window as seen by the platform window system.
type Window struct {
	ID        WindowID
	PID       int
	AppID     string
	Title     string
	Bounds    Rect
	Kinds     []string
	States    []string
	Transient WindowID
}

// Backend abstracts window-system discovery and direct window manipulation.
type Backend interface {
	Displays() ([]Display, error)
	ActiveWindow() (WindowID, error)
	ListWindows() ([]Window, error)
	MoveResize(windowID WindowID, bounds Rect) error
	Activate(windowID WindowID) error
	Minimize(windowID WindowID) error
}

// Compositor positions and stacks surfaces. Animated attach and detach run in
// the background and never block the caller.
type Compositor interface {
	AttachSurface(displayID DisplayID, surface SurfaceID, animate bool) error
	DetachSurface(displayID DisplayID, surface SurfaceID, animate bool) error
	SetSurfaceZ(surface SurfaceID, z int) error
	SetSurfaceBounds(surface SurfaceID, bounds Rect) error
}

// DisplayService is the display manager the stacking engine reports to.
type DisplayService interface {
	ScreenID(displayID DisplayID) uint64
	SetOrientationFromWindow(displayID DisplayID, orientation Orientation) error
}

// PowerService controls brightness and screen-on locks.
type PowerService interface {
	OverrideBrightness(level uint32) error
	RestoreBrightness() error
	AcquireScreenLock(name string) error
	ReleaseScreenLock(name string) error
}

// DefaultTransitionDuration is the length of animated surface transitions.
const DefaultTransitionDuration = 350 * time.Millisecond
