package platform

import (
	"sync"
	"time"
)

// Memory is an in-process compositor, display service and power service.
// It backs headless runs of the daemon and the stacking tests.
type Memory struct {
	mu          sync.Mutex
	attached    map[SurfaceID]DisplayID
	z           map[SurfaceID]int
	bounds      map[SurfaceID]Rect
	orientation map[DisplayID]Orientation
	brightness  uint32
	overridden  bool
	locks       map[string]bool
	animated    int

	transitions *Transitions
	duration    time.Duration
}

var (
	_ Compositor     = (*Memory)(nil)
	_ DisplayService = (*Memory)(nil)
	_ PowerService   = (*Memory)(nil)
)

// NewMemory creates an empty in-memory platform.
func NewMemory() *Memory {
	return &Memory{
		attached:    make(map[SurfaceID]DisplayID),
		z:           make(map[SurfaceID]int),
		bounds:      make(map[SurfaceID]Rect),
		orientation: make(map[DisplayID]Orientation),
		locks:       make(map[string]bool),
		transitions: NewTransitions(),
		duration:    DefaultTransitionDuration,
	}
}

// SetTransitionDuration changes the length of animated attach/detach.
func (m *Memory) SetTransitionDuration(d time.Duration) {
	m.mu.Lock()
	m.duration = d
	m.mu.Unlock()
}

func (m *Memory) AttachSurface(displayID DisplayID, surface SurfaceID, animate bool) error {
	m.mu.Lock()
	m.attached[surface] = displayID
	d := m.duration
	if animate {
		m.animated++
	}
	m.mu.Unlock()
	if animate {
		m.transitions.Start(surface, d, nil, nil)
	}
	return nil
}

func (m *Memory) DetachSurface(displayID DisplayID, surface SurfaceID, animate bool) error {
	m.mu.Lock()
	delete(m.attached, surface)
	d := m.duration
	if animate {
		m.animated++
	}
	m.mu.Unlock()
	if animate {
		m.transitions.Start(surface, d, nil, nil)
	}
	return nil
}

func (m *Memory) SetSurfaceZ(surface SurfaceID, z int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.z[surface] = z
	return nil
}

func (m *Memory) SetSurfaceBounds(surface SurfaceID, bounds Rect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bounds[surface] = bounds
	return nil
}

func (m *Memory) ScreenID(displayID DisplayID) uint64 {
	return uint64(displayID)
}

func (m *Memory) SetOrientationFromWindow(displayID DisplayID, orientation Orientation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orientation[displayID] = orientation
	return nil
}

func (m *Memory) OverrideBrightness(level uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brightness = level
	m.overridden = true
	return nil
}

func (m *Memory) RestoreBrightness() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brightness = 0
	m.overridden = false
	return nil
}

func (m *Memory) AcquireScreenLock(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[name] = true
	return nil
}

func (m *Memory) ReleaseScreenLock(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, name)
	return nil
}

// Attached reports whether surface is currently attached, and to which display.
func (m *Memory) Attached(surface SurfaceID) (DisplayID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.attached[surface]
	return d, ok
}

// Z returns the last z-index pushed for surface.
func (m *Memory) Z(surface SurfaceID) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.z[surface]
	return z, ok
}

// Bounds returns the last bounds pushed for surface.
func (m *Memory) Bounds(surface SurfaceID) (Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.bounds[surface]
	return r, ok
}

// Orientation returns the last orientation requested for displayID.
func (m *Memory) Orientation(displayID DisplayID) (Orientation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orientation[displayID]
	return o, ok
}

// Brightness returns the override level and whether an override is active.
func (m *Memory) Brightness() (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brightness, m.overridden
}

// Locked reports whether a screen lock with name is held.
func (m *Memory) Locked(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[name]
}

// Animated counts animated attach and detach calls.
func (m *Memory) Animated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.animated
}

// Transitions exposes the transition runner, mostly so tests can Wait.
func (m *Memory) Transitions() *Transitions {
	return m.transitions
}
