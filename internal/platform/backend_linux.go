//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/winstack/internal/x11"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend drives an X11 server. Surfaces are X window ids: attach maps,
// detach unmaps, z-order is applied with sibling restacking and animated
// transitions fade _NET_WM_WINDOW_OPACITY.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger

	mu       sync.Mutex
	z        map[SurfaceID]int
	gen      map[SurfaceID]uint64
	duration time.Duration

	backlight map[randr.Output]int32
	saver     *x11.ScreenSaver
	locks     map[string]bool

	transitions *Transitions
}

var (
	_ Backend        = (*LinuxBackend)(nil)
	_ Compositor     = (*LinuxBackend)(nil)
	_ DisplayService = (*LinuxBackend)(nil)
	_ PowerService   = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinuxBackend{
		conn:        conn,
		logger:      logger,
		z:           make(map[SurfaceID]int),
		gen:         make(map[SurfaceID]uint64),
		duration:    DefaultTransitionDuration,
		backlight:   make(map[randr.Output]int32),
		locks:       make(map[string]bool),
		transitions: NewTransitions(),
	}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, logger), nil
}

// SetTransitionDuration changes the length of animated attach/detach.
func (b *LinuxBackend) SetTransitionDuration(d time.Duration) {
	b.mu.Lock()
	b.duration = d
	b.mu.Unlock()
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     DisplayID(m.ID),
			Name:   m.Name,
			Bounds: Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			DPI:    m.DPI(),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// ListWindows lists managed clients in stacking order, bottom first.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.Clients()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, c := range clients {
		windows = append(windows, Window{
			ID:        WindowID(c.ID),
			PID:       c.PID,
			AppID:     strings.TrimSpace(c.Class),
			Title:     strings.TrimSpace(c.Title),
			Bounds:    Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height},
			Kinds:     c.Types,
			States:    c.States,
			Transient: WindowID(c.Transient),
		})
	}
	return windows, nil
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(windowID), bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

// Activate focuses windowID through _NET_ACTIVE_WINDOW.
func (b *LinuxBackend) Activate(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Activate(xproto.Window(windowID))
}

// Minimize minimizes a window via WM_CHANGE_STATE.
func (b *LinuxBackend) Minimize(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Iconify(xproto.Window(windowID))
}

func (b *LinuxBackend) AttachSurface(displayID DisplayID, surface SurfaceID, animate bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	win := xproto.Window(surface)
	gen := b.nextGen(surface)
	if !animate {
		if err := conn.Map(win); err != nil {
			return err
		}
		return conn.SetOpacity(win, 1)
	}

	if err := conn.SetOpacity(win, 0); err != nil {
		b.logger.Debug("opacity unsupported", "surface", surface, "error", err)
	}
	if err := conn.Map(win); err != nil {
		return err
	}
	b.transitions.Start(surface, b.transitionDuration(), func(p float64) {
		if b.currentGen(surface) == gen {
			_ = conn.SetOpacity(win, p)
		}
	}, nil)
	return nil
}

func (b *LinuxBackend) DetachSurface(displayID DisplayID, surface SurfaceID, animate bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	win := xproto.Window(surface)
	gen := b.nextGen(surface)

	b.mu.Lock()
	delete(b.z, surface)
	b.mu.Unlock()

	if !animate {
		return conn.Unmap(win)
	}
	b.transitions.Start(surface, b.transitionDuration(), func(p float64) {
		if b.currentGen(surface) == gen {
			_ = conn.SetOpacity(win, 1-p)
		}
	}, func() {
		if b.currentGen(surface) != gen {
			return
		}
		if err := conn.Unmap(win); err != nil {
			b.logger.Debug("unmap after transition failed", "surface", surface, "error", err)
		}
	})
	return nil
}

// SetSurfaceZ restacks surface directly above the surface holding the next
// lower z-index. Indices are assigned bottom-up, so a full pass yields the
// requested order.
func (b *LinuxBackend) SetSurfaceZ(surface SurfaceID, z int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.z[surface] = z
	var below SurfaceID
	bestZ := -1
	for s, sz := range b.z {
		if s != surface && sz < z && sz > bestZ {
			below, bestZ = s, sz
		}
	}
	b.mu.Unlock()

	return conn.StackAbove(xproto.Window(surface), xproto.Window(below))
}

func (b *LinuxBackend) SetSurfaceBounds(surface SurfaceID, bounds Rect) error {
	return b.MoveResize(WindowID(surface), bounds)
}

func (b *LinuxBackend) ScreenID(displayID DisplayID) uint64 {
	return uint64(displayID)
}

// SetOrientationFromWindow only honours the unspecified orientation; X11
// outputs are rotated by the user, not by windows.
func (b *LinuxBackend) SetOrientationFromWindow(displayID DisplayID, orientation Orientation) error {
	b.logger.Debug("orientation request", "display", displayID, "orientation", orientation)
	if orientation != OrientationUnspecified {
		return fmt.Errorf("display %d: window-driven rotation not supported", displayID)
	}
	return nil
}

// OverrideBrightness scales level (0-255) onto every output backlight.
func (b *LinuxBackend) OverrideBrightness(level uint32) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	monitors, err := conn.GetMonitors()
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var applied bool
	for _, m := range monitors {
		cur, lo, hi, err := conn.Backlight(m.Output)
		if err != nil {
			continue
		}
		if _, saved := b.backlight[m.Output]; !saved {
			b.backlight[m.Output] = cur
		}
		value := lo + int32(float64(hi-lo)*float64(min(level, 255))/255)
		if err := conn.SetBacklight(m.Output, value); err != nil {
			return err
		}
		applied = true
	}
	if !applied {
		return fmt.Errorf("no output exposes a backlight")
	}
	return nil
}

// RestoreBrightness puts back the backlight values seen before the first override.
func (b *LinuxBackend) RestoreBrightness() error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for output, value := range b.backlight {
		if err := conn.SetBacklight(output, value); err != nil {
			return err
		}
		delete(b.backlight, output)
	}
	return nil
}

// AcquireScreenLock disables the screen saver while any lock is held.
func (b *LinuxBackend) AcquireScreenLock(name string) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.locks[name] {
		return nil
	}
	if len(b.locks) == 0 {
		saver, err := conn.GetScreenSaver()
		if err != nil {
			return err
		}
		off := saver
		off.Timeout = 0
		if err := conn.SetScreenSaver(off); err != nil {
			return err
		}
		b.saver = &saver
	}
	b.locks[name] = true
	return nil
}

// ReleaseScreenLock restores the screen saver once the last lock is released.
func (b *LinuxBackend) ReleaseScreenLock(name string) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.locks[name] {
		return nil
	}
	delete(b.locks, name)
	if len(b.locks) == 0 && b.saver != nil {
		saver := *b.saver
		b.saver = nil
		return conn.SetScreenSaver(saver)
	}
	return nil
}

func (b *LinuxBackend) nextGen(surface SurfaceID) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen[surface]++
	return b.gen[surface]
}

func (b *LinuxBackend) currentGen(surface SurfaceID) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen[surface]
}

func (b *LinuxBackend) transitionDuration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duration
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
