package daemon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

type fakeBackend struct {
	mu        sync.Mutex
	displays  []platform.Display
	windows   []platform.Window
	active    platform.WindowID
	activated []platform.WindowID
	minimized []platform.WindowID
}

func (b *fakeBackend) Displays() ([]platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.Display(nil), b.displays...), nil
}

func (b *fakeBackend) ActiveWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active, nil
}

func (b *fakeBackend) ListWindows() ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.Window(nil), b.windows...), nil
}

func (b *fakeBackend) MoveResize(platform.WindowID, platform.Rect) error { return nil }

func (b *fakeBackend) Activate(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activated = append(b.activated, id)
	return nil
}

func (b *fakeBackend) Minimize(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minimized = append(b.minimized, id)
	return nil
}

func (b *fakeBackend) setWindows(ws ...platform.Window) {
	b.mu.Lock()
	b.windows = ws
	b.mu.Unlock()
}

func normal(id platform.WindowID, x int) platform.Window {
	return platform.Window{
		ID:     id,
		AppID:  "term",
		Bounds: platform.Rect{X: x, Y: 100, Width: 300, Height: 300},
		Kinds:  []string{"_NET_WM_WINDOW_TYPE_NORMAL"},
	}
}

func TestTypeFromKinds(t *testing.T) {
	tests := []struct {
		name      string
		kinds     []string
		transient bool
		nearTop   bool
		want      window.Type
	}{
		{"normal", []string{"_NET_WM_WINDOW_TYPE_NORMAL"}, false, false, window.TypeAppMain},
		{"untyped", nil, false, false, window.TypeAppMain},
		{"untyped transient", nil, true, false, window.TypeAppSub},
		{"desktop", []string{"_NET_WM_WINDOW_TYPE_DESKTOP"}, false, false, window.TypeDesktop},
		{"top dock", []string{"_NET_WM_WINDOW_TYPE_DOCK"}, false, true, window.TypeStatusBar},
		{"bottom dock", []string{"_NET_WM_WINDOW_TYPE_DOCK"}, false, false, window.TypeNavigationBar},
		{"dialog", []string{"_NET_WM_WINDOW_TYPE_DIALOG"}, true, false, window.TypeAppSub},
		{"free dialog", []string{"_NET_WM_WINDOW_TYPE_DIALOG"}, false, false, window.TypeFloat},
		{"menu", []string{"_NET_WM_WINDOW_TYPE_POPUP_MENU"}, true, false, window.TypeAppComponent},
		{"notification", []string{"_NET_WM_WINDOW_TYPE_NOTIFICATION"}, false, false, window.TypeToast},
		{"splash", []string{"_NET_WM_WINDOW_TYPE_SPLASH"}, false, false, window.TypeAppLaunching},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeFromKinds(tt.kinds, tt.transient, tt.nearTop))
		})
	}
}

func TestModeFromStates(t *testing.T) {
	assert.Equal(t, window.ModeFloating, ModeFromStates(nil))
	assert.Equal(t, window.ModeFullscreen, ModeFromStates([]string{"_NET_WM_STATE_ABOVE", "_NET_WM_STATE_FULLSCREEN"}))
}

func TestSyncDisplays(t *testing.T) {
	e, ctx := startEngine(t)
	b := &fakeBackend{displays: []platform.Display{screen, {ID: 2, Bounds: platform.Rect{X: 1000, Width: 800, Height: 600}}}}
	s := NewStateSynchronizer(e, b, nil)

	require.NoError(t, s.SyncDisplays(ctx))
	displays, err := e.Displays(ctx)
	require.NoError(t, err)
	require.Len(t, displays, 2)

	b.displays = []platform.Display{{ID: 1, Name: "DP-1", Bounds: platform.Rect{Width: 1200, Height: 1000}}}
	require.NoError(t, s.SyncDisplays(ctx))
	displays, err = e.Displays(ctx)
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, 1200, displays[0].Bounds.Width)
}

func TestSyncWindowsMirrorsBackend(t *testing.T) {
	e, ctx := startEngine(t)
	b := &fakeBackend{displays: []platform.Display{screen}}
	s := NewStateSynchronizer(e, b, nil)
	require.NoError(t, s.SyncDisplays(ctx))

	dialog := platform.Window{
		ID:        3,
		Bounds:    platform.Rect{X: 10, Y: 10, Width: 100, Height: 100},
		Kinds:     []string{"_NET_WM_WINDOW_TYPE_DIALOG"},
		Transient: 1,
	}
	// The dialog is listed before its parent.
	b.setWindows(dialog, normal(1, 0), normal(2, 400))
	require.NoError(t, s.SyncWindows(ctx, b.windows))

	managed, err := e.Managed(ctx)
	require.NoError(t, err)
	assert.Len(t, managed, 3)
	entry, err := e.Window(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), entry.Parent)
	assert.Equal(t, window.TypeAppSub, entry.Type)

	full := normal(2, 400)
	full.States = []string{"_NET_WM_STATE_FULLSCREEN"}
	b.setWindows(normal(1, 0), full)
	require.NoError(t, s.SyncWindows(ctx, b.windows))

	managed, err = e.Managed(ctx)
	require.NoError(t, err)
	assert.Len(t, managed, 2, "the dialog vanished")
	entry, err = e.Window(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, window.ModeFullscreen, entry.Mode)

	iconified := normal(1, 0)
	iconified.States = []string{"_NET_WM_STATE_HIDDEN"}
	b.setWindows(iconified, full)
	require.NoError(t, s.SyncWindows(ctx, b.windows))
	managed, err = e.Managed(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint32]platform.DisplayID{2: 1}, managed)
}

func TestSyncFocusFollowsActiveWindow(t *testing.T) {
	e, ctx := startEngine(t)
	b := &fakeBackend{displays: []platform.Display{screen}}
	s := NewStateSynchronizer(e, b, nil)
	require.NoError(t, s.SyncDisplays(ctx))
	b.setWindows(normal(1, 0), normal(2, 400))
	require.NoError(t, s.SyncWindows(ctx, b.windows))

	b.active = 1
	require.NoError(t, s.SyncFocus(ctx))
	status, err := e.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), status[0].Focused)
	assert.Equal(t, []platform.WindowID{1}, b.activated)

	b.active = 77
	require.NoError(t, s.SyncFocus(ctx), "unmanaged windows are ignored")
}

func TestPlatformClientMinimizes(t *testing.T) {
	e, ctx := startEngine(t)
	b := &fakeBackend{displays: []platform.Display{screen}}
	s := NewStateSynchronizer(e, b, nil)
	require.NoError(t, s.SyncDisplays(ctx))
	b.setWindows(normal(1, 0), normal(2, 400))
	require.NoError(t, s.SyncWindows(ctx, b.windows))

	require.NoError(t, e.MinimizeAll(ctx, 0))
	assert.ElementsMatch(t, []platform.WindowID{1, 2}, b.minimized)
}

func TestReconcilerRunsOnStart(t *testing.T) {
	e, ctx := startEngine(t)
	b := &fakeBackend{displays: []platform.Display{screen}}
	b.setWindows(normal(1, 0))
	s := NewStateSynchronizer(e, b, nil)
	r := NewReconciler(ReconcilerConfig{Interval: time.Hour}, s, b.ListWindows)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- r.Run(runCtx) }()

	require.Eventually(t, func() bool {
		managed, err := e.Managed(ctx)
		return err == nil && len(managed) == 1
	}, 2*time.Second, 10*time.Millisecond)

	b.setWindows()
	r.Trigger()
	require.Eventually(t, func() bool {
		managed, err := e.Managed(ctx)
		return err == nil && len(managed) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestSyncDecoratesMainWindows(t *testing.T) {
	e, ctx := startEngine(t)
	b := &fakeBackend{displays: []platform.Display{screen}}
	s := NewStateSynchronizer(e, b, nil)
	s.SetDecorate(true)
	require.NoError(t, s.SyncDisplays(ctx))

	toast := platform.Window{ID: 2, Bounds: platform.Rect{Width: 50, Height: 50}, Kinds: []string{"_NET_WM_WINDOW_TYPE_NOTIFICATION"}}
	b.setWindows(normal(1, 0), toast)
	require.NoError(t, s.SyncWindows(ctx, b.windows))

	var got []uint32
	require.NoError(t, e.worker.Do(ctx, func() error {
		for _, id := range []uint32{1, 2} {
			if _, n, err := e.lookup(id); err == nil && n.DecorEnable {
				got = append(got, id)
			}
		}
		return nil
	}))
	assert.Equal(t, []uint32{1}, got)
}
