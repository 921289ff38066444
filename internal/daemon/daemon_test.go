package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/layout"
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/window/windowtest"
	"github.com/1broseidon/winstack/internal/wmerr"
)

var screen = platform.Display{ID: 1, Name: "DP-1", Bounds: platform.Rect{Width: 1000, Height: 1000}}

func startEngine(t *testing.T) (*Engine, context.Context) {
	t.Helper()
	mem := platform.NewMemory()
	s := container.DefaultSettings()
	s.AnimationEnabled = false
	e := NewEngine(EngineDeps{Compositor: mem, DisplayService: mem, Power: mem, Settings: s})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = e.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-e.worker.Stopped()
	})
	return e, ctx
}

func appWindow(id uint32, display platform.DisplayID) (*window.Node, *windowtest.Client) {
	n := window.NewNode(id, display, window.TypeAppMain, window.ModeFloating)
	n.Surface = platform.SurfaceID(id)
	client := &windowtest.Client{}
	n.Client = client
	return n, client
}

func TestWorkerRunsTasksInOrder(t *testing.T) {
	w := NewWorker(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []int
	for i := 0; i < 50; i++ {
		require.True(t, w.Post(func() { got = append(got, i) }))
	}
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, w.Do(ctx, func() error { return nil }))
	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestWorkerDoReturnsTaskError(t *testing.T) {
	w := NewWorker(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	boom := errors.New("boom")
	assert.ErrorIs(t, w.Do(ctx, func() error { return boom }), boom)
}

func TestWorkerRecoversPanic(t *testing.T) {
	w := NewWorker(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	err := w.Do(ctx, func() error { panic("bad task") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad task")
	assert.NoError(t, w.Do(ctx, func() error { return nil }))
}

func TestWorkerRejectsAfterStop(t *testing.T) {
	w := NewWorker(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()
	cancel()
	<-w.Stopped()

	assert.False(t, w.Post(func() {}))
	assert.ErrorIs(t, w.Do(context.Background(), func() error { return nil }), ErrWorkerStopped)
}

func TestWorkerConcurrentPosters(t *testing.T) {
	w := NewWorker(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = w.Do(ctx, func() error { count++; return nil })
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Do(ctx, func() error { return nil }))
	assert.Equal(t, 800, count)
}

func TestEngineDisplayLifecycle(t *testing.T) {
	e, ctx := startEngine(t)

	require.NoError(t, e.ProcessDisplayCreate(ctx, screen))
	assert.ErrorIs(t, e.ProcessDisplayCreate(ctx, screen), wmerr.ErrInvalidParam)
	assert.ErrorIs(t, e.ProcessDisplayCreate(ctx, platform.Display{ID: 2}), wmerr.ErrInvalidDisplay)

	n1, _ := appWindow(1, 1)
	n2, _ := appWindow(2, 1)
	require.NoError(t, e.AddWindow(ctx, n1, 0))
	require.NoError(t, e.AddWindow(ctx, n2, 0))

	status, err := e.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.Equal(t, "DP-1", status[0].Name)
	assert.Equal(t, "cascade", status[0].Layout)
	assert.Equal(t, 2, status[0].Windows)

	changed := screen
	changed.Bounds = platform.Rect{Width: 2000, Height: 1000}
	require.NoError(t, e.ProcessDisplayChange(ctx, changed))
	displays, err := e.Displays(ctx)
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, changed.Bounds, displays[0].Bounds)

	removed, err := e.ProcessDisplayDestroy(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{1, 2}, removed)

	managed, err := e.Managed(ctx)
	require.NoError(t, err)
	assert.Empty(t, managed)
	assert.ErrorIs(t, e.ProcessDisplayChange(ctx, screen), wmerr.ErrInvalidDisplay)
}

func TestEngineAddWindowErrors(t *testing.T) {
	e, ctx := startEngine(t)
	require.NoError(t, e.ProcessDisplayCreate(ctx, screen))

	assert.ErrorIs(t, e.AddWindow(ctx, nil, 0), wmerr.ErrNullPtr)

	orphan, _ := appWindow(5, 9)
	assert.ErrorIs(t, e.AddWindow(ctx, orphan, 0), wmerr.ErrInvalidDisplay)

	n, _ := appWindow(1, 1)
	require.NoError(t, e.AddWindow(ctx, n, 0))
	again, _ := appWindow(1, 1)
	assert.ErrorIs(t, e.AddWindow(ctx, again, 0), wmerr.ErrInvalidParam)

	sub := window.NewNode(3, 1, window.TypeAppSub, window.ModeFloating)
	sub.Surface = 3
	assert.ErrorIs(t, e.AddWindow(ctx, sub, 42), wmerr.ErrNullPtr)
	require.NoError(t, e.AddWindow(ctx, sub, 1))

	entry, err := e.Window(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), entry.Parent)

	require.NoError(t, e.RemoveWindow(ctx, 1))
	managed, err := e.Managed(ctx)
	require.NoError(t, err)
	assert.Empty(t, managed)
	assert.ErrorIs(t, e.RemoveWindow(ctx, 1), wmerr.ErrNullPtr)
}

func TestEngineRaiseAndFocus(t *testing.T) {
	e, ctx := startEngine(t)
	require.NoError(t, e.ProcessDisplayCreate(ctx, screen))
	n1, c1 := appWindow(1, 1)
	n2, _ := appWindow(2, 1)
	require.NoError(t, e.AddWindow(ctx, n1, 0))
	require.NoError(t, e.AddWindow(ctx, n2, 0))

	require.NoError(t, e.Raise(ctx, 1))
	tree, err := e.Tree(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, uint32(1), tree[0].ID)
	assert.ErrorIs(t, e.Raise(ctx, 1), wmerr.ErrInvalidType)

	require.NoError(t, e.Focus(ctx, 1))
	require.NoError(t, e.Focus(ctx, 1))
	status, err := e.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), status[0].Focused)
	assert.Equal(t, uint32(1), status[0].Active)
	assert.Equal(t, []bool{true}, c1.Focus)

	next, err := e.FocusNext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), next)
	next, err = e.FocusNext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), next)

	assert.ErrorIs(t, e.Focus(ctx, 99), wmerr.ErrNullPtr)
}

func TestEngineLayoutControls(t *testing.T) {
	e, ctx := startEngine(t)
	require.NoError(t, e.ProcessDisplayCreate(ctx, screen))
	n1, c1 := appWindow(1, 1)
	n2, c2 := appWindow(2, 1)
	require.NoError(t, e.AddWindow(ctx, n1, 0))
	require.NoError(t, e.AddWindow(ctx, n2, 0))

	require.NoError(t, e.SwitchLayout(ctx, 0, layout.ModeTile, false))
	status, err := e.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tile", status[0].Layout)

	mode, err := e.CycleLayout(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, layout.ModeCascade, mode)

	assert.ErrorIs(t, e.SetSplitRatio(ctx, 1, 1.5), wmerr.ErrInvalidParam)
	require.NoError(t, e.SetSplitRatio(ctx, 1, 0.3))
	assert.ErrorIs(t, e.SwitchLayout(ctx, 7, layout.ModeTile, false), wmerr.ErrInvalidDisplay)

	require.NoError(t, e.MinimizeAll(ctx, 1))
	assert.Equal(t, []bool{true}, c1.Minimized)
	assert.Equal(t, []bool{true}, c2.Minimized)
}

func TestEngineApplySettingsReachesNewDisplays(t *testing.T) {
	e, ctx := startEngine(t)
	s := container.DefaultSettings()
	s.AnimationEnabled = false
	s.DefaultMode = layout.ModeTile
	require.NoError(t, e.ApplySettings(ctx, s))

	require.NoError(t, e.ProcessDisplayCreate(ctx, screen))
	status, err := e.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tile", status[0].Layout)
}

func TestEngineSetWindowMode(t *testing.T) {
	e, ctx := startEngine(t)
	require.NoError(t, e.ProcessDisplayCreate(ctx, screen))
	n, client := appWindow(1, 1)
	require.NoError(t, e.AddWindow(ctx, n, 0))

	require.NoError(t, e.SetWindowMode(ctx, 1, window.ModeFullscreen))
	entry, err := e.Window(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, window.ModeFullscreen, entry.Mode)
	assert.Equal(t, platform.Rect{Width: 1000, Height: 1000}, entry.Rect)
	assert.Contains(t, client.Modes, window.ModeFullscreen)
}

func TestEngineCapsAppWindows(t *testing.T) {
	e, ctx := startEngine(t)
	s := container.DefaultSettings()
	s.AnimationEnabled = false
	s.MaxAppWindows = 2
	require.NoError(t, e.ApplySettings(ctx, s))
	require.NoError(t, e.ProcessDisplayCreate(ctx, screen))

	n1, c1 := appWindow(1, 1)
	n2, c2 := appWindow(2, 1)
	n3, c3 := appWindow(3, 1)
	require.NoError(t, e.AddWindow(ctx, n1, 0))
	require.NoError(t, e.AddWindow(ctx, n2, 0))
	assert.Empty(t, c1.Minimized)

	require.NoError(t, e.AddWindow(ctx, n3, 0))
	assert.Equal(t, []bool{true}, c1.Minimized, "the oldest window makes room")
	assert.Empty(t, c2.Minimized)
	assert.Empty(t, c3.Minimized)
}
