package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/daemon"
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/window/windowtest"
	"github.com/1broseidon/winstack/internal/wmerr"
)

func startServer(t *testing.T, reload ReloadFunc) (*Client, *daemon.Engine) {
	t.Helper()

	mem := platform.NewMemory()
	s := container.DefaultSettings()
	s.AnimationEnabled = false
	engine := daemon.NewEngine(daemon.EngineDeps{Compositor: mem, DisplayService: mem, Power: mem, Settings: s})
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = engine.Run(ctx) }()

	// Unix socket paths are length limited; t.TempDir can be too deep.
	dir, err := os.MkdirTemp("", "wsipc")
	require.NoError(t, err)
	sock := filepath.Join(dir, "s.sock")

	srv := NewServer(sock, engine, reload, nil)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		srv.Stop()
		cancel()
		os.RemoveAll(dir)
	})

	require.NoError(t, engine.ProcessDisplayCreate(ctx, platform.Display{
		ID: 1, Name: "DP-1", Bounds: platform.Rect{Width: 1000, Height: 1000},
	}))
	for _, id := range []uint32{1, 2} {
		n := window.NewNode(id, 1, window.TypeAppMain, window.ModeFloating)
		n.Name = "app"
		n.Surface = platform.SurfaceID(id)
		n.Client = &windowtest.Client{}
		require.NoError(t, engine.AddWindow(ctx, n, 0))
	}
	return NewClientAt(sock), engine
}

func TestClientStatusAndQueries(t *testing.T) {
	client, _ := startServer(t, nil)

	require.NoError(t, client.Ping())
	status, err := client.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.DaemonRunning)
	require.Len(t, status.Displays, 1)
	assert.Equal(t, "DP-1", status.Displays[0].Name)
	assert.Equal(t, 2, status.Displays[0].Windows)

	tree, err := client.GetTree(1)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, uint32(2), tree[0].ID)
	assert.Equal(t, window.TypeAppMain, tree[0].Type)

	windows, err := client.ListWindows(0)
	require.NoError(t, err)
	assert.Len(t, windows, 2)
}

func TestClientCommands(t *testing.T) {
	client, engine := startServer(t, nil)
	ctx := context.Background()

	require.NoError(t, client.Raise(1))
	tree, err := engine.Tree(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), tree[0].ID)

	require.NoError(t, client.Focus(2))
	status, err := engine.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), status[0].Focused)

	require.NoError(t, client.SwitchLayout(1, "tile", false))
	status, err = engine.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tile", status[0].Layout)

	require.NoError(t, client.SetSplitRatio(1, 0.4))
	require.NoError(t, client.MinimizeAll(0))
}

func TestClientErrorsCarryCodes(t *testing.T) {
	client, _ := startServer(t, nil)

	err := client.Focus(99)
	require.Error(t, err)
	assert.ErrorIs(t, err, wmerr.ErrNullPtr)
	var de *DaemonError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, wmerr.NullPtr, de.Code)

	assert.ErrorIs(t, client.SetSplitRatio(1, 2), wmerr.ErrInvalidParam)
	assert.ErrorIs(t, client.SwitchLayout(9, "tile", false), wmerr.ErrInvalidDisplay)

	err = client.SwitchLayout(1, "spiral", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spiral")

	assert.Error(t, client.Raise(0))
}

func TestReload(t *testing.T) {
	client, _ := startServer(t, nil)
	assert.ErrorContains(t, client.Reload(), "not supported")

	calls := 0
	client, _ = startServer(t, func(context.Context) error { calls++; return nil })
	require.NoError(t, client.Reload())
	assert.Equal(t, 1, calls)

	client, _ = startServer(t, func(context.Context) error { return errors.New("bad yaml") })
	assert.ErrorContains(t, client.Reload(), "bad yaml")
}

func TestClientWithoutDaemon(t *testing.T) {
	client := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	err := client.Ping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is the daemon running?")
}

func TestCodedErrorResponse(t *testing.T) {
	resp := NewCodedErrorResponse(wmerr.ErrInvalidType)
	assert.Equal(t, "ERROR", resp.Status)
	assert.Equal(t, "INVALID_TYPE", resp.Code)

	resp = NewCodedErrorResponse(errors.New("plain"))
	assert.Equal(t, "INVALID_PARAM", resp.Code)
}
