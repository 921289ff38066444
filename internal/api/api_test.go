package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/1broseidon/winstack/internal/agent"
	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/daemon"
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/window/windowtest"
)

func newTestServer(t *testing.T) (*httptest.Server, *daemon.Engine) {
	t.Helper()
	mem := platform.NewMemory()
	s := container.DefaultSettings()
	s.AnimationEnabled = false
	engine := daemon.NewEngine(daemon.EngineDeps{Compositor: mem, DisplayService: mem, Power: mem, Settings: s})
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = engine.Run(ctx) }()

	require.NoError(t, engine.ProcessDisplayCreate(ctx, platform.Display{
		ID: 1, Name: "DP-1", Bounds: platform.Rect{Width: 1000, Height: 1000},
	}))
	for _, id := range []uint32{1, 2} {
		n := window.NewNode(id, 1, window.TypeAppMain, window.ModeFloating)
		n.Name = "term"
		n.Surface = platform.SurfaceID(id)
		n.Client = &windowtest.Client{}
		require.NoError(t, engine.AddWindow(ctx, n, 0))
	}

	srv := httptest.NewServer(NewServer(engine, "", nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, engine
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestDisplays(t *testing.T) {
	srv, _ := newTestServer(t)

	var body struct {
		Items []daemon.DisplayStatus `json:"items"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/displays/", &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "DP-1", body.Items[0].Name)
	assert.Equal(t, 2, body.Items[0].Windows)
	assert.Equal(t, "cascade", body.Items[0].Layout)
}

func TestDisplayWindows(t *testing.T) {
	srv, _ := newTestServer(t)

	var body struct {
		Items []window.Info `json:"items"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/displays/1/windows", &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, "term", body.Items[0].Name)

	var errBody errorBody
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/displays/9/windows", &errBody))
	assert.Equal(t, "INVALID_DISPLAY", errBody.Code)
}

func TestWindow(t *testing.T) {
	srv, _ := newTestServer(t)

	var body struct {
		Item container.TreeEntry `json:"item"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/windows/2", &body))
	assert.Equal(t, uint32(2), body.Item.ID)
	assert.Equal(t, window.TypeAppMain, body.Item.Type)

	var errBody errorBody
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/windows/42", &errBody))
	assert.Equal(t, "NULLPTR", errBody.Code)
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/windows/abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEventsStreamFocusChanges(t *testing.T) {
	srv, engine := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws://" + strings.TrimPrefix(srv.URL, "http://") + "/events"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "")

	require.NoError(t, engine.Focus(ctx, 1))

	for {
		var e agent.Event
		require.NoError(t, wsjson.Read(ctx, c, &e))
		if e.Kind != agent.KindFocus {
			continue
		}
		require.NotNil(t, e.Focus)
		require.NotNil(t, e.Focused)
		assert.Equal(t, uint32(1), e.Focus.WindowID)
		assert.True(t, *e.Focused)
		return
	}
}
