package avoid

import (
	"testing"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var display = platform.Rect{Width: 1000, Height: 2000}

func bar(id uint32, t window.Type, r platform.Rect) *window.Node {
	n := window.NewNode(id, 0, t, window.ModeFloating)
	n.LayoutRect = r
	n.CurrentVisibility = true
	return n
}

func TestPosOf(t *testing.T) {
	assert.Equal(t, PosTop, PosOf(platform.Rect{Width: 1000, Height: 50}, display))
	assert.Equal(t, PosBottom, PosOf(platform.Rect{Y: 1900, Width: 1000, Height: 100}, display))
	assert.Equal(t, PosLeft, PosOf(platform.Rect{Width: 40, Height: 2000}, display))
	assert.Equal(t, PosRight, PosOf(platform.Rect{X: 960, Width: 40, Height: 2000}, display))
	assert.Equal(t, PosUnknown, PosOf(platform.Rect{}, display))
}

func TestAvoidControlNotifiesOnChange(t *testing.T) {
	var calls [][]platform.Rect
	c := NewController(0, display, func(areas []platform.Rect, _ platform.DisplayID) {
		calls = append(calls, areas)
	}, nil)

	status := bar(1, window.TypeStatusBar, platform.Rect{Width: 1000, Height: 50})
	require.NoError(t, c.AvoidControl(status, NodeAdd))
	require.Len(t, calls, 1)
	assert.Equal(t, status.LayoutRect, calls[0][PosTop])

	// Same geometry, no callback.
	require.NoError(t, c.AvoidControl(status, NodeUpdate))
	assert.Len(t, calls, 1)

	nav := bar(2, window.TypeNavigationBar, platform.Rect{Y: 1900, Width: 1000, Height: 100})
	require.NoError(t, c.AvoidControl(nav, NodeAdd))
	areas := c.AvoidAreaByType(AreaSystem)
	assert.Equal(t, nav.LayoutRect, areas[PosBottom])
	assert.Equal(t, status.LayoutRect, areas[PosTop])

	require.NoError(t, c.AvoidControl(status, NodeRemove))
	assert.True(t, c.AvoidAreaByType(AreaSystem)[PosTop].IsEmpty())
	assert.Len(t, calls, 3)
}

func TestAvoidControlRejects(t *testing.T) {
	c := NewController(0, display, nil, nil)
	status := bar(1, window.TypeStatusBar, platform.Rect{Width: 1000, Height: 50})

	assert.ErrorIs(t, c.AvoidControl(nil, NodeAdd), wmerr.ErrNullPtr)
	assert.ErrorIs(t, c.AvoidControl(bar(3, window.TypeAppMain, platform.Rect{}), NodeAdd), wmerr.ErrInvalidType)
	assert.ErrorIs(t, c.AvoidControl(status, NodeRemove), wmerr.ErrInvalidParam)
	require.NoError(t, c.AvoidControl(status, NodeAdd))
	assert.ErrorIs(t, c.AvoidControl(status, NodeAdd), wmerr.ErrInvalidParam)
	assert.Len(t, c.AvoidAreaByType(AreaCutout), 4)
}
