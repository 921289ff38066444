package zorder

import (
	"testing"

	"github.com/1broseidon/winstack/internal/window"
	"github.com/stretchr/testify/assert"
)

func TestOverlayOrderIsStrictlyIncreasing(t *testing.T) {
	order := []window.Type{
		window.TypeWallpaper,
		window.TypeAppLaunching,
		window.TypeIncomingCall,
		window.TypeSearchingBar,
		window.TypeSystemAlarm,
		window.TypeInputMethodFloat,
		window.TypeFloat,
		window.TypeToast,
		window.TypeStatusBar,
		window.TypePanel,
		window.TypeKeyguard,
		window.TypeVolumeOverlay,
		window.TypeNavigationBar,
		window.TypeDraggingEffect,
		window.TypePointer,
	}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, Priority(order[i]), Priority(order[i-1]), "%s above %s", order[i], order[i-1])
	}
}

func TestSingleNegativeEntry(t *testing.T) {
	negative := 0
	for typ, p := range priorities {
		if p < 0 {
			negative++
			assert.Equal(t, window.TypeMedia, typ)
		}
	}
	assert.Equal(t, 1, negative)
}

func TestAppAndDividerAtZero(t *testing.T) {
	assert.Equal(t, int32(0), Priority(window.TypeAppMain))
	assert.Equal(t, int32(0), Priority(window.TypeDockSlice))
	assert.Equal(t, int32(1), Priority(window.TypeAppSub))
	assert.Equal(t, int32(0), Priority(window.TypeDesktop))
}

func TestIsAboveSystemBars(t *testing.T) {
	assert.True(t, IsAboveSystemBars(window.TypePointer))
	assert.True(t, IsAboveSystemBars(window.TypeDraggingEffect))
	assert.False(t, IsAboveSystemBars(window.TypeKeyguard))
	assert.False(t, IsAboveSystemBars(window.TypeAppMain))
}
