package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAnimatedAttachDoesNotBlock(t *testing.T) {
	m := NewMemory()
	m.SetTransitionDuration(50 * time.Millisecond)

	start := time.Now()
	require.NoError(t, m.AttachSurface(1, 10, true))
	require.NoError(t, m.DetachSurface(1, 10, true))
	require.NoError(t, m.AttachSurface(1, 10, true))
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	display, ok := m.Attached(10)
	assert.True(t, ok)
	assert.Equal(t, DisplayID(1), display)
	assert.Equal(t, 3, m.Animated())

	m.Transitions().Wait()
	assert.Equal(t, 0, m.Transitions().InFlight())
}

func TestMemoryBrightness(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.OverrideBrightness(128))
	level, on := m.Brightness()
	assert.True(t, on)
	assert.Equal(t, uint32(128), level)

	require.NoError(t, m.RestoreBrightness())
	_, on = m.Brightness()
	assert.False(t, on)
}
