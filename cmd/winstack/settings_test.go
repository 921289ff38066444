package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/winstack/internal/config"
	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/layout"
)

func TestSettingsFromDefaultConfig(t *testing.T) {
	s, err := settingsFromConfig(config.DefaultConfig())
	require.NoError(t, err)

	want := container.DefaultSettings()
	assert.Equal(t, want, s)
}

func TestSettingsFromConfigOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Layout.DefaultMode = "tile"
	cfg.Layout.TileArrangement = "master_stack"
	cfg.Layout.TileGap = 6
	cfg.Window.VirtualPixelRatio = 1.5
	cfg.Animation.Enabled = false
	cfg.MaxAppWindowNumber = 4
	cfg.ModeChangeHotZones = config.HotZones{Fullscreen: 10, Primary: 20, Secondary: 30}

	s, err := settingsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, layout.ModeTile, s.DefaultMode)
	assert.Equal(t, layout.ArrangeMasterStack, s.Layout.TileArrangement)
	assert.Equal(t, 6, s.Layout.TileGap)
	assert.Equal(t, 1.5, s.Layout.VirtualPixelRatio)
	assert.False(t, s.AnimationEnabled)
	assert.Equal(t, 4, s.MaxAppWindows)
	assert.Equal(t, container.HotZonesConfig{FullscreenRange: 10, PrimaryRange: 20, SecondaryRange: 30}, s.HotZones)
}

func TestSettingsFromConfigRejectsUnknownNames(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Layout.DefaultMode = "spiral"
	_, err := settingsFromConfig(cfg)
	assert.ErrorContains(t, err, "layout.default_mode")

	cfg = config.DefaultConfig()
	cfg.Layout.TileArrangement = "hex"
	_, err = settingsFromConfig(cfg)
	assert.ErrorContains(t, err, "layout.tile_arrangement")
}
