package main

import (
	"fmt"

	"github.com/1broseidon/winstack/internal/config"
	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/layout"
)

// settingsFromConfig translates the effective config into engine settings.
func settingsFromConfig(cfg *config.Config) (container.Settings, error) {
	mode, err := layout.ParseMode(cfg.Layout.DefaultMode)
	if err != nil {
		return container.Settings{}, fmt.Errorf("layout.default_mode: %w", err)
	}
	arrangement, err := layout.ParseArrangement(cfg.Layout.TileArrangement)
	if err != nil {
		return container.Settings{}, fmt.Errorf("layout.tile_arrangement: %w", err)
	}

	return container.Settings{
		Layout: layout.Settings{
			CascadeOffset:     cfg.Layout.CascadeOffset,
			CascadeRatio:      cfg.Layout.CascadeRatio,
			SplitRatio:        cfg.Layout.SplitRatio,
			DividerWidth:      cfg.Layout.DividerWidth,
			FrameWidth:        cfg.Window.FrameWidth,
			TitleHeight:       cfg.Window.TitleHeight,
			MinWidth:          cfg.Window.MinWidth,
			MinHeight:         cfg.Window.MinHeight,
			MaxWidth:          cfg.Window.MaxWidth,
			MaxHeight:         cfg.Window.MaxHeight,
			VirtualPixelRatio: cfg.Window.VirtualPixelRatio,
			MaxTileWindows:    cfg.Layout.MaxTileWindows,
			TileGap:           cfg.Layout.TileGap,
			TileArrangement:   arrangement,
		},
		DefaultMode:      mode,
		AnimationEnabled: cfg.Animation.Enabled,
		MinimizeByOther:  cfg.MinimizeByOther,
		HotZones: container.HotZonesConfig{
			FullscreenRange: cfg.ModeChangeHotZones.Fullscreen,
			PrimaryRange:    cfg.ModeChangeHotZones.Primary,
			SecondaryRange:  cfg.ModeChangeHotZones.Secondary,
		},
		MaxAppWindows: cfg.MaxAppWindowNumber,
	}, nil
}
