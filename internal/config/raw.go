package config

import "time"

type RawLayout struct {
	DefaultMode     *string  `yaml:"default_mode"`
	CascadeOffset   *int     `yaml:"cascade_offset"`
	CascadeRatio    *float64 `yaml:"cascade_ratio"`
	SplitRatio      *float64 `yaml:"split_ratio"`
	DividerWidth    *int     `yaml:"divider_width"`
	MaxTileWindows  *int     `yaml:"max_tile_windows"`
	TileGap         *int     `yaml:"tile_gap"`
	TileArrangement *string  `yaml:"tile_arrangement"`
}

type RawWindow struct {
	DecorEnable       *bool    `yaml:"decor_enable"`
	FrameWidth        *int     `yaml:"frame_width"`
	TitleHeight       *int     `yaml:"title_height"`
	MinWidth          *int     `yaml:"min_width"`
	MinHeight         *int     `yaml:"min_height"`
	MaxWidth          *int     `yaml:"max_width"`
	MaxHeight         *int     `yaml:"max_height"`
	VirtualPixelRatio *float64 `yaml:"virtual_pixel_ratio"`
}

type RawAnimation struct {
	Enabled    *bool `yaml:"enabled"`
	DurationMS *int  `yaml:"duration_ms"`
}

type RawLoggingConfig struct {
	Level      *string  `yaml:"level"`
	Format     *string  `yaml:"format"`
	AuditFile  *string  `yaml:"audit_file"`
	AuditKinds []string `yaml:"audit_kinds"`
	MaxSizeMB  *int     `yaml:"max_size_mb"`
	MaxFiles   *int     `yaml:"max_files"`
}

type RawAPI struct {
	Enabled *bool   `yaml:"enabled"`
	Listen  *string `yaml:"listen"`
}

type RawDaemon struct {
	ReconcileInterval *time.Duration `yaml:"reconcile_interval"`
}

type RawHotkeys struct {
	CycleLayout *string `yaml:"cycle_layout"`
	FocusNext   *string `yaml:"focus_next"`
}

type RawConfig struct {
	Layout             *RawLayout        `yaml:"layout"`
	Window             *RawWindow        `yaml:"window"`
	Animation          *RawAnimation     `yaml:"animation"`
	MinimizeByOther    *bool             `yaml:"minimize_by_other"`
	MaxAppWindowNumber *int              `yaml:"max_app_window_number"`
	ModeChangeHotZones []int             `yaml:"mode_change_hot_zones"`
	Logging            *RawLoggingConfig `yaml:"logging"`
	API                *RawAPI           `yaml:"api"`
	Daemon             *RawDaemon        `yaml:"daemon"`
	Hotkeys            *RawHotkeys       `yaml:"hotkeys"`
}

// merge applies overlay on top of c; fields set in overlay win.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Layout != nil {
		base := RawLayout{}
		if out.Layout != nil {
			base = *out.Layout
		}
		merged := mergeRawLayout(base, *overlay.Layout)
		out.Layout = &merged
	}
	if overlay.Window != nil {
		base := RawWindow{}
		if out.Window != nil {
			base = *out.Window
		}
		merged := mergeRawWindow(base, *overlay.Window)
		out.Window = &merged
	}
	if overlay.Animation != nil {
		base := RawAnimation{}
		if out.Animation != nil {
			base = *out.Animation
		}
		mergePtr(&base.Enabled, overlay.Animation.Enabled)
		mergePtr(&base.DurationMS, overlay.Animation.DurationMS)
		out.Animation = &base
	}
	mergePtr(&out.MinimizeByOther, overlay.MinimizeByOther)
	mergePtr(&out.MaxAppWindowNumber, overlay.MaxAppWindowNumber)
	if overlay.ModeChangeHotZones != nil {
		out.ModeChangeHotZones = append([]int(nil), overlay.ModeChangeHotZones...)
	}
	if overlay.Logging != nil {
		base := RawLoggingConfig{}
		if out.Logging != nil {
			base = *out.Logging
		}
		mergePtr(&base.Level, overlay.Logging.Level)
		mergePtr(&base.Format, overlay.Logging.Format)
		mergePtr(&base.AuditFile, overlay.Logging.AuditFile)
		if overlay.Logging.AuditKinds != nil {
			base.AuditKinds = append([]string(nil), overlay.Logging.AuditKinds...)
		}
		mergePtr(&base.MaxSizeMB, overlay.Logging.MaxSizeMB)
		mergePtr(&base.MaxFiles, overlay.Logging.MaxFiles)
		out.Logging = &base
	}
	if overlay.API != nil {
		base := RawAPI{}
		if out.API != nil {
			base = *out.API
		}
		mergePtr(&base.Enabled, overlay.API.Enabled)
		mergePtr(&base.Listen, overlay.API.Listen)
		out.API = &base
	}
	if overlay.Daemon != nil {
		base := RawDaemon{}
		if out.Daemon != nil {
			base = *out.Daemon
		}
		mergePtr(&base.ReconcileInterval, overlay.Daemon.ReconcileInterval)
		out.Daemon = &base
	}
	if overlay.Hotkeys != nil {
		base := RawHotkeys{}
		if out.Hotkeys != nil {
			base = *out.Hotkeys
		}
		mergePtr(&base.CycleLayout, overlay.Hotkeys.CycleLayout)
		mergePtr(&base.FocusNext, overlay.Hotkeys.FocusNext)
		out.Hotkeys = &base
	}

	return out
}

func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

func mergeRawLayout(base RawLayout, overlay RawLayout) RawLayout {
	out := base
	mergePtr(&out.DefaultMode, overlay.DefaultMode)
	mergePtr(&out.CascadeOffset, overlay.CascadeOffset)
	mergePtr(&out.CascadeRatio, overlay.CascadeRatio)
	mergePtr(&out.SplitRatio, overlay.SplitRatio)
	mergePtr(&out.DividerWidth, overlay.DividerWidth)
	mergePtr(&out.MaxTileWindows, overlay.MaxTileWindows)
	mergePtr(&out.TileGap, overlay.TileGap)
	mergePtr(&out.TileArrangement, overlay.TileArrangement)
	return out
}

func mergeRawWindow(base RawWindow, overlay RawWindow) RawWindow {
	out := base
	mergePtr(&out.DecorEnable, overlay.DecorEnable)
	mergePtr(&out.FrameWidth, overlay.FrameWidth)
	mergePtr(&out.TitleHeight, overlay.TitleHeight)
	mergePtr(&out.MinWidth, overlay.MinWidth)
	mergePtr(&out.MinHeight, overlay.MinHeight)
	mergePtr(&out.MaxWidth, overlay.MaxWidth)
	mergePtr(&out.MaxHeight, overlay.MaxHeight)
	mergePtr(&out.VirtualPixelRatio, overlay.VirtualPixelRatio)
	return out
}
