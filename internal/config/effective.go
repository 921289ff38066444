package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw over the defaults. It checks shapes only;
// value ranges are left to Validate.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if l := raw.Layout; l != nil {
		if l.DefaultMode != nil {
			cfg.Layout.DefaultMode = strings.ToLower(strings.TrimSpace(*l.DefaultMode))
		}
		cfg.Layout.CascadeOffset = derefInt(l.CascadeOffset, cfg.Layout.CascadeOffset)
		cfg.Layout.CascadeRatio = derefFloat(l.CascadeRatio, cfg.Layout.CascadeRatio)
		cfg.Layout.SplitRatio = derefFloat(l.SplitRatio, cfg.Layout.SplitRatio)
		cfg.Layout.DividerWidth = derefInt(l.DividerWidth, cfg.Layout.DividerWidth)
		cfg.Layout.MaxTileWindows = derefInt(l.MaxTileWindows, cfg.Layout.MaxTileWindows)
		cfg.Layout.TileGap = derefInt(l.TileGap, cfg.Layout.TileGap)
		if l.TileArrangement != nil {
			cfg.Layout.TileArrangement = strings.ToLower(strings.TrimSpace(*l.TileArrangement))
		}
	}

	if w := raw.Window; w != nil {
		if w.DecorEnable != nil {
			cfg.Window.DecorEnable = *w.DecorEnable
		}
		cfg.Window.FrameWidth = derefInt(w.FrameWidth, cfg.Window.FrameWidth)
		cfg.Window.TitleHeight = derefInt(w.TitleHeight, cfg.Window.TitleHeight)
		cfg.Window.MinWidth = derefInt(w.MinWidth, cfg.Window.MinWidth)
		cfg.Window.MinHeight = derefInt(w.MinHeight, cfg.Window.MinHeight)
		cfg.Window.MaxWidth = derefInt(w.MaxWidth, cfg.Window.MaxWidth)
		cfg.Window.MaxHeight = derefInt(w.MaxHeight, cfg.Window.MaxHeight)
		cfg.Window.VirtualPixelRatio = derefFloat(w.VirtualPixelRatio, cfg.Window.VirtualPixelRatio)
	}

	if a := raw.Animation; a != nil {
		if a.Enabled != nil {
			cfg.Animation.Enabled = *a.Enabled
		}
		cfg.Animation.DurationMS = derefInt(a.DurationMS, cfg.Animation.DurationMS)
	}

	if raw.MinimizeByOther != nil {
		cfg.MinimizeByOther = *raw.MinimizeByOther
	}
	cfg.MaxAppWindowNumber = derefInt(raw.MaxAppWindowNumber, cfg.MaxAppWindowNumber)

	if raw.ModeChangeHotZones != nil {
		if len(raw.ModeChangeHotZones) != 3 {
			return nil, &ValidationError{Path: "mode_change_hot_zones", Err: fmt.Errorf("expected 3 values (fullscreen, primary, secondary), got %d", len(raw.ModeChangeHotZones))}
		}
		cfg.ModeChangeHotZones = HotZones{
			Fullscreen: raw.ModeChangeHotZones[0],
			Primary:    raw.ModeChangeHotZones[1],
			Secondary:  raw.ModeChangeHotZones[2],
		}
	}

	if l := raw.Logging; l != nil {
		if l.Level != nil {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*l.Level))
		}
		if l.Format != nil {
			cfg.Logging.Format = strings.ToLower(strings.TrimSpace(*l.Format))
		}
		if l.AuditFile != nil {
			cfg.Logging.AuditFile = strings.TrimSpace(*l.AuditFile)
		}
		if l.AuditKinds != nil {
			cfg.Logging.AuditKinds = append([]string(nil), l.AuditKinds...)
		}
		cfg.Logging.MaxSizeMB = derefInt(l.MaxSizeMB, cfg.Logging.MaxSizeMB)
		cfg.Logging.MaxFiles = derefInt(l.MaxFiles, cfg.Logging.MaxFiles)
	}

	if a := raw.API; a != nil {
		if a.Enabled != nil {
			cfg.API.Enabled = *a.Enabled
		}
		if a.Listen != nil {
			cfg.API.Listen = strings.TrimSpace(*a.Listen)
		}
	}

	if d := raw.Daemon; d != nil && d.ReconcileInterval != nil {
		cfg.Daemon.ReconcileInterval = *d.ReconcileInterval
	}

	if h := raw.Hotkeys; h != nil {
		if h.CycleLayout != nil {
			cfg.Hotkeys.CycleLayout = strings.TrimSpace(*h.CycleLayout)
		}
		if h.FocusNext != nil {
			cfg.Hotkeys.FocusNext = strings.TrimSpace(*h.FocusNext)
		}
	}

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
