package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Layout holds the layout-policy tunables.
type Layout struct {
	DefaultMode     string  `yaml:"default_mode"` // cascade | tile
	CascadeOffset   int     `yaml:"cascade_offset"`
	CascadeRatio    float64 `yaml:"cascade_ratio"`
	SplitRatio      float64 `yaml:"split_ratio"`
	DividerWidth    int     `yaml:"divider_width"`
	MaxTileWindows  int     `yaml:"max_tile_windows"` // 0 = derive from display width
	TileGap         int     `yaml:"tile_gap"`
	TileArrangement string  `yaml:"tile_arrangement"` // grid | columns | rows | master_stack
}

// Window holds decoration and size limits. Sizes marked vp are virtual
// pixels and scale with the display density.
type Window struct {
	DecorEnable       bool    `yaml:"decor_enable"`
	FrameWidth        int     `yaml:"frame_width"`  // vp
	TitleHeight       int     `yaml:"title_height"` // vp
	MinWidth          int     `yaml:"min_width"`    // vp
	MinHeight         int     `yaml:"min_height"`   // vp
	MaxWidth          int     `yaml:"max_width"`    // 0 = display size
	MaxHeight         int     `yaml:"max_height"`
	VirtualPixelRatio float64 `yaml:"virtual_pixel_ratio"` // 0 = derive from DPI
}

// Animation configures attach/detach transitions.
type Animation struct {
	Enabled    bool `yaml:"enabled"`
	DurationMS int  `yaml:"duration_ms"`
}

// Duration returns the transition length.
func (a Animation) Duration() time.Duration {
	return time.Duration(a.DurationMS) * time.Millisecond
}

// HotZones are the widths of the drag targets that switch window mode.
type HotZones struct {
	Fullscreen int
	Primary    int
	Secondary  int
}

// MarshalYAML writes the zones as a three element list.
func (h HotZones) MarshalYAML() (any, error) {
	return []int{h.Fullscreen, h.Primary, h.Secondary}, nil
}

// LoggingConfig configures the process logger and the notification audit
// log.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// Format is text, json or logfmt.
	Format string `yaml:"format"`
	// AuditFile receives every listener notification as a JSON line. Empty
	// disables the audit log.
	AuditFile string `yaml:"audit_file"`
	// AuditKinds limits the audit log to these notification kinds.
	AuditKinds []string `yaml:"audit_kinds,omitempty"`
	// MaxSizeMB is the maximum audit file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files"`
}

// API configures the HTTP read API.
type API struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Daemon configures the background loops.
type Daemon struct {
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

// Hotkeys are X11 key sequences in xgbutil keybind syntax.
type Hotkeys struct {
	CycleLayout string `yaml:"cycle_layout"`
	FocusNext   string `yaml:"focus_next"`
}

// Config is the effective winstack configuration.
type Config struct {
	Layout             Layout        `yaml:"layout"`
	Window             Window        `yaml:"window"`
	Animation          Animation     `yaml:"animation"`
	MinimizeByOther    bool          `yaml:"minimize_by_other"`
	MaxAppWindowNumber int           `yaml:"max_app_window_number"`
	ModeChangeHotZones HotZones      `yaml:"mode_change_hot_zones"`
	Logging            LoggingConfig `yaml:"logging"`
	API                API           `yaml:"api"`
	Daemon             Daemon        `yaml:"daemon"`
	Hotkeys            Hotkeys       `yaml:"hotkeys"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Layout: Layout{
			DefaultMode:     "cascade",
			CascadeOffset:   48,
			CascadeRatio:    0.35,
			SplitRatio:      0.5,
			DividerWidth:    8,
			TileArrangement: "grid",
		},
		Window: Window{
			DecorEnable: true,
			FrameWidth:  4,
			TitleHeight: 48,
			MinWidth:    100,
			MinHeight:   100,
		},
		Animation: Animation{
			Enabled:    true,
			DurationMS: 350,
		},
		MinimizeByOther:    true,
		MaxAppWindowNumber: 100,
		ModeChangeHotZones: HotZones{Fullscreen: 50, Primary: 50, Secondary: 50},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
		API: API{
			Listen: "127.0.0.1:7878",
		},
		Daemon: Daemon{
			ReconcileInterval: 2 * time.Second,
		},
		Hotkeys: Hotkeys{
			CycleLayout: "Mod4-backslash",
			FocusNext:   "Mod4-Tab",
		},
	}
}

// Save writes the configuration to path, creating its directory.
//
// Note: this marshals the effective config; comments are lost and drop-in
// values are folded into the main file.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Layout.DefaultMode {
	case "cascade", "tile":
	default:
		return &ValidationError{Path: "layout.default_mode", Err: fmt.Errorf("default_mode must be one of: cascade, tile")}
	}
	if c.Layout.CascadeOffset < 0 {
		return &ValidationError{Path: "layout.cascade_offset", Err: fmt.Errorf("cascade_offset must be >= 0")}
	}
	if c.Layout.CascadeRatio <= 0 || c.Layout.CascadeRatio > 1 {
		return &ValidationError{Path: "layout.cascade_ratio", Err: fmt.Errorf("cascade_ratio must be in (0, 1]")}
	}
	if c.Layout.SplitRatio <= 0 || c.Layout.SplitRatio >= 1 {
		return &ValidationError{Path: "layout.split_ratio", Err: fmt.Errorf("split_ratio must be in (0, 1)")}
	}
	if c.Layout.DividerWidth < 0 {
		return &ValidationError{Path: "layout.divider_width", Err: fmt.Errorf("divider_width must be >= 0")}
	}
	if c.Layout.MaxTileWindows < 0 {
		return &ValidationError{Path: "layout.max_tile_windows", Err: fmt.Errorf("max_tile_windows must be >= 0")}
	}
	if c.Layout.TileGap < 0 {
		return &ValidationError{Path: "layout.tile_gap", Err: fmt.Errorf("tile_gap must be >= 0")}
	}
	switch c.Layout.TileArrangement {
	case "grid", "columns", "rows", "master_stack":
	default:
		return &ValidationError{Path: "layout.tile_arrangement", Err: fmt.Errorf("tile_arrangement must be one of: grid, columns, rows, master_stack")}
	}

	w := c.Window
	if w.FrameWidth < 0 || w.TitleHeight < 0 {
		return &ValidationError{Path: "window", Err: fmt.Errorf("frame_width and title_height must be >= 0")}
	}
	if w.MinWidth < 0 || w.MinHeight < 0 {
		return &ValidationError{Path: "window", Err: fmt.Errorf("min_width and min_height must be >= 0")}
	}
	if w.MaxWidth < 0 || w.MaxHeight < 0 {
		return &ValidationError{Path: "window", Err: fmt.Errorf("max_width and max_height must be >= 0")}
	}
	if w.MaxWidth > 0 && w.MaxWidth < w.MinWidth {
		return &ValidationError{Path: "window.max_width", Err: fmt.Errorf("max_width must be >= min_width")}
	}
	if w.MaxHeight > 0 && w.MaxHeight < w.MinHeight {
		return &ValidationError{Path: "window.max_height", Err: fmt.Errorf("max_height must be >= min_height")}
	}
	if w.VirtualPixelRatio < 0 {
		return &ValidationError{Path: "window.virtual_pixel_ratio", Err: fmt.Errorf("virtual_pixel_ratio must be >= 0")}
	}

	if c.Animation.DurationMS < 0 {
		return &ValidationError{Path: "animation.duration_ms", Err: fmt.Errorf("duration_ms must be >= 0")}
	}
	if c.MaxAppWindowNumber <= 0 {
		return &ValidationError{Path: "max_app_window_number", Err: fmt.Errorf("max_app_window_number must be > 0")}
	}
	hz := c.ModeChangeHotZones
	if hz.Fullscreen < 0 || hz.Primary < 0 || hz.Secondary < 0 {
		return &ValidationError{Path: "mode_change_hot_zones", Err: fmt.Errorf("hot zone ranges must be >= 0")}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "text", "json", "logfmt":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: text, json, logfmt")}
	}
	if c.Logging.MaxSizeMB <= 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be > 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}

	if c.API.Enabled && strings.TrimSpace(c.API.Listen) == "" {
		return &ValidationError{Path: "api.listen", Err: fmt.Errorf("listen is required when the api is enabled")}
	}
	if c.Daemon.ReconcileInterval < 100*time.Millisecond {
		return &ValidationError{Path: "daemon.reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 100ms")}
	}
	return nil
}
