package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "cascade", cfg.Layout.DefaultMode)
	assert.Equal(t, 350*time.Millisecond, cfg.Animation.Duration())
	assert.Equal(t, HotZones{Fullscreen: 50, Primary: 50, Secondary: 50}, cfg.ModeChangeHotZones)
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), res.Config)
	assert.Empty(t, res.Files)
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")
	res, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), res.Config)
	assert.Len(t, res.Files, 1)
}

func TestLoadFromPath_Overrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", strings.Join([]string{
		"layout:",
		"  default_mode: Tile",
		"  split_ratio: 0.4",
		"  tile_arrangement: columns",
		"window:",
		"  decor_enable: false",
		"  min_width: 200",
		"animation: { enabled: false }",
		"mode_change_hot_zones: [10, 20, 30]",
		"daemon:",
		"  reconcile_interval: 500ms",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	require.NoError(t, err)
	cfg := res.Config
	assert.Equal(t, "tile", cfg.Layout.DefaultMode)
	assert.Equal(t, 0.4, cfg.Layout.SplitRatio)
	assert.Equal(t, "columns", cfg.Layout.TileArrangement)
	assert.Equal(t, 0.35, cfg.Layout.CascadeRatio, "untouched keys keep defaults")
	assert.False(t, cfg.Window.DecorEnable)
	assert.Equal(t, 200, cfg.Window.MinWidth)
	assert.Equal(t, 100, cfg.Window.MinHeight)
	assert.False(t, cfg.Animation.Enabled)
	assert.Equal(t, 350, cfg.Animation.DurationMS)
	assert.Equal(t, HotZones{Fullscreen: 10, Primary: 20, Secondary: 30}, cfg.ModeChangeHotZones)
	assert.Equal(t, 500*time.Millisecond, cfg.Daemon.ReconcileInterval)
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "layout:\n  default_mood: tile\n")
	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_mood")
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "layout:\n  split_ratio: 1.5\n")
	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "layout.split_ratio", verr.Path)
	assert.Equal(t, SourceFile, verr.Source.Kind)
	assert.Equal(t, 2, verr.Source.Line)
	assert.Contains(t, err.Error(), "config.yaml:2:")
}

func TestLoadFromPath_HotZonesNeedThreeValues(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "mode_change_hot_zones: [1, 2]\n")
	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mode_change_hot_zones")
}

func TestLoadFromPath_DropInsOverrideInOrder(t *testing.T) {
	dir := t.TempDir()
	dropIns := filepath.Join(dir, DropInDirName)
	require.NoError(t, os.Mkdir(dropIns, 0755))
	writeConfig(t, dropIns, "20-layout.yaml", "layout:\n  cascade_offset: 20\n")
	writeConfig(t, dropIns, "10-layout.yaml", "layout:\n  cascade_offset: 10\n  divider_width: 4\n")
	writeConfig(t, dropIns, "notes.txt", "not yaml")
	path := writeConfig(t, dir, "config.yaml", "layout:\n  divider_width: 6\n  tile_gap: 3\n")

	res, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Config.Layout.CascadeOffset)
	assert.Equal(t, 4, res.Config.Layout.DividerWidth, "drop-ins win over the main file")
	assert.Equal(t, 3, res.Config.Layout.TileGap)
	assert.Equal(t, []string{
		path,
		filepath.Join(dropIns, "10-layout.yaml"),
		filepath.Join(dropIns, "20-layout.yaml"),
	}, res.Files)

	src := res.Sources["layout.cascade_offset"]
	assert.Equal(t, filepath.Join(dropIns, "20-layout.yaml"), src.File)
	assert.Equal(t, 2, src.Line)
}

func TestLoadFromPath_DropInsWithoutMainFile(t *testing.T) {
	dir := t.TempDir()
	dropIns := filepath.Join(dir, DropInDirName)
	require.NoError(t, os.Mkdir(dropIns, 0755))
	writeConfig(t, dropIns, "api.yml", "api:\n  enabled: true\n")

	res, err := LoadFromPath(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.True(t, res.Config.API.Enabled)
	assert.Len(t, res.Files, 1)
}

func TestLoadFromPath_BadDropInNamesFile(t *testing.T) {
	dir := t.TempDir()
	dropIns := filepath.Join(dir, DropInDirName)
	require.NoError(t, os.Mkdir(dropIns, 0755))
	writeConfig(t, dropIns, "bad.yaml", "include: other.yaml\n")

	_, err := LoadFromPath(filepath.Join(dir, "config.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestDefaultConfigPath_Env(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/ws.yaml")
	path, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ws.yaml", path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"mode", func(c *Config) { c.Layout.DefaultMode = "stack" }, "layout.default_mode"},
		{"cascade ratio", func(c *Config) { c.Layout.CascadeRatio = 0 }, "layout.cascade_ratio"},
		{"arrangement", func(c *Config) { c.Layout.TileArrangement = "spiral" }, "layout.tile_arrangement"},
		{"max below min", func(c *Config) { c.Window.MaxWidth = 50 }, "window.max_width"},
		{"window count", func(c *Config) { c.MaxAppWindowNumber = 0 }, "max_app_window_number"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"api listen", func(c *Config) { c.API.Enabled = true; c.API.Listen = " " }, "api.listen"},
		{"interval", func(c *Config) { c.Daemon.ReconcileInterval = time.Millisecond }, "daemon.reconcile_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "layout:\n  default_mode: tile\n")
	res, err := LoadFromPath(path)
	require.NoError(t, err)

	val, src, err := Explain(res, "layout.default_mode")
	require.NoError(t, err)
	assert.Equal(t, "tile", val)
	assert.Equal(t, SourceFile, src.Kind)

	val, src, err = Explain(res, "window.min_width")
	require.NoError(t, err)
	assert.Equal(t, 100, val)
	assert.Equal(t, SourceDefault, src.Kind)

	val, _, err = Explain(res, "mode_change_hot_zones")
	require.NoError(t, err)
	assert.Equal(t, []any{50, 50, 50}, val)

	_, _, err = Explain(res, "layout.nope")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Layout.DefaultMode = "tile"
	cfg.ModeChangeHotZones.Primary = 70
	require.NoError(t, cfg.Save(path))

	res, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, res.Config)
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "layout:\n  default_mode: cascade\n")

	got := make(chan *Config, 4)
	w := NewWatcher(path, func(c *Config) { got <- c }, nil)
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, "config.yaml", "layout:\n  default_mode: tile\n")

	select {
	case cfg := <-got:
		assert.Equal(t, "tile", cfg.Layout.DefaultMode)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload")
	}
	cancel()
	assert.NoError(t, <-done)
}

func TestWatcherRelevant(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(filepath.Join(dir, "config.yaml"), nil, nil)
	assert.True(t, w.relevant(filepath.Join(dir, "config.yaml")))
	assert.True(t, w.relevant(filepath.Join(dir, DropInDirName, "10-api.yaml")))
	assert.False(t, w.relevant(filepath.Join(dir, DropInDirName, ".10-api.yaml.swp")))
	assert.False(t, w.relevant(filepath.Join(dir, "other.yaml")))
}
