package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config when the main file or a drop-in changes on
// disk. Directories are watched rather than files so editors that replace
// the file on save are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(*Config)
	logger   *slog.Logger
}

// NewWatcher calls onChange with every successfully reloaded config. Invalid
// files are logged and ignored.
func NewWatcher(path string, onChange func(*Config), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		debounce: 200 * time.Millisecond,
		onChange: onChange,
		logger:   logger.With("component", "config-watcher"),
	}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	dropIns := DropInDir(w.path)
	if err := fw.Add(dropIns); err != nil {
		w.logger.Debug("drop-in directory not watched", "dir", dropIns, "error", err)
	}
	w.logger.Info("watching config", "path", w.path)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev.Name) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			w.logger.Debug("config change detected", "op", ev.Op.String(), "file", ev.Name)
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		case <-timer.C:
			w.reload()
		}
	}
}

// relevant reports whether name is the main file or a drop-in fragment.
func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	if name == filepath.Clean(w.path) {
		return true
	}
	return filepath.Dir(name) == DropInDir(w.path) && isYAMLName(filepath.Base(name))
}

func (w *Watcher) reload() {
	res, err := LoadFromPath(w.path)
	if err != nil {
		w.logger.Warn("failed to reload config", "error", err)
		return
	}
	w.logger.Info("config reloaded", "files", len(res.Files))
	if w.onChange != nil {
		w.onChange(res.Config)
	}
}
