package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/winstack/internal/agent"
	"github.com/1broseidon/winstack/internal/api"
	"github.com/1broseidon/winstack/internal/config"
	"github.com/1broseidon/winstack/internal/daemon"
	"github.com/1broseidon/winstack/internal/hotkeys"
	"github.com/1broseidon/winstack/internal/ipc"
	"github.com/1broseidon/winstack/internal/logging"
	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/runtimepath"
)

func newDaemonCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the window stacking daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			format, _ := cmd.Flags().GetString("log-format")
			return runDaemon(cmd.Context(), path, logging.Options{Level: level, Format: format})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "config file path (default: ~/.config/winstack/config.yaml)")
	return cmd
}

// loadConfig reads path, or the default location when path is empty, and
// returns the file the watcher should follow.
func loadConfig(path string) (*config.LoadResult, string, error) {
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return nil, "", err
		}
		res, err := config.LoadWithSources()
		return res, path, err
	}
	res, err := config.LoadFromPath(path)
	return res, path, err
}

func runDaemon(ctx context.Context, path string, flags logging.Options) error {
	res, path, err := loadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Prefix: "winstack"}
	if flags.Level != "" {
		opts.Level = flags.Level
	}
	if flags.Format != "" {
		opts.Format = flags.Format
	}
	logger, err := logging.New(os.Stderr, opts)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", "files", len(res.Files), "mode", cfg.Layout.DefaultMode)

	releasePID, err := runtimepath.WritePID()
	if err != nil {
		return err
	}
	defer releasePID()

	audit, err := newAuditLog(cfg.Logging)
	if err != nil {
		return err
	}
	defer audit.Close()

	backend, err := platform.NewLinuxBackendFromDisplay(logger)
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()
	backend.SetTransitionDuration(cfg.Animation.Duration())

	settings, err := settingsFromConfig(cfg)
	if err != nil {
		return err
	}
	engine := daemon.NewEngine(daemon.EngineDeps{
		Compositor:     backend,
		DisplayService: backend,
		Power:          backend,
		Settings:       settings,
		Logger:         logger,
	})
	auditID := engine.Agent().Register(audit.Listener())
	defer engine.Agent().Unregister(auditID)

	stateSync := daemon.NewStateSynchronizer(engine, backend, logger)
	stateSync.SetDecorate(cfg.Window.DecorEnable)
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: cfg.Daemon.ReconcileInterval,
		Logger:   logger,
	}, stateSync, backend.ListWindows)

	apply := func(ctx context.Context, next *config.Config) error {
		s, err := settingsFromConfig(next)
		if err != nil {
			return err
		}
		if err := engine.ApplySettings(ctx, s); err != nil {
			return err
		}
		stateSync.SetDecorate(next.Window.DecorEnable)
		backend.SetTransitionDuration(next.Animation.Duration())
		reconciler.Trigger()
		return nil
	}
	reload := func(ctx context.Context) error {
		next, _, err := loadConfig(path)
		if err != nil {
			return err
		}
		return apply(ctx, next.Config)
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return err
	}
	ipcServer := ipc.NewServer(socketPath, engine, reload, logger)
	if err := ipcServer.Start(); err != nil {
		return err
	}
	defer ipcServer.Stop()

	registerHotkeys(hotkeys.NewHandler(backend, engine, logger), cfg.Hotkeys, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return engine.Run(gctx) })
	g.Go(func() error { return reconciler.Run(gctx) })
	if cfg.API.Enabled {
		apiServer := api.NewServer(engine, cfg.API.Listen, logger)
		g.Go(func() error { return apiServer.Run(gctx) })
	}
	g.Go(func() error {
		watcher := config.NewWatcher(path, func(next *config.Config) {
			if err := apply(gctx, next); err != nil {
				logger.Warn("config apply failed", "error", err)
			}
		}, logger)
		if err := watcher.Run(gctx); err != nil {
			logger.Warn("config hot reload disabled", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				if err := reload(gctx); err != nil {
					logger.Warn("config reload failed", "error", err)
				}
			}
		}
	})
	g.Go(func() error {
		backend.EventLoop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		backend.StopEventLoop()
		return nil
	})

	logger.Info("winstack daemon started", "socket", socketPath)
	err = g.Wait()
	logger.Info("shutting down winstack daemon")
	return err
}

func newAuditLog(cfg config.LoggingConfig) (*agent.AuditLog, error) {
	kinds, err := agent.ParseKinds(strings.Join(cfg.AuditKinds, ","))
	if err != nil {
		return nil, fmt.Errorf("logging.audit_kinds: %w", err)
	}
	return agent.NewAuditLog(agent.AuditConfig{
		Enabled:   cfg.AuditFile != "",
		FilePath:  cfg.AuditFile,
		MaxSizeMB: cfg.MaxSizeMB,
		MaxFiles:  cfg.MaxFiles,
		Kinds:     kinds,
	})
}

func registerHotkeys(h *hotkeys.Handler, keys config.Hotkeys, logger *slog.Logger) {
	if keys.CycleLayout != "" {
		if err := h.RegisterCycleLayout(keys.CycleLayout); err != nil {
			logger.Warn("failed to register cycle_layout hotkey", "error", err)
		}
	}
	if keys.FocusNext != "" {
		if err := h.RegisterFocusNext(keys.FocusNext); err != nil {
			logger.Warn("failed to register focus_next hotkey", "error", err)
		}
	}
}
