package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/winstack/internal/platform"
)

// WindowLister returns the current platform windows, bottom first.
type WindowLister func() ([]platform.Window, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for drift between the platform and the
// engine and corrects it.
type Reconciler struct {
	interval    time.Duration
	sync        *StateSynchronizer
	listWindows WindowLister
	logger      *slog.Logger
	trigger     chan struct{}
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, sync *StateSynchronizer, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		sync:        sync,
		listWindows: listWindows,
		logger:      logger.With("component", "reconciler"),
		trigger:     make(chan struct{}, 1),
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)
	r.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return nil
		case <-ticker.C:
			r.reconcile(ctx)
		case <-r.trigger:
			r.reconcile(ctx)
		}
	}
}

// Trigger asks the running loop for an early pass.
func (r *Reconciler) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	if err := r.sync.SyncDisplays(ctx); err != nil {
		r.logger.Error("reconciler: failed to sync displays", "error", err)
		return
	}

	windows, err := r.listWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return
	}
	if err := r.sync.SyncWindows(ctx, windows); err != nil {
		r.logger.Error("reconciler: failed to sync windows", "error", err)
		return
	}
	if err := r.sync.SyncFocus(ctx); err != nil {
		r.logger.Warn("reconciler: failed to sync focus", "error", err)
	}
}

// ReconcileNow runs a pass on the calling goroutine. It must not race with
// Run.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.reconcile(ctx)
}
