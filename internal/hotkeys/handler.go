package hotkeys

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/winstack/internal/daemon"
	"github.com/1broseidon/winstack/internal/layout"
	"github.com/1broseidon/winstack/internal/platform"
)

// Actions are the engine operations bound to keys.
type Actions interface {
	Status(ctx context.Context) ([]daemon.DisplayStatus, error)
	CycleLayout(ctx context.Context, displayID platform.DisplayID) (layout.Mode, error)
	FocusNext(ctx context.Context, displayID platform.DisplayID) (uint32, error)
}

var _ Actions = (*daemon.Engine)(nil)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	actions Actions
	logger  *slog.Logger
	timeout time.Duration
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, actions Actions, logger *slog.Logger) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		xu:      xu,
		root:    root,
		actions: actions,
		logger:  logger.With("component", "hotkeys"),
		timeout: 2 * time.Second,
	}
}

// RegisterCycleLayout binds keySequence to toggling the layout mode of the
// display holding focus.
func (h *Handler) RegisterCycleLayout(keySequence string) error {
	if err := h.RegisterFunc(keySequence, h.cycleLayout); err != nil {
		return fmt.Errorf("failed to register cycle-layout hotkey %q: %w", keySequence, err)
	}
	return nil
}

// RegisterFocusNext binds keySequence to focusing the next window down the
// stack.
func (h *Handler) RegisterFocusNext(keySequence string) error {
	if err := h.RegisterFunc(keySequence, h.focusNext); err != nil {
		return fmt.Errorf("failed to register focus-next hotkey %q: %w", keySequence, err)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	if h.xu == nil {
		return fmt.Errorf("hotkeys need an X11 backend")
	}
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func (h *Handler) cycleLayout() {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	displayID, ok := h.currentDisplay(ctx)
	if !ok {
		return
	}
	mode, err := h.actions.CycleLayout(ctx, displayID)
	if err != nil {
		h.logger.Warn("cycle layout failed", "display", displayID, "error", err)
		return
	}
	h.logger.Info("layout cycled", "display", displayID, "mode", mode)
}

func (h *Handler) focusNext() {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	displayID, ok := h.currentDisplay(ctx)
	if !ok {
		return
	}
	id, err := h.actions.FocusNext(ctx, displayID)
	if err != nil {
		h.logger.Warn("focus next failed", "display", displayID, "error", err)
		return
	}
	h.logger.Debug("focus moved", "display", displayID, "window", id)
}

// currentDisplay picks the display with a focused window, else the first.
func (h *Handler) currentDisplay(ctx context.Context) (platform.DisplayID, bool) {
	displays, err := h.actions.Status(ctx)
	if err != nil {
		h.logger.Warn("status failed", "error", err)
		return 0, false
	}
	if len(displays) == 0 {
		return 0, false
	}
	for _, d := range displays {
		if d.Focused != 0 {
			return d.ID, true
		}
	}
	return displays[0].ID, true
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
