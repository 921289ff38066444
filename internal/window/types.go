// Package window holds the data model of the stacking engine: window types,
// modes and flags, the Node record, and the per-display Forest arena.
package window

import "fmt"

// Type classifies a window. Ranges matter: app types, below-app system types
// and above-app system types each occupy their own block.
type Type uint32

const (
	appWindowBase     Type = 1
	appMainWindowBase Type = 1
)

const (
	TypeAppMain Type = appMainWindowBase + iota
	appMainWindowEnd
)

const appSubWindowBase Type = 1000

const (
	TypeMedia Type = appSubWindowBase + iota
	TypeAppSub
	TypeAppComponent
	appSubWindowEnd
)

const appWindowEnd = appSubWindowEnd

const belowAppSystemWindowBase Type = 2000

const (
	TypeWallpaper Type = belowAppSystemWindowBase + iota
	TypeDesktop
	belowAppSystemWindowEnd
)

const aboveAppSystemWindowBase Type = 2100

const (
	TypeAppLaunching Type = aboveAppSystemWindowBase + iota
	TypeDockSlice
	TypeIncomingCall
	TypeSearchingBar
	TypeSystemAlarm
	TypeInputMethodFloat
	TypeFloat
	TypeToast
	TypeStatusBar
	TypePanel
	TypeKeyguard
	TypeVolumeOverlay
	TypeNavigationBar
	TypeDraggingEffect
	TypePointer
	TypeLauncherRecent
	TypeLauncherDock
	TypeBootAnimation
	TypeFreezeDisplay
	aboveAppSystemWindowEnd
)

var typeNames = map[Type]string{
	TypeAppMain:          "app_main",
	TypeMedia:            "media",
	TypeAppSub:           "app_sub",
	TypeAppComponent:     "app_component",
	TypeWallpaper:        "wallpaper",
	TypeDesktop:          "desktop",
	TypeAppLaunching:     "app_launching",
	TypeDockSlice:        "divider",
	TypeIncomingCall:     "incoming_call",
	TypeSearchingBar:     "searching_bar",
	TypeSystemAlarm:      "system_alarm",
	TypeInputMethodFloat: "input_method_float",
	TypeFloat:            "float",
	TypeToast:            "toast",
	TypeStatusBar:        "status_bar",
	TypePanel:            "panel",
	TypeKeyguard:         "keyguard",
	TypeVolumeOverlay:    "volume_overlay",
	TypeNavigationBar:    "navigation_bar",
	TypeDraggingEffect:   "dragging_effect",
	TypePointer:          "pointer",
	TypeLauncherRecent:   "launcher_recent",
	TypeLauncherDock:     "launcher_dock",
	TypeBootAnimation:    "boot_animation",
	TypeFreezeDisplay:    "freeze_display",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", uint32(t))
}

// ParseType resolves a type name as produced by Type.String.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown window type %q", name)
}

func IsAppWindow(t Type) bool     { return t >= appWindowBase && t < appWindowEnd }
func IsMainWindow(t Type) bool    { return t >= appMainWindowBase && t < appMainWindowEnd }
func IsSubWindow(t Type) bool     { return t >= appSubWindowBase && t < appSubWindowEnd }
func IsBelowSystemWindow(t Type) bool {
	return t >= belowAppSystemWindowBase && t < belowAppSystemWindowEnd
}
func IsAboveSystemWindow(t Type) bool {
	return t >= aboveAppSystemWindowBase && t < aboveAppSystemWindowEnd
}
func IsSystemWindow(t Type) bool { return IsBelowSystemWindow(t) || IsAboveSystemWindow(t) }

// IsAvoidAreaWindow reports whether windows of type t carve their region out
// of the usable area of other windows.
func IsAvoidAreaWindow(t Type) bool {
	return t == TypeStatusBar || t == TypeNavigationBar
}

// Mode is the presentation mode of a window.
type Mode uint32

const (
	ModeUndefined      Mode = 0
	ModeFullscreen     Mode = 1
	ModeSplitPrimary   Mode = 100
	ModeSplitSecondary Mode = 101
	ModeFloating       Mode = 102
	ModePip            Mode = 103
)

func (m Mode) String() string {
	switch m {
	case ModeFullscreen:
		return "fullscreen"
	case ModeSplitPrimary:
		return "split_primary"
	case ModeSplitSecondary:
		return "split_secondary"
	case ModeFloating:
		return "floating"
	case ModePip:
		return "pip"
	default:
		return "undefined"
	}
}

// ParseMode resolves a mode name as produced by Mode.String.
func ParseMode(name string) (Mode, error) {
	for _, m := range []Mode{ModeFullscreen, ModeSplitPrimary, ModeSplitSecondary, ModeFloating, ModePip} {
		if m.String() == name {
			return m, nil
		}
	}
	return ModeUndefined, fmt.Errorf("unknown window mode %q", name)
}

// IsSplitMode reports whether m is one of the two split-screen modes.
func IsSplitMode(m Mode) bool {
	return m == ModeSplitPrimary || m == ModeSplitSecondary
}

// Flag is a bitmask of window behaviour flags.
type Flag uint32

const (
	FlagNeedAvoid Flag = 1 << iota
	FlagParentLimit
	FlagShowWhenLocked
)

// UpdateReason says why a window is being re-laid-out.
type UpdateReason uint32

const (
	UpdateAll UpdateReason = iota
	UpdateMode
	UpdateRect
	UpdateFlags
	UpdateWindowType
	needSwitchCascadeEnd
	UpdateOtherProps
	UpdateTransform
)

// IsSwitchCascadeReason reports whether an update for reason forces a main
// window's display back into cascade layout.
func IsSwitchCascadeReason(reason UpdateReason) bool {
	return reason < needSwitchCascadeEnd
}

// SizeChangeReason is reported to clients alongside a new rect.
type SizeChangeReason uint32

const (
	SizeChangeUndefined SizeChangeReason = iota
	SizeChangeMaximize
	SizeChangeRecover
	SizeChangeRotation
	SizeChangeDragStart
	SizeChangeDrag
	SizeChangeDragEnd
	SizeChangeResize
	SizeChangeMove
	SizeChangeHide
)

// State is a client window lifecycle state.
type State uint32

const (
	StateInitial State = iota
	StateCreated
	StateShown
	StateHidden
	StateFrozen
	StateUnfrozen
	StateDestroyed
)

// StateChangeReason says why a bulk state change happens.
type StateChangeReason uint32

const (
	StateChangeNormal StateChangeReason = iota
	StateChangeKeyguard
)

// UpdateType tags accessibility notifications.
type UpdateType uint32

const (
	UpdateAdded UpdateType = iota
	UpdateRemoved
	UpdateFocused
	UpdateBounds
	UpdateActive
	UpdateProperty
)

func (u UpdateType) String() string {
	switch u {
	case UpdateAdded:
		return "added"
	case UpdateRemoved:
		return "removed"
	case UpdateFocused:
		return "focused"
	case UpdateBounds:
		return "bounds"
	case UpdateActive:
		return "active"
	default:
		return "property"
	}
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(b []byte) error {
	var raw uint32
	if _, err := fmt.Sscanf(string(b), "type(%d)", &raw); err == nil {
		*t = Type(raw)
		return nil
	}
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	if string(b) == "undefined" {
		*m = ModeUndefined
		return nil
	}
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
