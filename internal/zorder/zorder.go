// Package zorder maps window types to stacking priorities.
package zorder

import "github.com/1broseidon/winstack/internal/window"

var priorities = map[window.Type]int32{
	// sub-windows
	window.TypeMedia:  -1,
	window.TypeAppSub: 1,

	window.TypeAppMain: 0,

	window.TypeWallpaper:        101,
	window.TypeAppLaunching:     102,
	window.TypeDockSlice:        0,
	window.TypeIncomingCall:     104,
	window.TypeSearchingBar:     105,
	window.TypeSystemAlarm:      106,
	window.TypeInputMethodFloat: 107,
	window.TypeFloat:            108,
	window.TypeToast:            109,
	window.TypeStatusBar:        110,
	window.TypePanel:            111,
	window.TypeKeyguard:         112,
	window.TypeVolumeOverlay:    113,
	window.TypeNavigationBar:    114,
	window.TypeDraggingEffect:   115,
	window.TypePointer:          116,
}

// Policy answers stacking priority queries. The zero value is ready to use.
type Policy struct{}

// Priority returns the base priority for t; types without an entry stack at 0.
func (Policy) Priority(t window.Type) int32 {
	return priorities[t]
}

// Priority is Policy{}.Priority.
func Priority(t window.Type) int32 {
	return priorities[t]
}

// IsAboveSystemBars reports whether t stacks above both the status and the
// navigation bar.
func IsAboveSystemBars(t window.Type) bool {
	p := priorities[t]
	return p > priorities[window.TypeStatusBar] && p > priorities[window.TypeNavigationBar]
}
