package window

import "github.com/1broseidon/winstack/internal/platform"

// InvalidID is never assigned to a window.
const InvalidID uint32 = 0

// UndefinedBrightness means the window does not override display brightness.
const UndefinedBrightness float64 = -1

// Client is the window's connection back to its owning application.
type Client interface {
	UpdateWindowRect(rect platform.Rect, decorated bool, reason SizeChangeReason)
	UpdateWindowMode(mode Mode)
	UpdateFocusStatus(focused bool)
	UpdateActiveStatus(active bool)
	UpdateWindowState(state State)
	UpdateAvoidArea(areas []platform.Rect)
	Minimize(fromUser bool) error
}

// SystemBarProperty is what a window asks of a system bar while it is the
// top immersive window.
type SystemBarProperty struct {
	Enable          bool   `json:"enable"`
	BackgroundColor uint32 `json:"background_color"`
	ContentColor    uint32 `json:"content_color"`
}

// DefaultSystemBarProperty is used when no window expresses a preference.
func DefaultSystemBarProperty() SystemBarProperty {
	return SystemBarProperty{Enable: true, BackgroundColor: 0x66000000, ContentColor: 0xffffffff}
}

// SystemBarRegionTint is the last-notified state of one system bar.
type SystemBarRegionTint struct {
	Type   Type              `json:"type"`
	Prop   SystemBarProperty `json:"prop"`
	Region platform.Rect     `json:"region"`
}

// Parent is a non-owning handle to a node's parent: either a root bucket or
// another window.
type Parent struct {
	Root Bucket
	ID   uint32
}

// Attached reports whether the handle refers to anything.
func (p Parent) Attached() bool {
	return p.Root != BucketNone || p.ID != InvalidID
}

// Node is one managed window.
type Node struct {
	ID        uint32
	DisplayID platform.DisplayID
	Name      string
	PID       int
	UID       int
	Type      Type
	Mode      Mode
	Flags     Flag

	// RequestRect is what the client asked for; LayoutRect is what the
	// layout policy decided and the compositor shows.
	RequestRect platform.Rect
	LayoutRect  platform.Rect
	DecorEnable bool

	Focusable      bool
	Brightness     float64
	KeepScreenOn   bool
	Orientation    platform.Orientation
	SystemBarProps map[Type]SystemBarProperty
	SizeReason     SizeChangeReason

	Surface platform.SurfaceID
	Leash   platform.SurfaceID
	Client  Client

	Priority int32
	ZOrder   int

	RequestedVisibility bool
	CurrentVisibility   bool
	IsCovered           bool

	// Set when the caller already animated the show or hide itself.
	PlayedShowAnimation bool
	PlayedHideAnimation bool

	screenLocked bool
	parent       Parent
	children     []uint32
}

// NewNode creates a node with the defaults every window starts from.
func NewNode(id uint32, displayID platform.DisplayID, t Type, mode Mode) *Node {
	return &Node{
		ID:         id,
		DisplayID:  displayID,
		Type:       t,
		Mode:       mode,
		Focusable:  true,
		Brightness: UndefinedBrightness,
		SystemBarProps: map[Type]SystemBarProperty{
			TypeStatusBar:     DefaultSystemBarProperty(),
			TypeNavigationBar: DefaultSystemBarProperty(),
		},
		IsCovered: true,
	}
}

func (n *Node) HasFlag(f Flag) bool { return n.Flags&f != 0 }
func (n *Node) IsSplitMode() bool   { return IsSplitMode(n.Mode) }

// Parent returns the node's parent handle.
func (n *Node) Parent() Parent { return n.parent }

// Attached reports whether the node currently hangs in a window tree.
func (n *Node) Attached() bool { return n.parent.Attached() }

// ParentID returns the id of the parent window, or InvalidID for main windows.
func (n *Node) ParentID() uint32 { return n.parent.ID }

// ChildIDs returns a copy of the node's child ids in ascending priority.
func (n *Node) ChildIDs() []uint32 {
	out := make([]uint32, len(n.children))
	copy(out, n.children)
	return out
}

// ScreenLocked reports whether the node holds a keep-screen-on lock.
func (n *Node) ScreenLocked() bool { return n.screenLocked }

// SetScreenLocked records the keep-screen-on lock state.
func (n *Node) SetScreenLocked(locked bool) { n.screenLocked = locked }

// SystemBarProperty returns the node's request for bar type t.
func (n *Node) SystemBarProperty(t Type) SystemBarProperty {
	if p, ok := n.SystemBarProps[t]; ok {
		return p
	}
	return DefaultSystemBarProperty()
}

// SetSystemBarProperty stores the node's request for bar type t.
func (n *Node) SetSystemBarProperty(t Type, p SystemBarProperty) {
	if n.SystemBarProps == nil {
		n.SystemBarProps = make(map[Type]SystemBarProperty)
	}
	n.SystemBarProps[t] = p
}

// VisibilityInfo reports an occlusion or presence transition.
type VisibilityInfo struct {
	WindowID uint32 `json:"window_id"`
	PID      int    `json:"pid"`
	UID      int    `json:"uid"`
	Visible  bool   `json:"visible"`
}

// FocusChangeInfo describes the window gaining or losing focus.
type FocusChangeInfo struct {
	WindowID  uint32             `json:"window_id"`
	DisplayID platform.DisplayID `json:"display_id"`
	PID       int                `json:"pid"`
	UID       int                `json:"uid"`
	Type      Type               `json:"type"`
}

// Info is the public snapshot of one window.
type Info struct {
	ID        uint32             `json:"id"`
	Name      string             `json:"name,omitempty"`
	Rect      platform.Rect      `json:"rect"`
	Focused   bool               `json:"focused"`
	DisplayID platform.DisplayID `json:"display_id"`
	Mode      Mode               `json:"mode"`
	Type      Type               `json:"type"`
}

// AccessibilityInfo pairs the changed window with the full window list.
type AccessibilityInfo struct {
	Current Info   `json:"current"`
	Windows []Info `json:"windows"`
}
