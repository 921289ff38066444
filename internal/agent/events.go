package agent

import (
	"sync/atomic"
	"time"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/window"
)

// Kind names an event.
type Kind string

const (
	KindSystemBarTints Kind = "system_bar_tints"
	KindAccessibility  Kind = "accessibility"
	KindVisibility     Kind = "visibility"
	KindFocus          Kind = "focus"
)

// Event is a notification flattened for serialization.
type Event struct {
	Kind      Kind                         `json:"kind"`
	Time      time.Time                    `json:"time"`
	DisplayID platform.DisplayID           `json:"display_id,omitempty"`
	Update    string                       `json:"update,omitempty"`
	Focused   *bool                        `json:"focused,omitempty"`
	Tints     []window.SystemBarRegionTint `json:"tints,omitempty"`
	Window    *window.Info                 `json:"window,omitempty"`
	Windows   []window.Info                `json:"windows,omitempty"`
	Visible   []window.VisibilityInfo      `json:"visibility,omitempty"`
	Focus     *window.FocusChangeInfo      `json:"focus,omitempty"`
}

// EventFunc adapts a function receiving flattened events to a Listener.
type EventFunc func(Event)

var _ Listener = EventFunc(nil)

func (f EventFunc) NotifySystemBarTints(displayID platform.DisplayID, tints []window.SystemBarRegionTint) {
	f(Event{Kind: KindSystemBarTints, Time: time.Now(), DisplayID: displayID, Tints: tints})
}

func (f EventFunc) NotifyAccessibilityWindowInfo(info window.AccessibilityInfo, kind window.UpdateType) {
	cur := info.Current
	f(Event{
		Kind:      KindAccessibility,
		Time:      time.Now(),
		DisplayID: cur.DisplayID,
		Update:    kind.String(),
		Window:    &cur,
		Windows:   info.Windows,
	})
}

func (f EventFunc) NotifyWindowVisibility(infos []window.VisibilityInfo) {
	f(Event{Kind: KindVisibility, Time: time.Now(), Visible: infos})
}

func (f EventFunc) NotifyFocusChanged(info window.FocusChangeInfo, focused bool) {
	f(Event{Kind: KindFocus, Time: time.Now(), DisplayID: info.DisplayID, Focus: &info, Focused: &focused})
}

// Stream buffers events for a slow consumer. When the buffer is full new
// events are dropped and counted.
type Stream struct {
	ch      chan Event
	dropped atomic.Int64
}

// NewStream creates a stream holding up to size pending events.
func NewStream(size int) *Stream {
	return &Stream{ch: make(chan Event, size)}
}

// Listener returns the listener feeding the stream.
func (s *Stream) Listener() Listener {
	return EventFunc(func(e Event) {
		select {
		case s.ch <- e:
		default:
			s.dropped.Add(1)
		}
	})
}

// Events returns the receive side of the stream.
func (s *Stream) Events() <-chan Event { return s.ch }

// Dropped returns how many events were lost to a full buffer.
func (s *Stream) Dropped() int64 { return s.dropped.Load() }
