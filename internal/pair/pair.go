// Package pair tracks the split-screen windows of one display so they can be
// raised together.
package pair

import (
	"log/slog"

	"github.com/1broseidon/winstack/internal/window"
)

// Pair holds the current split primary, split secondary and divider windows.
// It is owned by a single display container and is not safe for concurrent
// use.
type Pair struct {
	primary   *window.Node
	secondary *window.Node
	divider   *window.Node
	logger    *slog.Logger
}

// Snapshot is the id view of a pair; 0 marks an empty slot.
type Snapshot struct {
	Primary   uint32 `json:"primary"`
	Secondary uint32 `json:"secondary"`
	Divider   uint32 `json:"divider"`
}

// New creates an empty pair tracker.
func New(logger *slog.Logger) *Pair {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pair{logger: logger.With("component", "pair")}
}

// UpdateIfSplitRelated records n in the slot its mode or type names. A
// window that left split mode is dropped from the slot it held.
func (p *Pair) UpdateIfSplitRelated(n *window.Node) {
	if n == nil {
		return
	}
	switch {
	case n.Type == window.TypeDockSlice:
		p.divider = n
	case n.Mode == window.ModeSplitPrimary:
		if p.secondary == n {
			p.secondary = nil
		}
		p.primary = n
	case n.Mode == window.ModeSplitSecondary:
		if p.primary == n {
			p.primary = nil
		}
		p.secondary = n
	default:
		p.drop(n)
		return
	}
	p.logger.Debug("split pair updated", "window", n.ID, "pair", p.Snapshot())
}

// HandleRemoveWindow forgets n if it was part of the pair.
func (p *Pair) HandleRemoveWindow(n *window.Node) {
	if n == nil {
		return
	}
	p.drop(n)
}

func (p *Pair) drop(n *window.Node) {
	dropped := true
	switch n {
	case p.primary:
		p.primary = nil
	case p.secondary:
		p.secondary = nil
	case p.divider:
		p.divider = nil
	default:
		dropped = false
	}
	if dropped {
		p.logger.Debug("window left split pair", "window", n.ID)
	}
}

// OrderedPair returns the windows to raise for n, bottom first: the
// partner, then n, then the divider. Raising the divider brings up the
// whole pair. A window outside the pair is returned alone.
func (p *Pair) OrderedPair(n *window.Node) []*window.Node {
	var order []*window.Node
	switch {
	case n == nil:
		return nil
	case n == p.divider:
		order = []*window.Node{p.primary, p.secondary, p.divider}
	case n == p.primary:
		order = []*window.Node{p.secondary, p.primary, p.divider}
	case n == p.secondary:
		order = []*window.Node{p.primary, p.secondary, p.divider}
	default:
		return []*window.Node{n}
	}
	out := order[:0]
	for _, w := range order {
		if w != nil {
			out = append(out, w)
		}
	}
	return out
}

// IsPaired reports whether both split regions are occupied.
func (p *Pair) IsPaired() bool {
	return p.primary != nil && p.secondary != nil
}

// Contains reports whether n occupies any slot.
func (p *Pair) Contains(n *window.Node) bool {
	return n != nil && (n == p.primary || n == p.secondary || n == p.divider)
}

// Clear forgets every slot.
func (p *Pair) Clear() {
	p.primary, p.secondary, p.divider = nil, nil, nil
	p.logger.Debug("split pair cleared")
}

func (p *Pair) Snapshot() Snapshot {
	var s Snapshot
	if p.primary != nil {
		s.Primary = p.primary.ID
	}
	if p.secondary != nil {
		s.Secondary = p.secondary.ID
	}
	if p.divider != nil {
		s.Divider = p.divider.ID
	}
	return s
}
