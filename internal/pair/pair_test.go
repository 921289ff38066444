package pair

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1broseidon/winstack/internal/window"
)

func ids(nodes []*window.Node) []uint32 {
	out := make([]uint32, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestOrderedPair(t *testing.T) {
	p := New(nil)
	primary := window.NewNode(1, 1, window.TypeAppMain, window.ModeSplitPrimary)
	secondary := window.NewNode(2, 1, window.TypeAppMain, window.ModeSplitSecondary)
	divider := window.NewNode(3, 1, window.TypeDockSlice, window.ModeFloating)
	loner := window.NewNode(4, 1, window.TypeAppMain, window.ModeFloating)

	p.UpdateIfSplitRelated(primary)
	assert.False(t, p.IsPaired())
	p.UpdateIfSplitRelated(secondary)
	p.UpdateIfSplitRelated(divider)
	p.UpdateIfSplitRelated(loner)

	assert.True(t, p.IsPaired())
	assert.Equal(t, []uint32{2, 1, 3}, ids(p.OrderedPair(primary)))
	assert.Equal(t, []uint32{1, 2, 3}, ids(p.OrderedPair(secondary)))
	assert.Equal(t, []uint32{1, 2, 3}, ids(p.OrderedPair(divider)))
	assert.Equal(t, []uint32{4}, ids(p.OrderedPair(loner)))
	assert.Nil(t, p.OrderedPair(nil))
}

func TestLeavingSplitModeDropsSlot(t *testing.T) {
	p := New(nil)
	n := window.NewNode(1, 1, window.TypeAppMain, window.ModeSplitPrimary)
	p.UpdateIfSplitRelated(n)
	assert.True(t, p.Contains(n))

	n.Mode = window.ModeSplitSecondary
	p.UpdateIfSplitRelated(n)
	assert.Equal(t, Snapshot{Secondary: 1}, p.Snapshot())

	n.Mode = window.ModeFullscreen
	p.UpdateIfSplitRelated(n)
	assert.Equal(t, Snapshot{}, p.Snapshot())
}

func TestHandleRemoveAndClear(t *testing.T) {
	p := New(nil)
	a := window.NewNode(1, 1, window.TypeAppMain, window.ModeSplitPrimary)
	b := window.NewNode(2, 1, window.TypeAppMain, window.ModeSplitSecondary)
	p.UpdateIfSplitRelated(a)
	p.UpdateIfSplitRelated(b)

	p.HandleRemoveWindow(a)
	assert.Equal(t, []uint32{2}, ids(p.OrderedPair(b)))

	p.Clear()
	assert.False(t, p.Contains(b))
}
