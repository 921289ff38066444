package container

import (
	"slices"

	"github.com/1broseidon/winstack/internal/pair"
	"github.com/1broseidon/winstack/internal/window"
)

// FindWindowNodeByID returns the attached window with id, or nil.
func (c *Container) FindWindowNodeByID(id uint32) *window.Node {
	return c.forest.Find(id)
}

// WindowCountByType counts top-level windows of type t.
func (c *Container) WindowCountByType(t window.Type) int {
	count := 0
	for _, b := range []window.Bucket{window.BucketBelow, window.BucketApp, window.BucketAbove} {
		for _, n := range c.forest.Root(b) {
			if n.Type == t {
				count++
			}
		}
	}
	return count
}

// FindDividerNode returns the split divider, or nil when not splitting.
func (c *Container) FindDividerNode() *window.Node {
	for _, n := range c.forest.Root(window.BucketApp) {
		if n.Type == window.TypeDockSlice {
			return n
		}
	}
	return nil
}

// IDs lists every attached window id in ascending order.
func (c *Container) IDs() []uint32 {
	var ids []uint32
	c.forest.TraverseBottomToTop(func(n *window.Node) bool {
		ids = append(ids, n.ID)
		return false
	})
	slices.Sort(ids)
	return ids
}

// Len counts attached windows.
func (c *Container) Len() int { return c.forest.Len() }

// ZOrderCount is the number of surfaces numbered by the last AssignZOrder.
func (c *Container) ZOrderCount() int { return c.zOrderCount }

func (c *Container) PairSnapshot() pair.Snapshot { return c.pair.Snapshot() }
