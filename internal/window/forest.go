package window

// Bucket is one of the three root forests of a display.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketBelow
	BucketApp
	BucketAbove
)

func (b Bucket) String() string {
	switch b {
	case BucketBelow:
		return "below"
	case BucketApp:
		return "app"
	case BucketAbove:
		return "above"
	default:
		return "none"
	}
}

// BucketFor maps a window type onto its home root bucket.
func BucketFor(t Type) Bucket {
	switch {
	case IsAppWindow(t) || t == TypeDockSlice:
		return BucketApp
	case IsBelowSystemWindow(t):
		return BucketBelow
	case IsAboveSystemWindow(t):
		return BucketAbove
	default:
		return BucketNone
	}
}

// Forest is an arena of nodes for one display. Nodes are indexed by id;
// structure is kept as parent handles and ordered child id lists.
type Forest struct {
	nodes map[uint32]*Node
	roots [BucketAbove + 1][]uint32
}

// NewForest creates an empty forest.
func NewForest() *Forest {
	return &Forest{nodes: make(map[uint32]*Node)}
}

// Register makes n addressable by id. Registering again replaces the entry.
func (f *Forest) Register(n *Node) {
	f.nodes[n.ID] = n
}

// Unregister drops the node with id from the arena.
func (f *Forest) Unregister(id uint32) {
	delete(f.nodes, id)
}

// Lookup returns a registered node whether or not it is attached.
func (f *Forest) Lookup(id uint32) *Node {
	return f.nodes[id]
}

// Children returns the child ids under p. The slice must not be modified.
func (f *Forest) Children(p Parent) []uint32 {
	if p.ID != InvalidID {
		if n := f.nodes[p.ID]; n != nil {
			return n.children
		}
		return nil
	}
	if p.Root == BucketNone {
		return nil
	}
	return f.roots[p.Root]
}

// ChildNodes resolves the children under p.
func (f *Forest) ChildNodes(p Parent) []*Node {
	ids := f.Children(p)
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n := f.nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Root returns the top-level nodes of bucket b in ascending priority.
func (f *Forest) Root(b Bucket) []*Node {
	return f.ChildNodes(Parent{Root: b})
}

// ParentNode returns the window n hangs under, or nil for root-level and
// detached nodes.
func (f *Forest) ParentNode(n *Node) *Node {
	if n.parent.ID == InvalidID {
		return nil
	}
	return f.nodes[n.parent.ID]
}

// HostBucket returns the root bucket n is reachable from.
func (f *Forest) HostBucket(n *Node) Bucket {
	for depth := 0; n != nil && depth < 8; depth++ {
		if n.parent.ID == InvalidID {
			return n.parent.Root
		}
		n = f.nodes[n.parent.ID]
	}
	return BucketNone
}

// SetParent links n to p without touching any child list.
func (f *Forest) SetParent(n *Node, p Parent) {
	n.parent = p
}

// InsertByPriority links n under p, placing it before the first child whose
// priority is greater. Equal priorities keep insertion order.
func (f *Forest) InsertByPriority(n *Node, p Parent) {
	list := f.Children(p)
	pos := len(list)
	for i, id := range list {
		if c := f.nodes[id]; c != nil && c.Priority > n.Priority {
			pos = i
			break
		}
	}
	list = append(list, 0)
	copy(list[pos+1:], list[pos:])
	list[pos] = n.ID
	f.setChildren(p, list)
	n.parent = p
}

// Remove unlinks n from its parent's child list and clears its parent. It
// reports false when n was not in the list it claims to be in.
func (f *Forest) Remove(n *Node) bool {
	p := n.parent
	found := f.removeFrom(p, n.ID)
	n.parent = Parent{}
	return found
}

// Pull unlinks n from the child list of p but keeps n's parent handle.
func (f *Forest) Pull(n *Node, p Parent) bool {
	return f.removeFrom(p, n.ID)
}

// ClearChildren empties n's child list.
func (f *Forest) ClearChildren(n *Node) {
	n.children = nil
}

func (f *Forest) removeFrom(p Parent, id uint32) bool {
	list := f.Children(p)
	for i, c := range list {
		if c == id {
			out := make([]uint32, 0, len(list)-1)
			out = append(out, list[:i]...)
			out = append(out, list[i+1:]...)
			f.setChildren(p, out)
			return true
		}
	}
	return false
}

func (f *Forest) setChildren(p Parent, list []uint32) {
	if p.ID != InvalidID {
		if n := f.nodes[p.ID]; n != nil {
			n.children = list
		}
		return
	}
	if p.Root != BucketNone {
		f.roots[p.Root] = list
	}
}

// Find returns the attached node with id among top-level nodes and their
// direct children.
func (f *Forest) Find(id uint32) *Node {
	for _, b := range []Bucket{BucketAbove, BucketApp, BucketBelow} {
		for _, n := range f.Root(b) {
			if n.ID == id {
				return n
			}
			for _, c := range f.ChildNodes(Parent{ID: n.ID}) {
				if c.ID == id {
					return c
				}
			}
		}
	}
	return nil
}

// Len counts attached nodes reachable from the roots.
func (f *Forest) Len() int {
	count := 0
	f.TraverseBottomToTop(func(*Node) bool {
		count++
		return false
	})
	return count
}

// TraverseTopToBottom visits Above, App then Below, topmost first. Within a
// host, positive-priority children come before the host and the rest after.
// Traversal stops when fn returns true.
func (f *Forest) TraverseTopToBottom(fn func(*Node) bool) {
	for _, b := range []Bucket{BucketAbove, BucketApp, BucketBelow} {
		roots := f.Root(b)
		for i := len(roots) - 1; i >= 0; i-- {
			if f.hostTopToBottom(roots[i], fn) {
				return
			}
		}
	}
}

// TraverseBottomToTop visits Below, App then Above, bottommost first. Within
// a host, negative-priority children come before the host and the rest after.
func (f *Forest) TraverseBottomToTop(fn func(*Node) bool) {
	for _, b := range []Bucket{BucketBelow, BucketApp, BucketAbove} {
		for _, n := range f.Root(b) {
			if f.hostBottomToTop(n, fn) {
				return
			}
		}
	}
}

func (f *Forest) hostTopToBottom(host *Node, fn func(*Node) bool) bool {
	children := f.ChildNodes(Parent{ID: host.ID})
	i := len(children) - 1
	for ; i >= 0; i-- {
		if children[i].Priority <= 0 {
			break
		}
		if fn(children[i]) {
			return true
		}
	}
	if fn(host) {
		return true
	}
	for ; i >= 0; i-- {
		if fn(children[i]) {
			return true
		}
	}
	return false
}

func (f *Forest) hostBottomToTop(host *Node, fn func(*Node) bool) bool {
	children := f.ChildNodes(Parent{ID: host.ID})
	i := 0
	for ; i < len(children); i++ {
		if children[i].Priority >= 0 {
			break
		}
		if fn(children[i]) {
			return true
		}
	}
	if fn(host) {
		return true
	}
	for ; i < len(children); i++ {
		if fn(children[i]) {
			return true
		}
	}
	return false
}

// Flatten lists attached nodes top to bottom with negative-priority children
// placed right below their host, as accessibility window lists expect.
func (f *Forest) Flatten() []*Node {
	var out []*Node
	for _, b := range []Bucket{BucketBelow, BucketApp, BucketAbove} {
		for _, n := range f.Root(b) {
			children := f.ChildNodes(Parent{ID: n.ID})
			i := 0
			for ; i < len(children) && children[i].Priority < 0; i++ {
				out = append(out, children[i])
			}
			out = append(out, n)
			out = append(out, children[i:]...)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
