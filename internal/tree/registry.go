package tree

import (
	"fmt"
	"sort"

	"github.com/1broseidon/casement/internal/platform"
)

// Registry owns every tracked node, keyed by window handle.
type Registry struct {
	nodes      map[platform.WindowID]*Node
	root       platform.WindowID
	childLimit int
}

// NewRegistry creates a registry holding only the root node.
func NewRegistry(root platform.WindowID, screen platform.Rect, childLimit int) *Registry {
	rootNode := NewNode(KindRoot, root, screen, childLimit)
	rootNode.WindowState = StateNormal
	return &Registry{
		nodes:      map[platform.WindowID]*Node{root: rootNode},
		root:       root,
		childLimit: childLimit,
	}
}

// Root returns the root node.
func (r *Registry) Root() *Node {
	return r.nodes[r.root]
}

// IsRoot reports whether id names the root window.
func (r *Registry) IsRoot(id platform.WindowID) bool {
	return id == r.root
}

// Len returns the number of tracked nodes, root included.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Lookup resolves a handle to its node. Frames, framed clients and bare
// top-level windows all resolve.
func (r *Registry) Lookup(id platform.WindowID) (*Node, bool) {
	if id == platform.None {
		return nil, false
	}
	n, ok := r.nodes[id]
	return n, ok
}

// NewNode creates a node using the registry's child limit. It is not tracked
// until Insert.
func (r *Registry) NewNode(kind Kind, id platform.WindowID, geom platform.Rect) *Node {
	return NewNode(kind, id, geom, r.childLimit)
}

// Insert starts tracking n. It fails if the handle is already tracked.
func (r *Registry) Insert(n *Node) error {
	if _, exists := r.nodes[n.Window]; exists {
		return fmt.Errorf("window %#x already tracked", n.Window)
	}
	r.nodes[n.Window] = n
	return nil
}

// Delete stops tracking id. The root is never deleted.
func (r *Registry) Delete(id platform.WindowID) {
	if id == r.root {
		return
	}
	delete(r.nodes, id)
}

// AddChild appends child to parent's children and points child at parent.
// A child already attached elsewhere is detached first.
func (r *Registry) AddChild(parent, child *Node) error {
	if child.Parent != platform.None && child.Parent != parent.Window {
		if old, ok := r.nodes[child.Parent]; ok {
			old.Children.Remove(child.Window)
		}
	}
	if err := parent.Children.Add(child.Window); err != nil {
		return fmt.Errorf("attach %#x to %#x: %w", child.Window, parent.Window, err)
	}
	child.Parent = parent.Window
	return nil
}

// RemoveChild detaches child from parent.
func (r *Registry) RemoveChild(parent, child *Node) {
	parent.Children.Remove(child.Window)
	if child.Parent == parent.Window {
		child.Parent = platform.None
	}
}

// Parent returns n's parent node.
func (r *Registry) Parent(n *Node) (*Node, bool) {
	return r.Lookup(n.Parent)
}

// ContainerOf returns the unit a user interacts with for n: the nearest
// enclosing frame, or failing that the top-level ancestor directly under the
// root. The root is its own container.
func (r *Registry) ContainerOf(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.Window == r.root {
		return n
	}
	topLevel := n
	for cur := n; cur != nil; {
		if cur.Kind == KindFrame {
			return cur
		}
		if cur.Parent == r.root || cur.Parent == platform.None {
			topLevel = cur
			break
		}
		parent, ok := r.nodes[cur.Parent]
		if !ok {
			topLevel = cur
			break
		}
		cur = parent
	}
	return topLevel
}

// FrameOf returns the frame enclosing n, or nil when n is not decorated.
func (r *Registry) FrameOf(n *Node) *Node {
	c := r.ContainerOf(n)
	if c == nil || c.Kind != KindFrame {
		return nil
	}
	return c
}

// AbsolutePosition returns n's top-left corner in root coordinates.
func (r *Registry) AbsolutePosition(n *Node) (int, int) {
	x, y := n.Geom.X, n.Geom.Y
	for cur := n; cur.Parent != platform.None && cur.Parent != r.root; {
		parent, ok := r.nodes[cur.Parent]
		if !ok {
			break
		}
		x += parent.Geom.X
		y += parent.Geom.Y
		cur = parent
	}
	return x, y
}

// Nodes returns every tracked node ordered by handle.
func (r *Registry) Nodes() []*Node {
	out := make([]*Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Window < out[j].Window
	})
	return out
}

// Check verifies the parent/child invariants and returns the first violation.
func (r *Registry) Check() error {
	for id, n := range r.nodes {
		if id == r.root {
			if n.Parent != platform.None {
				return fmt.Errorf("root %#x has a parent", id)
			}
			continue
		}
		parent, ok := r.nodes[n.Parent]
		if !ok {
			return fmt.Errorf("node %#x has untracked parent %#x", id, n.Parent)
		}
		count := 0
		for _, c := range parent.Children.Items() {
			if c == id {
				count++
			}
		}
		if count != 1 {
			return fmt.Errorf("node %#x appears %d times under parent %#x", id, count, n.Parent)
		}
		for _, c := range n.Children.Items() {
			child, ok := r.nodes[c]
			if !ok {
				return fmt.Errorf("node %#x lists untracked child %#x", id, c)
			}
			if child.Parent != id {
				return fmt.Errorf("child %#x of %#x points at %#x", c, id, child.Parent)
			}
		}
	}
	return nil
}
