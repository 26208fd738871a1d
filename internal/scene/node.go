package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Node is one transform in the scene hierarchy. A node may carry geometry
// bounds and drawable surfaces of its own, child nodes, or both. Nodes do
// not point back at their parents; anything that needs to resolve a child
// to its root keeps its own index.
type Node struct {
	ID   uuid.UUID
	Name string

	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3

	// Bounds is the node's own geometry box in local space. Nil for pure
	// grouping nodes.
	Bounds *AABB

	Surfaces []*Surface
	Children []*Node
}

// NewNode returns a named node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		ID:       uuid.New(),
		Name:     name,
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// AddChild appends a child node.
func (n *Node) AddChild(child *Node) {
	if child == nil || child == n {
		return
	}
	n.Children = append(n.Children, child)
}

// RemoveChild detaches the given child and reports whether it was present.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Transform returns the node's local matrix: translate, rotate, scale.
func (n *Node) Transform() mgl64.Mat4 {
	t := mgl64.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	r := n.Rotation.Mat4()
	s := mgl64.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// Traverse visits the node and all descendants depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// EachSurface visits every surface in the subtree.
func (n *Node) EachSurface(fn func(*Surface)) {
	n.Traverse(func(node *Node) {
		for _, s := range node.Surfaces {
			fn(s)
		}
	})
}

// WorldBounds returns the box enclosing the subtree's geometry under the
// node's own transform. Empty if no node in the subtree carries bounds.
func (n *Node) WorldBounds() AABB {
	return n.boundsUnder(mgl64.Ident4())
}

// BoundsInParent returns the subtree box expressed in the parent's space,
// with an extra transform applied above the node's own.
func (n *Node) BoundsInParent(parent mgl64.Mat4) AABB {
	return n.boundsUnder(parent)
}

func (n *Node) boundsUnder(parent mgl64.Mat4) AABB {
	world := parent.Mul4(n.Transform())
	box := EmptyAABB()
	if n.Bounds != nil {
		box = box.Union(n.Bounds.Transformed(world))
	}
	for _, c := range n.Children {
		box = box.Union(c.boundsUnder(world))
	}
	return box
}

// Find returns the first node in the subtree with the given ID, or nil.
func (n *Node) Find(id uuid.UUID) *Node {
	var found *Node
	n.Traverse(func(node *Node) {
		if found == nil && node.ID == id {
			found = node
		}
	})
	return found
}
