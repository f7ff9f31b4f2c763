// Package scene is a small retained 2D scene graph: the host that layers
// and shapes draw into.
//
// It provides exactly what the layer engine needs from a visual tree:
// grouping nodes, appending and removing children, an affine transform per
// node, a clip size, opacity, and bounding boxes. Leaves carry one drawing
// primitive. Painting is left to a rasterizer such as internal/render.
package scene

import (
	"slices"

	"github.com/google/uuid"
)

// Primitive is the drawable payload of a leaf node.
type Primitive interface {
	// Bounds returns the primitive's extent in its node's coordinates.
	Bounds() Rect
}

// Circle is a filled disc.
type Circle struct {
	CX, CY, R float64
}

func (c Circle) Bounds() Rect {
	return Rect{X: c.CX - c.R, Y: c.CY - c.R, W: 2 * c.R, H: 2 * c.R}
}

// Box is a filled axis-aligned rectangle.
type Box struct {
	X, Y, W, H float64
}

func (b Box) Bounds() Rect {
	return Rect{X: b.X, Y: b.Y, W: b.W, H: b.H}
}

// Polyline is an open path through Points.
type Polyline struct {
	Points []Point
}

func (p Polyline) Bounds() Rect {
	var r Rect
	for i, pt := range p.Points {
		if i == 0 {
			r = Rect{X: pt.X, Y: pt.Y}
			continue
		}
		r = r.Union(Rect{X: pt.X, Y: pt.Y})
	}
	return r
}

// Text is a label anchored at its baseline start.
type Text struct {
	X, Y  float64
	Value string
}

func (t Text) Bounds() Rect {
	return Rect{X: t.X, Y: t.Y, W: float64(len([]rune(t.Value))), H: 1}
}

// Node is an element of the scene tree.
type Node struct {
	id        string
	classes   []string
	parent    *Node
	children  []*Node
	transform Matrix
	clip      *Rect
	opacity   float64
	hidden    bool
	fill      string
	primitive Primitive
}

// NewGroup creates a grouping node.
func NewGroup(classes ...string) *Node {
	return &Node{
		id:        uuid.NewString(),
		classes:   slices.Clone(classes),
		transform: Identity(),
		opacity:   1,
	}
}

// NewLeaf creates a node drawing p.
func NewLeaf(p Primitive, classes ...string) *Node {
	n := NewGroup(classes...)
	n.primitive = p
	return n
}

// ID returns the node's unique identifier.
func (n *Node) ID() string { return n.id }

// Parent returns the parent node or nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the children in paint order (last is painted on top).
func (n *Node) Children() []*Node { return n.children }

// AppendChild attaches c as the last child, detaching it from any previous
// parent first. Appending an existing child moves it to the front of the
// paint order.
func (n *Node) AppendChild(c *Node) {
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

// RemoveChild detaches c and reports whether it was a child of n.
func (n *Node) RemoveChild(c *Node) bool {
	i := slices.Index(n.children, c)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	c.parent = nil
	return true
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// IsDescendantOf reports whether ancestor is n or one of its ancestors.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// AddClass adds the given class names, skipping duplicates.
func (n *Node) AddClass(classes ...string) {
	for _, c := range classes {
		if !n.HasClass(c) {
			n.classes = append(n.classes, c)
		}
	}
}

// RemoveClass removes a class name if present.
func (n *Node) RemoveClass(class string) {
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool { return c == class })
}

// HasClass reports whether the node carries class.
func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.classes, class)
}

// Classes returns the node's class names.
func (n *Node) Classes() []string { return n.classes }

// SetTransform replaces the node's local transform.
func (n *Node) SetTransform(m Matrix) { n.transform = m }

// Transform returns the node's local transform.
func (n *Node) Transform() Matrix { return n.transform }

// WorldTransform composes the transforms from the root down to n.
func (n *Node) WorldTransform() Matrix {
	m := n.transform
	for p := n.parent; p != nil; p = p.parent {
		m = Mul(p.transform, m)
	}
	return m
}

// SetClip restricts drawing of the subtree to [0,w]x[0,h] in local space.
func (n *Node) SetClip(w, h float64) {
	n.clip = &Rect{W: w, H: h}
}

// ClearClip removes the clip.
func (n *Node) ClearClip() { n.clip = nil }

// Clip returns the clip rectangle if one is set.
func (n *Node) Clip() (Rect, bool) {
	if n.clip == nil {
		return Rect{}, false
	}
	return *n.clip, true
}

// SetOpacity sets the opacity, clamped to [0,1].
func (n *Node) SetOpacity(v float64) {
	n.opacity = min(max(v, 0), 1)
}

// Opacity returns the node's own opacity.
func (n *Node) Opacity() float64 { return n.opacity }

// SetHidden toggles display of the subtree.
func (n *Node) SetHidden(hidden bool) { n.hidden = hidden }

// Hidden reports whether the subtree is hidden.
func (n *Node) Hidden() bool { return n.hidden }

// SetFill sets the fill colour (any lipgloss colour string).
func (n *Node) SetFill(color string) { n.fill = color }

// Fill returns the fill colour.
func (n *Node) Fill() string { return n.fill }

// SetPrimitive replaces the drawing primitive.
func (n *Node) SetPrimitive(p Primitive) { n.primitive = p }

// Primitive returns the drawing primitive, nil for groups.
func (n *Node) Primitive() Primitive { return n.primitive }

// BBox returns the bounds of the node's primitive and descendants in the
// node's own coordinates (its own transform is not applied).
// A node with nothing to draw has a zero box at its origin.
func (n *Node) BBox() Rect {
	r, _ := n.bbox()
	return r
}

func (n *Node) bbox() (Rect, bool) {
	var (
		r   Rect
		found bool
	)
	if n.primitive != nil {
		r, found = n.primitive.Bounds(), true
	}
	for _, c := range n.children {
		cb, ok := c.bbox()
		if !ok {
			continue
		}
		cb = c.transform.ApplyRect(cb)
		if !found {
			r, found = cb, true
			continue
		}
		r = r.Union(cb)
	}
	return r, found
}

// Walk visits n and its descendants depth first in paint order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}
