package scene

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGroup(t *testing.T) {
	g := NewGroup("layer", "layer")

	require.NotEmpty(t, g.ID())
	require.NotEqual(t, g.ID(), NewGroup().ID())
	require.Equal(t, Identity(), g.Transform())
	require.Equal(t, 1.0, g.Opacity())
	require.Nil(t, g.Primitive())
	require.Equal(t, []string{"layer", "layer"}, g.Classes(), "constructor keeps classes verbatim")
}

func TestAppendChild_MovesBetweenParents(t *testing.T) {
	a, b := NewGroup(), NewGroup()
	c := NewGroup()

	a.AppendChild(c)
	require.Same(t, a, c.Parent())

	b.AppendChild(c)
	require.Same(t, b, c.Parent())
	require.Empty(t, a.Children())
	require.Equal(t, []*Node{c}, b.Children())
}

func TestAppendChild_ExistingChildMovesToEnd(t *testing.T) {
	p := NewGroup()
	first, second := NewGroup(), NewGroup()
	p.AppendChild(first)
	p.AppendChild(second)

	p.AppendChild(first)

	require.Equal(t, []*Node{second, first}, p.Children())
}

func TestRemoveChild(t *testing.T) {
	p, c := NewGroup(), NewGroup()
	p.AppendChild(c)

	require.True(t, p.RemoveChild(c))
	require.Nil(t, c.Parent())
	require.False(t, p.RemoveChild(c))
}

func TestRemove(t *testing.T) {
	p, c := NewGroup(), NewGroup()
	p.AppendChild(c)

	c.Remove()
	require.Empty(t, p.Children())
	require.NotPanics(t, c.Remove)
}

func TestIsDescendantOf(t *testing.T) {
	root, mid, leaf := NewGroup(), NewGroup(), NewGroup()
	root.AppendChild(mid)
	mid.AppendChild(leaf)

	require.True(t, leaf.IsDescendantOf(root))
	require.True(t, leaf.IsDescendantOf(leaf))
	require.False(t, root.IsDescendantOf(leaf))
}

func TestClasses(t *testing.T) {
	n := NewGroup()
	n.AddClass("item", "dot", "item")

	require.Equal(t, []string{"item", "dot"}, n.Classes())
	require.True(t, n.HasClass("dot"))

	n.RemoveClass("dot")
	require.False(t, n.HasClass("dot"))
}

func TestOpacityClamped(t *testing.T) {
	n := NewGroup()

	n.SetOpacity(2)
	require.Equal(t, 1.0, n.Opacity())
	n.SetOpacity(-1)
	require.Equal(t, 0.0, n.Opacity())
}

func TestClip(t *testing.T) {
	n := NewGroup()
	_, ok := n.Clip()
	require.False(t, ok)

	n.SetClip(40, 10)
	r, ok := n.Clip()
	require.True(t, ok)
	require.Equal(t, Rect{W: 40, H: 10}, r)

	n.ClearClip()
	_, ok = n.Clip()
	require.False(t, ok)
}

func TestBBox_TransformsChildren(t *testing.T) {
	g := NewGroup()
	dot := NewLeaf(Circle{R: 2})
	dot.SetTransform(Translate(10, 5))
	box := NewLeaf(Box{X: 0, Y: 0, W: 4, H: 4})
	box.SetTransform(Translate(-3, 0))
	g.AppendChild(dot)
	g.AppendChild(box)

	require.Equal(t, Rect{X: -3, Y: 0, W: 15, H: 7}, g.BBox())
}

func TestBBox_IgnoresEmptyGroups(t *testing.T) {
	g := NewGroup()
	empty := NewGroup()
	empty.SetTransform(Translate(-100, -100))
	g.AppendChild(empty)
	g.AppendChild(NewLeaf(Box{X: 5, Y: 5, W: 1, H: 1}))

	require.Equal(t, Rect{X: 5, Y: 5, W: 1, H: 1}, g.BBox())
	require.Equal(t, Rect{}, NewGroup().BBox())
}

func TestWorldTransform(t *testing.T) {
	root := NewGroup()
	root.SetTransform(FlipY(10, 100))
	child := NewGroup()
	child.SetTransform(Translate(5, 20))
	root.AppendChild(child)

	p := child.WorldTransform().Apply(Point{X: 1, Y: 1})
	require.Equal(t, Point{X: 16, Y: 79}, p)
}

func TestMatrixInvert(t *testing.T) {
	m := Mul(FlipY(3, 50), Translate(7, 2))
	inv, ok := m.Invert()
	require.True(t, ok)

	p := Point{X: 12, Y: -4}
	back := inv.Apply(m.Apply(p))
	require.InDelta(t, p.X, back.X, 1e-9)
	require.InDelta(t, p.Y, back.Y, 1e-9)

	_, ok = Matrix{}.Invert()
	require.False(t, ok)
}

func TestWalk_SkipsSubtree(t *testing.T) {
	root, skipped, kept := NewGroup(), NewGroup("skip"), NewGroup()
	skipped.AppendChild(NewGroup("hidden-child"))
	root.AppendChild(skipped)
	root.AppendChild(kept)

	var visited []*Node
	root.Walk(func(n *Node) bool {
		visited = append(visited, n)
		return !n.HasClass("skip")
	})

	require.Equal(t, []*Node{root, skipped, kept}, visited)
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 10, H: 5}

	require.True(t, r.Contains(Point{X: 10, Y: 5}))
	require.False(t, r.Contains(Point{X: 10.1, Y: 5}))
}
