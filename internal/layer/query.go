package layer

import (
	"math"

	"github.com/zjrosen/tracks/internal/scene"
)

// HasItem reports whether handle is one of the layer's item nodes.
// The common shape's node is not an item.
func (l *Layer[T]) HasItem(handle *scene.Node) bool {
	_, ok := l.bindings[handle]
	return ok
}

// HasElement reports whether n belongs anywhere in the layer's subtree,
// including the context edit region.
func (l *Layer[T]) HasElement(n *scene.Node) bool {
	return n != nil && n.IsDescendantOf(l.root)
}

// ItemFromNode returns the item node containing n, or nil when the nearest
// node classed "item" is not one of this layer's items.
func (l *Layer[T]) ItemFromNode(n *scene.Node) *scene.Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if !cur.HasClass("item") {
			continue
		}
		if l.HasItem(cur) {
			return cur
		}
		return nil
	}
	return nil
}

// DatumFromItem returns the datum bound to handle.
func (l *Layer[T]) DatumFromItem(handle *scene.Node) (T, bool) {
	b, ok := l.bindings[handle]
	if !ok {
		var zero T
		return zero, false
	}
	return b.datum, true
}

// HandlesInArea returns, in data order, the item nodes whose shape reports a
// hit inside area. The area is clamped to the visible context before the
// test and converted to the layer's upward y axis.
func (l *Layer[T]) HandlesInArea(area Area) []*scene.Node {
	if l.tc == nil || l.rc.XScale == nil || !validArea(area) {
		return nil
	}

	xs := l.rc.XScale
	start := xs.Map(l.tc.Start)
	duration := xs.Map(l.tc.Duration)
	offset := xs.Map(l.tc.Offset)

	x1 := math.Max(area.Left, start) - (start + offset)
	x2 := math.Min(area.Left+area.Width, start+duration) - (start + offset)
	y1 := l.params.Height - (area.Top + area.Height) + l.params.Top
	y2 := l.params.Height - area.Top + l.params.Top

	var out []*scene.Node
	for _, h := range l.items {
		if l.shapes[h].HitTest(l.rc, l.bindings[h].datum, x1, y1, x2, y2) {
			out = append(out, h)
		}
	}
	return out
}

// ItemsInArea returns the data of HandlesInArea. A non-finite or empty area
// yields no items.
func (l *Layer[T]) ItemsInArea(area Area) []T {
	handles := l.HandlesInArea(area)
	out := make([]T, 0, len(handles))
	for _, h := range handles {
		out = append(out, l.bindings[h].datum)
	}
	return out
}

func validArea(a Area) bool {
	for _, v := range [...]float64{a.Left, a.Top, a.Width, a.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return a.Width > 0 && a.Height > 0
}
