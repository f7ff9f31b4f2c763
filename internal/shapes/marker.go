package shapes

import (
	"github.com/zjrosen/tracks/internal/layer"
	"github.com/zjrosen/tracks/internal/scene"
)

// Marker draws an instant as a vertical rule over the full layer height
// with a small handle at the top.
//
// Accessors: x (default 0) and color. Options: handlerWidth and
// handlerHeight (pixels, default 3 and 1).
type Marker[T any] struct {
	base[T]
	rule, handle *scene.Node
	handleWidth  float64
	handleHeight float64
}

var _ layer.Shape[int] = (*Marker[int])(nil)

// NewMarker is a layer.ShapeFactory.
func NewMarker[T any](options map[string]any) layer.Shape[T] {
	return &Marker[T]{
		handleWidth:  option(options, "handlerWidth", 3),
		handleHeight: option(options, "handlerHeight", 1),
	}
}

func (m *Marker[T]) Category() string { return "marker" }

func (m *Marker[T]) Render(layer.RenderingContext) *scene.Node {
	if m.node != nil {
		return m.node
	}
	m.node = scene.NewGroup()
	m.rule = scene.NewLeaf(scene.Box{}, "rule")
	m.handle = scene.NewLeaf(scene.Box{}, "handle")
	m.node.AppendChild(m.rule)
	m.node.AppendChild(m.handle)
	return m.node
}

func (m *Marker[T]) Update(rc layer.RenderingContext, handle *scene.Node, datum T, _ int) {
	color := m.color("color", datum, DefaultMarkerColor)
	handle.SetTransform(scene.Translate(rc.XScale.Map(m.float("x", datum, 0)), 0))

	m.rule.SetPrimitive(scene.Box{W: 1, H: rc.Height})
	m.rule.SetFill(color)
	m.handle.SetPrimitive(scene.Box{
		X: -(m.handleWidth - 1) / 2,
		Y: rc.Height - m.handleHeight,
		W: m.handleWidth,
		H: m.handleHeight,
	})
	m.handle.SetFill(color)
}

// HitTest reports whether the rule lies strictly between x1 and x2. The
// rule spans the whole height, so y only needs a non-empty range.
func (m *Marker[T]) HitTest(rc layer.RenderingContext, datum T, x1, y1, x2, y2 float64) bool {
	x := rc.XScale.Map(m.float("x", datum, 0))
	return x > x1 && x < x2 && y2 > 0 && y1 < rc.Height
}
