package shapes

import (
	"math"

	"github.com/zjrosen/tracks/internal/layer"
	"github.com/zjrosen/tracks/internal/scene"
)

// Segment draws an interval [x, x+width] spanning [y, y+height], with a
// grab handle at each end. An optional label is drawn inside.
//
// Accessors: x, y (default 0), width, height (default 1), color, opacity
// (default 1) and label. Options: handlerWidth (pixels, default 2).
type Segment[T any] struct {
	base[T]
	body        *scene.Node
	left, right *scene.Node
	label       *scene.Node
	handleWidth float64
}

var _ layer.Shape[int] = (*Segment[int])(nil)

// NewSegment is a layer.ShapeFactory.
func NewSegment[T any](options map[string]any) layer.Shape[T] {
	return &Segment[T]{handleWidth: option(options, "handlerWidth", 2)}
}

func (s *Segment[T]) Category() string { return "segment" }

func (s *Segment[T]) Render(layer.RenderingContext) *scene.Node {
	if s.node != nil {
		return s.node
	}
	s.node = scene.NewGroup()
	s.body = scene.NewLeaf(scene.Box{}, "segment-body")
	s.left = scene.NewLeaf(scene.Box{}, "handle", "left")
	s.right = scene.NewLeaf(scene.Box{}, "handle", "right")
	s.label = scene.NewLeaf(scene.Text{}, "label")
	s.node.AppendChild(s.body)
	s.node.AppendChild(s.left)
	s.node.AppendChild(s.right)
	s.node.AppendChild(s.label)
	return s.node
}

// Extent returns the segment's pixel box in layer coordinates.
func (s *Segment[T]) Extent(rc layer.RenderingContext, datum T) scene.Rect {
	dx := s.float("x", datum, 0)
	dy := s.float("y", datum, 0)
	x := rc.XScale.Map(dx)
	y := rc.YScale.Map(dy)
	w := math.Max(rc.XScale.Map(dx+s.float("width", datum, 1))-x, 0)
	h := math.Max(rc.YScale.Map(dy+s.float("height", datum, 1))-y, 0)
	return scene.Rect{X: x, Y: y, W: w, H: h}
}

func (s *Segment[T]) Update(rc layer.RenderingContext, handle *scene.Node, datum T, _ int) {
	r := s.Extent(rc, datum)
	color := s.color("color", datum, DefaultColor)

	handle.SetTransform(scene.Translate(r.X, r.Y))
	handle.SetOpacity(s.float("opacity", datum, 1))

	s.body.SetPrimitive(scene.Box{W: r.W, H: r.H})
	s.body.SetFill(color)

	hw := math.Min(s.handleWidth, r.W/2)
	s.left.SetPrimitive(scene.Box{W: hw, H: r.H})
	s.left.SetFill(color)
	s.right.SetPrimitive(scene.Box{X: r.W - hw, W: hw, H: r.H})
	s.right.SetFill(color)

	text := s.accessors.String("label", datum, "")
	s.label.SetHidden(text == "")
	s.label.SetPrimitive(scene.Text{X: hw, Y: r.H / 2, Value: text})
}

// HitTest reports a positive-area overlap with the query box.
func (s *Segment[T]) HitTest(rc layer.RenderingContext, datum T, x1, y1, x2, y2 float64) bool {
	r := s.Extent(rc, datum)
	return overlaps(r.X, r.Y, r.X+r.W, r.Y+r.H, x1, y1, x2, y2)
}

// Target names the part of the segment under pixel x (layer coordinates):
// "left" or "right" over a handle, "" over the body.
func (s *Segment[T]) Target(rc layer.RenderingContext, datum T, x float64) string {
	r := s.Extent(rc, datum)
	hw := math.Min(s.handleWidth, r.W/2)
	switch {
	case x < r.X+hw:
		return "left"
	case x >= r.X+r.W-hw:
		return "right"
	default:
		return ""
	}
}
