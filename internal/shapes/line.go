package shapes

import (
	"cmp"
	"slices"

	"github.com/zjrosen/tracks/internal/layer"
	"github.com/zjrosen/tracks/internal/scene"
)

// Line joins every datum of a layer in x order. It is a common shape, one
// per layer, typically paired with dots to draw a breakpoint function.
//
// Accessors: cx, cy (default 0) and color.
type Line[T any] struct {
	base[T]
}

var _ layer.CommonShape[int] = (*Line[int])(nil)

// NewLine is a layer.CommonShapeFactory.
func NewLine[T any](map[string]any) layer.CommonShape[T] {
	return &Line[T]{}
}

func (l *Line[T]) Category() string { return "line" }

func (l *Line[T]) Render(layer.RenderingContext) *scene.Node {
	if l.node == nil {
		l.node = scene.NewLeaf(scene.Polyline{})
	}
	return l.node
}

func (l *Line[T]) UpdateAll(rc layer.RenderingContext, _ *scene.Node, data []T) {
	points := make([]scene.Point, 0, len(data))
	for _, d := range data {
		points = append(points, scene.Point{
			X: rc.XScale.Map(l.float("cx", d, 0)),
			Y: rc.YScale.Map(l.float("cy", d, 0)),
		})
	}
	slices.SortStableFunc(points, func(a, b scene.Point) int { return cmp.Compare(a.X, b.X) })

	l.node.SetPrimitive(scene.Polyline{Points: points})
	if len(data) > 0 {
		l.node.SetFill(l.color("color", data[0], DefaultColor))
	}
}
