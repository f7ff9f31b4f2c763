package shapes

import (
	"github.com/zjrosen/tracks/internal/layer"
	"github.com/zjrosen/tracks/internal/scene"
)

// Dot draws a datum as a disc at (cx, cy).
//
// Accessors: cx, cy (data units, default 0), r (pixels, default 3) and
// color.
type Dot[T any] struct {
	base[T]
}

var _ layer.Shape[int] = (*Dot[int])(nil)

// NewDot is a layer.ShapeFactory.
func NewDot[T any](map[string]any) layer.Shape[T] {
	return &Dot[T]{}
}

func (d *Dot[T]) Category() string { return "dot" }

func (d *Dot[T]) Render(layer.RenderingContext) *scene.Node {
	if d.node == nil {
		d.node = scene.NewLeaf(scene.Circle{R: 3})
	}
	return d.node
}

func (d *Dot[T]) center(rc layer.RenderingContext, datum T) (float64, float64) {
	return rc.XScale.Map(d.float("cx", datum, 0)), rc.YScale.Map(d.float("cy", datum, 0))
}

func (d *Dot[T]) Update(rc layer.RenderingContext, handle *scene.Node, datum T, _ int) {
	cx, cy := d.center(rc, datum)
	handle.SetTransform(scene.Translate(cx, cy))
	d.node.SetPrimitive(scene.Circle{R: d.float("r", datum, 3)})
	d.node.SetFill(d.color("color", datum, DefaultColor))
}

// HitTest uses strict inequalities: a centre on the query border is out.
func (d *Dot[T]) HitTest(rc layer.RenderingContext, datum T, x1, y1, x2, y2 float64) bool {
	cx, cy := d.center(rc, datum)
	return cx > x1 && cx < x2 && cy > y1 && cy < y2
}
