package behavior

import "github.com/zjrosen/tracks/internal/layer"

// Dot moves points, keeping them within the layer height.
type Dot[T comparable] struct {
	Selection[T]
	mutators Mutators[T]
}

var _ layer.Behavior[int] = (*Dot[int])(nil)

// NewDot edits through mutators "cx" and "cy".
func NewDot[T comparable](m Mutators[T]) *Dot[T] {
	return &Dot[T]{mutators: m}
}

func (b *Dot[T]) Edit(rc layer.RenderingContext, shape layer.Shape[T], datum T, dx, dy float64, _ string) {
	v, ok := values(shape, datum, "cx", "cy")
	if !ok {
		return
	}
	x := rc.XScale.Map(v[0]) + dx
	y := clamp(rc.YScale.Map(v[1])-dy, 0, rc.Height)

	b.mutators.set("cx", datum, rc.XScale.Invert(x))
	b.mutators.set("cy", datum, rc.YScale.Invert(y))
}
