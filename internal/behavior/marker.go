package behavior

import "github.com/zjrosen/tracks/internal/layer"

// Marker moves instants horizontally.
type Marker[T comparable] struct {
	Selection[T]
	mutators Mutators[T]
}

var _ layer.Behavior[int] = (*Marker[int])(nil)

// NewMarker edits through mutator "x".
func NewMarker[T comparable](m Mutators[T]) *Marker[T] {
	return &Marker[T]{mutators: m}
}

func (b *Marker[T]) Edit(rc layer.RenderingContext, shape layer.Shape[T], datum T, dx, _ float64, _ string) {
	v, ok := values(shape, datum, "x")
	if !ok {
		return
	}
	b.mutators.set("x", datum, rc.XScale.Invert(rc.XScale.Map(v[0])+dx))
}
