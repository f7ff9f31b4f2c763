// Package behavior implements selection and editing for layer items.
//
// Edits arrive as pixel deltas in screen orientation (dy grows downward).
// Behaviors read current values through the shape's accessors, convert the
// moved pixel position back to data units with the layer scales, and write
// the result with caller-supplied Mutators.
package behavior

import (
	"slices"

	"github.com/zjrosen/tracks/internal/layer"
	"github.com/zjrosen/tracks/internal/scene"
)

// SelectedClass is added to the node of every selected item.
const SelectedClass = "selected"

// Mutators writes values back into a datum, keyed by accessor name. A
// missing mutator leaves that value unchanged. T is normally a pointer.
type Mutators[T any] map[string]func(datum T, value float64)

func (m Mutators[T]) set(name string, d T, v float64) {
	if fn, ok := m[name]; ok {
		fn(d, v)
	}
}

// Selection keeps the set of selected items in selection order. It does not
// edit; embed it in a behavior that does.
type Selection[T comparable] struct {
	layer    *layer.Layer[T]
	selected []T
}

var _ layer.Behavior[int] = (*Selection[int])(nil)

// NewSelection returns a behavior that selects but ignores edits.
func NewSelection[T comparable]() *Selection[T] {
	return &Selection[T]{}
}

func (s *Selection[T]) Initialize(l *layer.Layer[T]) {
	s.layer = l
	s.selected = nil
}

// Layer returns the layer the behavior was installed on.
func (s *Selection[T]) Layer() *layer.Layer[T] { return s.layer }

func (s *Selection[T]) Select(handle *scene.Node, datum T) {
	handle.AddClass(SelectedClass)
	if !slices.Contains(s.selected, datum) {
		s.selected = append(s.selected, datum)
	}
}

func (s *Selection[T]) Unselect(handle *scene.Node, datum T) {
	handle.RemoveClass(SelectedClass)
	s.selected = slices.DeleteFunc(s.selected, func(d T) bool { return d == datum })
}

func (s *Selection[T]) ToggleSelection(handle *scene.Node, datum T) {
	if s.IsSelected(datum) {
		s.Unselect(handle, datum)
		return
	}
	s.Select(handle, datum)
}

// IsSelected reports whether datum is selected.
func (s *Selection[T]) IsSelected(datum T) bool {
	return slices.Contains(s.selected, datum)
}

func (s *Selection[T]) SelectedItems() []T {
	return slices.Clone(s.selected)
}

func (s *Selection[T]) Edit(layer.RenderingContext, layer.Shape[T], T, float64, float64, string) {}

// values reads accessor values through the shape, reporting false when the
// shape does not expose its accessors.
func values[T any](shape layer.Shape[T], datum T, names ...string) ([]float64, bool) {
	src, ok := shape.(layer.AccessorSource[T])
	if !ok {
		return nil, false
	}
	a := src.Accessors()
	out := make([]float64, len(names))
	for i, n := range names {
		out[i] = a.Float(n, datum, 0)
	}
	return out, true
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
