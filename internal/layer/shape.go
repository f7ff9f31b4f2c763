package layer

import (
	"github.com/zjrosen/tracks/internal/scene"
)

// Accessors maps accessor names (such as "cx" or "width") to functions that
// read the value from a datum. Shapes fall back to their own defaults for
// names that are absent.
type Accessors[T any] map[string]func(T) any

// Float reads accessor name from d as a float64, or def when the accessor is
// missing or yields a non-numeric value.
func (a Accessors[T]) Float(name string, d T, def float64) float64 {
	fn, ok := a[name]
	if !ok {
		return def
	}
	switch v := fn(d).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// String reads accessor name from d as a string, or def when it is missing
// or empty.
func (a Accessors[T]) String(name string, d T, def string) string {
	fn, ok := a[name]
	if !ok {
		return def
	}
	if s, ok := fn(d).(string); ok && s != "" {
		return s
	}
	return def
}

// Shape draws one datum.
//
// Render must be idempotent: every call returns the same node. Update
// positions that node for datum. The layer never calls back into Render or
// Update from inside either of them, and shapes must not call the layer's
// Render or Update themselves.
type Shape[T any] interface {
	Render(rc RenderingContext) *scene.Node
	Update(rc RenderingContext, handle *scene.Node, datum T, index int)
	// HitTest reports whether datum lies in the pixel box (x1,y1)-(x2,y2),
	// given in the layer's flipped coordinates.
	HitTest(rc RenderingContext, datum T, x1, y1, x2, y2 float64) bool
	Destroy()
	Configure(accessors Accessors[T])
	// Category is the class name added to the item node, e.g. "dot".
	Category() string
}

// CommonShape draws a whole dataset at once, like the line joining the
// points of a breakpoint function.
type CommonShape[T any] interface {
	Render(rc RenderingContext) *scene.Node
	UpdateAll(rc RenderingContext, handle *scene.Node, data []T)
	Destroy()
	Configure(accessors Accessors[T])
	Category() string
}

// AccessorSource is implemented by shapes that expose the accessors they
// were configured with, so behaviors read values the way the shape draws
// them.
type AccessorSource[T any] interface {
	Accessors() Accessors[T]
}

// ShapeFactory builds a fresh shape from layer-supplied options.
type ShapeFactory[T any] func(options map[string]any) Shape[T]

// CommonShapeFactory builds the layer's single common shape.
type CommonShapeFactory[T any] func(options map[string]any) CommonShape[T]

// Behavior reacts to selection and editing of a layer's items.
type Behavior[T comparable] interface {
	Initialize(l *Layer[T])
	Select(handle *scene.Node, datum T)
	Unselect(handle *scene.Node, datum T)
	ToggleSelection(handle *scene.Node, datum T)
	// Edit applies a pixel delta to datum. target names the grabbed part
	// of the shape, for example the left handle of a segment.
	Edit(rc RenderingContext, shape Shape[T], datum T, dx, dy float64, target string)
	SelectedItems() []T
}

type shapeConfig[T any] struct {
	factory   ShapeFactory[T]
	accessors Accessors[T]
	options   map[string]any
}

type commonShapeConfig[T any] struct {
	factory   CommonShapeFactory[T]
	accessors Accessors[T]
	options   map[string]any
}
