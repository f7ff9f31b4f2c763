package behavior

import "github.com/zjrosen/tracks/internal/layer"

// Segment edit targets.
const (
	TargetLeft  = "left"
	TargetRight = "right"
)

// minSegmentWidth is the narrowest a resize can make a segment, in pixels.
const minSegmentWidth = 1

// Segment moves and resizes intervals. Target "left" drags the start
// keeping the end, "right" drags the end, anything else moves the whole
// segment.
type Segment[T comparable] struct {
	Selection[T]
	mutators Mutators[T]
}

var _ layer.Behavior[int] = (*Segment[int])(nil)

// NewSegment edits through mutators "x", "y" and "width".
func NewSegment[T comparable](m Mutators[T]) *Segment[T] {
	return &Segment[T]{mutators: m}
}

func (b *Segment[T]) Edit(rc layer.RenderingContext, shape layer.Shape[T], datum T, dx, dy float64, target string) {
	v, ok := values(shape, datum, "x", "y", "width", "height")
	if !ok {
		return
	}
	x0 := rc.XScale.Map(v[0])
	x1 := rc.XScale.Map(v[0] + v[2])

	switch target {
	case TargetLeft:
		nx := min(x0+dx, x1-minSegmentWidth)
		b.setSpan(rc, datum, nx, x1)
	case TargetRight:
		nx1 := max(x1+dx, x0+minSegmentWidth)
		b.setSpan(rc, datum, x0, nx1)
	default:
		y0 := rc.YScale.Map(v[1])
		h := rc.YScale.Map(v[1]+v[3]) - y0
		ny := clamp(y0-dy, 0, max(rc.Height-h, 0))
		nx := max(x0+dx, 0)

		b.mutators.set("x", datum, rc.XScale.Invert(nx))
		b.mutators.set("y", datum, rc.YScale.Invert(ny))
	}
}

func (b *Segment[T]) setSpan(rc layer.RenderingContext, datum T, px0, px1 float64) {
	start := rc.XScale.Invert(px0)
	b.mutators.set("x", datum, start)
	b.mutators.set("width", datum, rc.XScale.Invert(px1)-start)
}
