package timeline

import (
	"math"

	"github.com/zjrosen/tracks/internal/log"
	"github.com/zjrosen/tracks/internal/timecontext"
)

// Zoom limits and steps.
const (
	MinRatio = 0.05
	MaxRatio = 500.0

	// zoomStep is the keyboard zoom factor.
	zoomStep = 1.25

	// dragBase is the zoom factor per row of vertical drag on the axis.
	// A pointer drag zooms by 1.005 per pixel; a terminal row is about
	// twenty pixels tall.
	dragBase = 1.105
)

// dragFactor converts a vertical drag in rows to a zoom factor. Dragging
// up zooms in.
func dragFactor(dy int) float64 {
	f := math.Pow(dragBase, math.Abs(float64(dy)))
	if dy > 0 {
		return 1 / f
	}
	return f
}

func clampRatio(r float64) float64 {
	return min(max(r, MinRatio), MaxRatio)
}

// zoomAt multiplies the stretch ratio of tc by factor and returns the new
// scroll position keeping the time under column anchor in place.
func zoomAt(tc *timecontext.Context, scroll, factor, anchor float64) (float64, error) {
	xs := tc.XScale()
	if xs == nil {
		return scroll, nil
	}
	t := xs.Invert(anchor) + scroll

	ratio := clampRatio(tc.StretchRatio() * factor)
	if err := tc.SetStretchRatio(ratio); err != nil {
		return scroll, err
	}
	next := tc.XScale().Invert(anchor)
	log.Debug(log.CatContext, "zoom", "ratio", ratio, "anchor", anchor, "time", t)
	return t - next, nil
}

// visibleSpan returns the time span covered by width columns in tc.
func visibleSpan(tc *timecontext.Context, width float64) float64 {
	xs := tc.XScale()
	if xs == nil {
		return 0
	}
	return xs.Invert(width) - xs.Invert(0)
}
