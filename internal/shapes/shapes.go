// Package shapes provides the item shapes layers draw with: dots for
// points, segments for intervals, markers for instants and the line joining
// a breakpoint function. Every shape reads its values through accessors
// configured by the layer and falls back to a default for a missing one.
package shapes

import (
	"github.com/zjrosen/tracks/internal/layer"
	"github.com/zjrosen/tracks/internal/scene"
)

// Default colours.
const (
	DefaultColor       = "#000000"
	DefaultMarkerColor = "#ff0000"
)

// base holds what every shape shares: its node and accessors.
type base[T any] struct {
	node      *scene.Node
	accessors layer.Accessors[T]
	destroyed bool
}

func (b *base[T]) Configure(a layer.Accessors[T]) { b.accessors = a }

// Accessors returns the configured accessors.
func (b *base[T]) Accessors() layer.Accessors[T] { return b.accessors }

func (b *base[T]) Destroy() {
	b.destroyed = true
	if b.node != nil {
		b.node.Remove()
	}
}

func (b *base[T]) float(name string, d T, def float64) float64 {
	return b.accessors.Float(name, d, def)
}

func (b *base[T]) color(name string, d T, def string) string {
	return b.accessors.String(name, d, def)
}

// option reads a numeric option, accepting ints as well as floats.
func option(options map[string]any, name string, def float64) float64 {
	switch v := options[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

// overlaps reports whether [a1,a2]x[b1,b2] and the query box share a
// positive area.
func overlaps(ax1, ay1, ax2, ay2, x1, y1, x2, y2 float64) bool {
	xOverlap := max(0, min(x2, ax2)-max(x1, ax1))
	yOverlap := max(0, min(y2, ay2)-max(y1, ay1))
	return xOverlap*yOverlap > 0
}
