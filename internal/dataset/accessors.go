package dataset

import (
	"github.com/zjrosen/tracks/internal/behavior"
	"github.com/zjrosen/tracks/internal/layer"
)

// Accessors exposes Item fields under the names every shape in
// internal/shapes reads: dots read cx/cy, segments x/y/width/height/label,
// markers x. Empty colours fall back to the shape default.
func Accessors() layer.Accessors[*Item] {
	return layer.Accessors[*Item]{
		"cx":     func(it *Item) any { return it.X },
		"cy":     func(it *Item) any { return it.Y },
		"x":      func(it *Item) any { return it.X },
		"y":      func(it *Item) any { return it.Y },
		"width":  func(it *Item) any { return it.Width },
		"height": func(it *Item) any { return it.Height },
		"label":  func(it *Item) any { return it.Label },
		"color":  func(it *Item) any { return it.Color },
	}
}

// Mutators writes edits back into Item fields.
func Mutators() behavior.Mutators[*Item] {
	return behavior.Mutators[*Item]{
		"cx":     func(it *Item, v float64) { it.X = v },
		"cy":     func(it *Item, v float64) { it.Y = v },
		"x":      func(it *Item, v float64) { it.X = v },
		"y":      func(it *Item, v float64) { it.Y = v },
		"width":  func(it *Item, v float64) { it.Width = v },
		"height": func(it *Item, v float64) { it.Height = v },
	}
}
