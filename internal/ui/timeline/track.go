package timeline

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/tracks/internal/behavior"
	"github.com/zjrosen/tracks/internal/config"
	"github.com/zjrosen/tracks/internal/dataset"
	"github.com/zjrosen/tracks/internal/identity"
	"github.com/zjrosen/tracks/internal/layer"
	"github.com/zjrosen/tracks/internal/scene"
	"github.com/zjrosen/tracks/internal/shapes"
	"github.com/zjrosen/tracks/internal/timecontext"
)

// ErrUnknownShape is returned for a layer shape name with no factory.
var ErrUnknownShape = errors.New("unknown layer shape")

// Track is one configured dataset drawn as a layer in its own child of the
// root time context.
type Track struct {
	Config  config.LayerConfig
	Layer   *layer.Layer[*dataset.Item]
	Context *timecontext.Context

	// cursor indexes Layer.Items(), -1 when nothing is focused.
	cursor int
}

// TrackOptions carries what every track of a viewer shares.
type TrackOptions struct {
	Registry     *identity.Registry[*dataset.Item]
	Tracer       trace.Tracer
	DebugContext bool
}

// NewTrack builds the layer for cfg over items, bound to a new child of
// root. cfg should already carry its defaults.
func NewTrack(cfg config.LayerConfig, items []*dataset.Item, root *timecontext.Context, top float64, opts TrackOptions) (*Track, error) {
	lo, hi := cfg.Domain()
	layerOpts := []layer.Option{
		layer.WithID(cfg.Name),
		layer.WithHeight(cfg.Height),
		layer.WithTop(top),
		layer.WithYDomain(lo, hi),
		layer.WithOpacity(cfg.Opacity),
		layer.WithDebugContext(opts.DebugContext),
		layer.WithContextHandlerWidth(1),
	}
	if opts.Tracer != nil {
		layerOpts = append(layerOpts, layer.WithTracer(opts.Tracer))
	}
	l := layer.NewCollection(items, opts.Registry, layerOpts...)

	accessors := dataset.Accessors()
	if cfg.Color != "" {
		color := cfg.Color
		accessors["color"] = func(it *dataset.Item) any {
			if it.Color != "" {
				return it.Color
			}
			return color
		}
	}

	mutators := dataset.Mutators()
	switch cfg.Shape {
	case config.ShapeDots:
		l.ConfigureShape(shapes.NewDot[*dataset.Item], accessors, nil)
		l.SetBehavior(behavior.NewDot(mutators))
	case config.ShapeBreakpoints:
		l.ConfigureShape(shapes.NewDot[*dataset.Item], accessors, nil)
		l.ConfigureCommonShape(shapes.NewLine[*dataset.Item], accessors, nil)
		l.SetBehavior(behavior.NewDot(mutators))
	case config.ShapeSegments:
		l.ConfigureShape(shapes.NewSegment[*dataset.Item], accessors, map[string]any{"handlerWidth": 1})
		l.SetBehavior(behavior.NewSegment(mutators))
	case config.ShapeMarkers:
		l.ConfigureShape(shapes.NewMarker[*dataset.Item], accessors, nil)
		l.SetBehavior(behavior.NewMarker(mutators))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, cfg.Shape)
	}

	tc := timecontext.New(root)
	tc.Duration = trackDuration(root.Duration, items)

	if err := l.BindContext(tc); err != nil {
		return nil, fmt.Errorf("binding layer %s: %w", cfg.Name, err)
	}
	if err := l.Render(); err != nil {
		return nil, fmt.Errorf("rendering layer %s: %w", cfg.Name, err)
	}
	return &Track{Config: cfg, Layer: l, Context: tc, cursor: -1}, nil
}

// trackDuration extends the visible duration to the end of the data so
// zooming out reveals items past the configured window.
func trackDuration(base float64, items []*dataset.Item) float64 {
	if _, hi, ok := dataset.Span(items); ok && hi > base {
		return hi
	}
	return base
}

// SetItems replaces the data and reconciles. Items sharing pointers with
// the previous data keep their nodes.
func (t *Track) SetItems(items []*dataset.Item) error {
	if err := t.Layer.SetData(items); err != nil {
		return err
	}
	t.Context.Duration = trackDuration(t.Context.Parent().Duration, items)
	if err := t.Layer.Render(); err != nil {
		return err
	}
	if t.cursor >= len(t.Layer.Items()) {
		t.cursor = len(t.Layer.Items()) - 1
	}
	return nil
}

// Items returns the track's data.
func (t *Track) Items() []*dataset.Item { return t.Layer.Data() }

// Rows is the number of screen rows the track takes, title included.
func (t *Track) Rows() int { return int(t.Config.Height) + 1 }

// Selected returns the handles of selected items in data order.
func (t *Track) Selected() []*scene.Node {
	var out []*scene.Node
	for _, h := range t.Layer.Items() {
		if h.HasClass(behavior.SelectedClass) {
			out = append(out, h)
		}
	}
	return out
}

// Cursor returns the focused item handle, or nil. It is safe on a nil
// track.
func (t *Track) Cursor() *scene.Node {
	if t == nil {
		return nil
	}
	items := t.Layer.Items()
	if t.cursor < 0 || t.cursor >= len(items) {
		return nil
	}
	return items[t.cursor]
}

// CursorItem returns the focused datum, or nil.
func (t *Track) CursorItem() *dataset.Item {
	h := t.Cursor()
	if h == nil {
		return nil
	}
	it, _ := t.Layer.DatumFromItem(h)
	return it
}

// MoveCursor steps the cursor by delta, wrapping around.
func (t *Track) MoveCursor(delta int) {
	n := len(t.Layer.Items())
	if n == 0 {
		t.cursor = -1
		return
	}
	if t.cursor < 0 {
		if delta > 0 {
			t.cursor = 0
		} else {
			t.cursor = n - 1
		}
		return
	}
	t.cursor = ((t.cursor+delta)%n + n) % n
}

// SetCursorTo focuses handle when it belongs to the track.
func (t *Track) SetCursorTo(handle *scene.Node) {
	for i, h := range t.Layer.Items() {
		if h == handle {
			t.cursor = i
			return
		}
	}
}
