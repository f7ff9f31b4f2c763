// Package layer draws a dataset inside a time context.
//
// A Layer keeps a keyed binding between data items and the scene nodes that
// represent them. Render reconciles the bindings with the current data:
// items seen before keep their shape and node, new items get a fresh shape,
// and items that disappeared have their shape destroyed. Keys come from an
// identity.Registry, so an item is matched by identity rather than position.
//
// The layer's subtree looks like this:
//
//	layer            flip matrix, context start and top
//	  bounding-box   clip to context width and layer height, opacity
//	    offset items context offset; one child per item
//	    interactions context edit region, hidden unless editable
//	    debug        optional rectangle showing the context extent
//
// Everything runs synchronously on the caller's goroutine. Shapes and
// behaviors must not call back into Render or Update.
package layer

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/tracks/internal/identity"
	"github.com/zjrosen/tracks/internal/log"
	"github.com/zjrosen/tracks/internal/metrics"
	"github.com/zjrosen/tracks/internal/pubsub"
	"github.com/zjrosen/tracks/internal/scale"
	"github.com/zjrosen/tracks/internal/scene"
	"github.com/zjrosen/tracks/internal/timecontext"
	"github.com/zjrosen/tracks/internal/tracing"
)

// Edit is published on Events after a behavior edited a datum.
type Edit[T any] struct {
	LayerID string
	Datum   T
	Target  string
	DX, DY  float64
}

type binding[T any] struct {
	datum T
	id    uint64
}

// Layer renders data of type T with a configured shape.
type Layer[T comparable] struct {
	dataType DataType
	data     []T
	params   Params
	registry *identity.Registry[T]
	tracer   trace.Tracer

	tc     *timecontext.Context
	rc     RenderingContext
	yScale *scale.Linear

	root         *scene.Node
	boundingBox  *scene.Node
	offset       *scene.Node
	interactions *scene.Node
	debugRect    *scene.Node
	contextShape *contextRegion
	contextNode  *scene.Node
	editable     bool

	shapeCfg  *shapeConfig[T]
	commonCfg *commonShapeConfig[T]

	// shapes and bindings always share the same key set.
	shapes   map[*scene.Node]Shape[T]
	bindings map[*scene.Node]*binding[T]
	byKey    map[uint64]*scene.Node
	items    []*scene.Node

	common       CommonShape[T]
	commonHandle *scene.Node

	behavior Behavior[T]
	events   *pubsub.Broker[Edit[T]]
	stats    metrics.RenderStats
}

// NewEntity creates a layer drawing a single datum.
// A nil registry gives the layer a private one.
func NewEntity[T comparable](datum T, registry *identity.Registry[T], opts ...Option) *Layer[T] {
	return newLayer(Entity, []T{datum}, registry, opts)
}

// NewCollection creates a layer drawing every element of data in order.
// A nil registry gives the layer a private one.
func NewCollection[T comparable](data []T, registry *identity.Registry[T], opts ...Option) *Layer[T] {
	return newLayer(Collection, data, registry, opts)
}

func newLayer[T comparable](dt DataType, data []T, registry *identity.Registry[T], opts []Option) *Layer[T] {
	o := options{params: DefaultParams()}
	for _, opt := range opts {
		opt(&o)
	}
	if registry == nil {
		registry = identity.New[T]()
	}
	if o.tracer == nil {
		o.tracer = tracing.Noop()
	}

	l := &Layer[T]{
		dataType: dt,
		data:     data,
		params:   o.params,
		registry: registry,
		tracer:   o.tracer,
		yScale:   scale.NewLinear(o.params.YDomain[0], o.params.YDomain[1], 0, o.params.Height),
		shapes:   make(map[*scene.Node]Shape[T]),
		bindings: make(map[*scene.Node]*binding[T]),
		byKey:    make(map[uint64]*scene.Node),
		events:   pubsub.NewBroker[Edit[T]](),
	}
	l.buildContainer()
	return l
}

func (l *Layer[T]) buildContainer() {
	l.root = scene.NewGroup("layer")
	l.boundingBox = scene.NewGroup("bounding-box")
	l.offset = scene.NewGroup("offset", "items")
	l.interactions = scene.NewGroup("interactions")
	l.interactions.SetHidden(true)

	l.contextShape = newContextRegion(l.params.ContextHandlerWidth)
	l.contextShape.Configure(Accessors[*timecontext.Context]{
		"width":  func(tc *timecontext.Context) any { return tc.Duration },
		"height": func(*timecontext.Context) any { return l.params.YDomain[1] - l.params.YDomain[0] },
		"y":      func(*timecontext.Context) any { return l.params.YDomain[0] },
	})
	l.contextNode = l.contextShape.Render(l.rc)
	l.interactions.AppendChild(l.contextNode)

	l.root.AppendChild(l.boundingBox)
	l.boundingBox.AppendChild(l.offset)
	l.boundingBox.AppendChild(l.interactions)

	if l.params.DebugContext {
		l.debugRect = scene.NewLeaf(scene.Box{}, "debug")
		l.debugRect.SetFill("#ababab")
		l.debugRect.SetOpacity(0.1)
		l.boundingBox.AppendChild(l.debugRect)
	}
}

// ConfigureShape sets the factory used for every item. It takes effect for
// items entering on the next Render.
func (l *Layer[T]) ConfigureShape(factory ShapeFactory[T], accessors Accessors[T], options map[string]any) {
	l.shapeCfg = &shapeConfig[T]{factory: factory, accessors: accessors, options: options}
}

// ConfigureCommonShape sets the factory for the shape drawing the whole
// dataset. Only one common shape is ever created per layer.
func (l *Layer[T]) ConfigureCommonShape(factory CommonShapeFactory[T], accessors Accessors[T], options map[string]any) {
	l.commonCfg = &commonShapeConfig[T]{factory: factory, accessors: accessors, options: options}
}

// SetBehavior installs b after calling its Initialize. A previous behavior
// is dropped as is; its selection state is not carried over.
func (l *Layer[T]) SetBehavior(b Behavior[T]) {
	b.Initialize(l)
	l.behavior = b
}

// BindContext sets the time context the layer is drawn in.
func (l *Layer[T]) BindContext(tc *timecontext.Context) error {
	if tc == nil || tc.XScale() == nil {
		return ErrNoScale
	}
	l.tc = tc
	return l.refreshRenderingContext()
}

// TimeContext returns the bound context, or nil.
func (l *Layer[T]) TimeContext() *timecontext.Context { return l.tc }

func (l *Layer[T]) refreshRenderingContext() error {
	if l.tc == nil {
		return ErrContextNotBound
	}
	xs := l.tc.XScale()
	if xs == nil {
		return ErrNoScale
	}
	l.rc = RenderingContext{
		XScale:  xs,
		YScale:  l.yScale,
		Width:   xs.Map(l.tc.Duration),
		Height:  l.params.Height,
		OffsetX: xs.Map(l.tc.Offset),
	}
	return nil
}

// DataType reports whether the layer is an entity or a collection.
func (l *Layer[T]) DataType() DataType { return l.dataType }

// Data returns the layer's data. For entity layers this is a one-element
// slice whose backing array survives SetDatum.
func (l *Layer[T]) Data() []T { return l.data }

// SetData replaces the data of a collection layer. Call Render to reconcile.
func (l *Layer[T]) SetData(data []T) error {
	if l.dataType != Collection {
		return ErrDataTypeMismatch
	}
	l.data = data
	return nil
}

// SetDatum replaces the datum of an entity layer in place.
func (l *Layer[T]) SetDatum(datum T) error {
	if l.dataType != Entity {
		return ErrDataTypeMismatch
	}
	if len(l.data) == 0 {
		l.data = []T{datum}
		return nil
	}
	l.data[0] = datum
	return nil
}

// Params returns a copy of the layer parameters.
func (l *Layer[T]) Params() Params { return l.params }

// SetYDomain changes the value range mapped onto the layer height.
func (l *Layer[T]) SetYDomain(lo, hi float64) {
	l.params.YDomain = [2]float64{lo, hi}
	l.yScale.SetDomain(lo, hi)
}

// SetOpacity changes the opacity applied by the next UpdateContainer.
func (l *Layer[T]) SetOpacity(v float64) { l.params.Opacity = v }

// SetHeight changes the layer height and the y scale's pixel range.
func (l *Layer[T]) SetHeight(h float64) {
	l.params.Height = h
	l.yScale.SetRange(0, h)
}

// SetTop moves the layer vertically within the stack.
func (l *Layer[T]) SetTop(top float64) { l.params.Top = top }

// SetContextEditable shows or hides the context edit region.
func (l *Layer[T]) SetContextEditable(editable bool) {
	l.editable = editable
	l.interactions.SetHidden(!editable)
}

// ContextEditable reports whether the context edit region is shown.
func (l *Layer[T]) ContextEditable() bool { return l.editable }

// Node returns the layer's root node, to be appended into a scene.
func (l *Layer[T]) Node() *scene.Node { return l.root }

// ContextShape returns the shape drawing the context edit region.
func (l *Layer[T]) ContextShape() Shape[*timecontext.Context] { return l.contextShape }

// RenderingContext returns the context passed to shapes on the last update.
func (l *Layer[T]) RenderingContext() RenderingContext { return l.rc }

// Items returns the item nodes in data order.
func (l *Layer[T]) Items() []*scene.Node { return slices.Clone(l.items) }

// Stats returns reconciliation counters.
func (l *Layer[T]) Stats() metrics.RenderStats { return l.stats }

// Events subscribes to edit notifications until ctx is done.
func (l *Layer[T]) Events(ctx context.Context) <-chan pubsub.Event[Edit[T]] {
	return l.events.Subscribe(ctx)
}

// Close ends all event subscriptions.
func (l *Layer[T]) Close() {
	l.events.Close()
	log.Debug(log.CatLayer, "closed", "layer", l.params.ID)
}
