package layer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/tracks/internal/log"
	"github.com/zjrosen/tracks/internal/scene"
	"github.com/zjrosen/tracks/internal/tracing"
)

// Render reconciles the item nodes with the layer data.
//
// Every datum gets an id from the registry. A datum whose id is already
// bound keeps its shape and node; a datum without a binding gets a new shape
// whose node is appended to the items group; a binding whose id is no longer
// in the data has its shape destroyed, its node removed and its id released.
// A datum listed more than once is bound once.
//
// The common shape, when configured, is created on the first Render and
// never again.
func (l *Layer[T]) Render() (err error) {
	if l.shapeCfg == nil {
		return ErrShapeNotConfigured
	}
	if l.tc == nil {
		return ErrContextNotBound
	}

	_, span := l.tracer.Start(context.Background(), tracing.SpanLayerRender)
	defer func() { tracing.EndSpan(span, err) }()
	span.SetAttributes(
		attribute.String(tracing.AttrLayerID, l.params.ID),
		attribute.String(tracing.AttrLayerKind, l.dataType.String()),
	)

	start := time.Now()

	if l.commonCfg != nil && l.common == nil {
		l.createCommonShape()
		span.AddEvent(tracing.EventCommonShapeCreated)
	}

	items := make([]*scene.Node, 0, len(l.data))
	live := make(map[*scene.Node]struct{}, len(l.data))
	entered := 0

	for _, d := range l.data {
		id := l.registry.Ensure(d)
		if h, ok := l.byKey[id]; ok {
			if _, dup := live[h]; dup {
				continue
			}
			l.bindings[h].datum = d
			live[h] = struct{}{}
			items = append(items, h)
			continue
		}

		shape := l.shapeCfg.factory(l.shapeCfg.options)
		shape.Configure(l.shapeCfg.accessors)
		h := shape.Render(l.rc)
		h.AddClass("item", shape.Category())
		l.offset.AppendChild(h)

		l.shapes[h] = shape
		l.bindings[h] = &binding[T]{datum: d, id: id}
		l.byKey[id] = h
		live[h] = struct{}{}
		items = append(items, h)
		entered++
	}

	exited := 0
	for _, h := range l.items {
		if _, ok := live[h]; ok {
			continue
		}
		l.unbind(h)
		exited++
	}
	l.items = items

	l.stats.RecordRender(entered, exited, len(items), time.Since(start), time.Now())
	span.SetAttributes(
		attribute.Int(tracing.AttrItemsEntered, entered),
		attribute.Int(tracing.AttrItemsExited, exited),
		attribute.Int(tracing.AttrItemsBound, len(items)),
	)
	log.Debug(log.CatLayer, "render", "layer", l.params.ID, "entered", entered, "exited", exited, "bound", len(items))
	return nil
}

func (l *Layer[T]) createCommonShape() {
	shape := l.commonCfg.factory(l.commonCfg.options)
	shape.Configure(l.commonCfg.accessors)

	group := scene.NewGroup("item", "common", shape.Category())
	group.AppendChild(shape.Render(l.rc))
	l.offset.AppendChild(group)

	l.common = shape
	l.commonHandle = group
}

func (l *Layer[T]) unbind(h *scene.Node) {
	b := l.bindings[h]
	l.shapes[h].Destroy()
	h.Remove()

	l.registry.Release(b.datum, b.id)
	if l.byKey[b.id] == h {
		delete(l.byKey, b.id)
	}
	delete(l.shapes, h)
	delete(l.bindings, h)
}

// Update refreshes the container and then every shape.
func (l *Layer[T]) Update() error {
	if err := l.UpdateContainer(); err != nil {
		return err
	}
	return l.UpdateShapes(nil)
}

// UpdateContainer applies the time context to the layer's own nodes: the
// flip matrix placing the layer at its context start and top, the clip, the
// opacity, the offset translation and the context edit region.
func (l *Layer[T]) UpdateContainer() error {
	if err := l.refreshRenderingContext(); err != nil {
		return err
	}

	tc := l.tc
	xs := l.rc.XScale
	width := l.rc.Width
	height := l.params.Height

	// Start is relative to the parent context.
	x := xs.Map(tc.Start)
	if p := tc.Parent(); p != nil {
		if ps := p.XScale(); ps != nil {
			x = ps.Map(tc.Start)
		}
	}

	l.root.SetTransform(scene.FlipY(x, l.params.Top+height))
	l.boundingBox.SetClip(width, height)
	l.boundingBox.SetOpacity(l.params.Opacity)
	l.offset.SetTransform(scene.Translate(l.rc.OffsetX, 0))

	l.contextShape.Update(l.rc, l.contextNode, tc, 0)

	if l.debugRect != nil {
		l.debugRect.SetPrimitive(scene.Box{W: width, H: height})
	}
	return nil
}

// UpdateShapes redraws the common shape with the full dataset, then either
// the single item handle or, when handle is nil, every item.
// An unknown handle only refreshes the common shape.
func (l *Layer[T]) UpdateShapes(handle *scene.Node) (err error) {
	if err := l.refreshRenderingContext(); err != nil {
		return err
	}

	_, span := l.tracer.Start(context.Background(), tracing.SpanLayerUpdate)
	defer func() { tracing.EndSpan(span, err) }()

	if l.common != nil {
		l.common.UpdateAll(l.rc, l.commonHandle, l.data)
	}

	updated := 0
	for i, h := range l.items {
		if handle != nil && h != handle {
			continue
		}
		l.shapes[h].Update(l.rc, h, l.bindings[h].datum, i)
		updated++
	}

	l.stats.RecordUpdate()
	span.SetAttributes(
		attribute.String(tracing.AttrLayerID, l.params.ID),
		attribute.Int(tracing.AttrItemsUpdated, updated),
	)
	return nil
}
