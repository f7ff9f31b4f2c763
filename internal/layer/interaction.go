package layer

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/tracks/internal/pubsub"
	"github.com/zjrosen/tracks/internal/scene"
	"github.com/zjrosen/tracks/internal/tracing"
)

// targets returns handles, or every item when none are given.
func (l *Layer[T]) targets(handles []*scene.Node) []*scene.Node {
	if len(handles) == 0 {
		return slices.Clone(l.items)
	}
	return handles
}

// Select marks the given items (all items when none are given) as selected
// and brings them to the front. Without a behavior it does nothing.
func (l *Layer[T]) Select(handles ...*scene.Node) {
	if l.behavior == nil {
		return
	}
	for _, h := range l.targets(handles) {
		b, ok := l.bindings[h]
		if !ok {
			continue
		}
		l.behavior.Select(h, b.datum)
		l.offset.AppendChild(h)
	}
}

// Unselect clears the selection of the given items, or of all items.
func (l *Layer[T]) Unselect(handles ...*scene.Node) {
	if l.behavior == nil {
		return
	}
	for _, h := range l.targets(handles) {
		if b, ok := l.bindings[h]; ok {
			l.behavior.Unselect(h, b.datum)
		}
	}
}

// ToggleSelection flips the selection of the given items, or of all items.
func (l *Layer[T]) ToggleSelection(handles ...*scene.Node) {
	if l.behavior == nil {
		return
	}
	for _, h := range l.targets(handles) {
		if b, ok := l.bindings[h]; ok {
			l.behavior.ToggleSelection(h, b.datum)
		}
	}
}

// Edit asks the behavior to apply a pixel delta to each item and publishes
// an Edit event per item. The caller redraws with UpdateShapes.
func (l *Layer[T]) Edit(handles []*scene.Node, dx, dy float64, target string) {
	if l.behavior == nil {
		return
	}
	for _, h := range handles {
		b, ok := l.bindings[h]
		if !ok {
			continue
		}
		_, span := l.tracer.Start(context.Background(), tracing.SpanLayerEdit)
		span.SetAttributes(
			attribute.String(tracing.AttrLayerID, l.params.ID),
			attribute.String(tracing.AttrEditTarget, target),
		)
		l.behavior.Edit(l.rc, l.shapes[h], b.datum, dx, dy, target)
		tracing.EndSpan(span, nil)

		l.events.Publish(pubsub.EditedEvent, Edit[T]{
			LayerID: l.params.ID,
			Datum:   b.datum,
			Target:  target,
			DX:      dx,
			DY:      dy,
		})
	}
}

// SelectedItems returns the behavior's selection, or nil without a behavior.
func (l *Layer[T]) SelectedItems() []T {
	if l.behavior == nil {
		return nil
	}
	return l.behavior.SelectedItems()
}
