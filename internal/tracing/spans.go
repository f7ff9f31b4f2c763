package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanLayerRender  = "layer.render"
	SpanLayerUpdate  = "layer.update"
	SpanLayerEdit    = "layer.edit"
	SpanDatasetLoad  = "dataset.load"
	SpanDatasetMerge = "dataset.merge"
)

// Attribute keys.
const (
	AttrLayerID      = "layer.id"
	AttrLayerKind    = "layer.kind"
	AttrShape        = "layer.shape"
	AttrItemsEntered = "items.entered"
	AttrItemsExited  = "items.exited"
	AttrItemsBound   = "items.bound"
	AttrItemsUpdated = "items.updated"
	AttrEditTarget   = "edit.target"
	AttrDatasetPath  = "dataset.path"
	AttrDatasetItems = "dataset.items"
	AttrCacheHit     = "cache.hit"
)

// Event names.
const (
	EventCommonShapeCreated = "common_shape.created"
	EventContextEdited      = "context.edited"
)

// EndSpan records err (if any) on span and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
