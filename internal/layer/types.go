package layer

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/tracks/internal/scale"
)

// DataType says whether a layer draws one datum or a sequence.
type DataType int

const (
	Entity DataType = iota
	Collection
)

func (d DataType) String() string {
	if d == Entity {
		return "entity"
	}
	return "collection"
}

// RenderingContext is what shapes need to convert data to pixels. It is
// rebuilt from the time context before every update, since a stretch can
// swap the x scale.
type RenderingContext struct {
	XScale *scale.Linear
	YScale *scale.Linear
	Width  float64
	Height float64
	// OffsetX is the context offset in pixels.
	OffsetX float64
}

// Area is a query rectangle in pixels, with Top measured downward from the
// top of the layer stack.
type Area struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Params are the layer's layout parameters.
type Params struct {
	Height              float64
	Top                 float64
	ID                  string
	YDomain             [2]float64
	Opacity             float64
	DebugContext        bool
	ContextHandlerWidth float64
}

// DefaultParams returns height 100, y domain [0,1], full opacity and 2px
// context handles.
func DefaultParams() Params {
	return Params{
		Height:              100,
		YDomain:             [2]float64{0, 1},
		Opacity:             1,
		ContextHandlerWidth: 2,
	}
}

type options struct {
	params Params
	tracer trace.Tracer
}

// Option configures a layer at construction.
type Option func(*options)

// WithParams replaces all parameters at once.
func WithParams(p Params) Option {
	return func(o *options) { o.params = p }
}

func WithHeight(h float64) Option {
	return func(o *options) { o.params.Height = h }
}

func WithTop(top float64) Option {
	return func(o *options) { o.params.Top = top }
}

func WithID(id string) Option {
	return func(o *options) { o.params.ID = id }
}

func WithYDomain(lo, hi float64) Option {
	return func(o *options) { o.params.YDomain = [2]float64{lo, hi} }
}

func WithOpacity(v float64) Option {
	return func(o *options) { o.params.Opacity = v }
}

// WithDebugContext draws a translucent rectangle over the context extent.
func WithDebugContext(on bool) Option {
	return func(o *options) { o.params.DebugContext = on }
}

// WithContextHandlerWidth sets the width of the context edit handles.
func WithContextHandlerWidth(w float64) Option {
	return func(o *options) { o.params.ContextHandlerWidth = w }
}

// WithTracer records layer.render and layer.update spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}
