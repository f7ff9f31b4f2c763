package layer

import "errors"

var (
	// ErrShapeNotConfigured is returned by Render before ConfigureShape.
	ErrShapeNotConfigured = errors.New("layer: shape not configured")

	// ErrContextNotBound is returned by operations that need a time context
	// before BindContext succeeded.
	ErrContextNotBound = errors.New("layer: time context not bound")

	// ErrNoScale is returned by BindContext when the context resolves no
	// scale (an unassigned root, or a child of one).
	ErrNoScale = errors.New("layer: time context has no scale")

	// ErrDataTypeMismatch is returned by SetData on an entity layer and by
	// SetDatum on a collection layer.
	ErrDataTypeMismatch = errors.New("layer: data type mismatch")
)
