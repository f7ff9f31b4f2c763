// Package timecontext implements the tree of time coordinate systems that
// layers are drawn in.
//
// Each Context maps a span of abstract time onto pixels. A context either
// owns a local scale or inherits the scale of its nearest ancestor that
// does; the root owns the scale assigned by the host plus an unstretched
// baseline copy that every stretch is computed from. Contexts are only
// created through New, which registers them with their parent, and are
// never reparented, so upward walks always terminate at the root.
package timecontext

import (
	"errors"
	"math"

	"github.com/zjrosen/tracks/internal/log"
	"github.com/zjrosen/tracks/internal/scale"
)

var (
	// ErrNilScale is returned when assigning a nil scale.
	ErrNilScale = errors.New("scale must not be nil")
	// ErrInvalidRatio is returned for non-positive or non-finite stretch ratios.
	ErrInvalidRatio = errors.New("stretch ratio must be a positive finite number")
	// ErrNoBaseline is returned when stretching before the root received a scale.
	ErrNoBaseline = errors.New("root context has no baseline scale")
)

// Context is a node in the time coordinate tree.
type Context struct {
	parent   *Context
	children []*Context

	local    *scale.Linear
	baseline *scale.Linear

	// Start, Duration and Offset are expressed in time units.
	Start    float64
	Duration float64
	Offset   float64

	stretchRatio float64
}

// New creates a context under parent, or a root when parent is nil.
// A child starts with its parent's duration.
func New(parent *Context) *Context {
	c := &Context{
		parent:       parent,
		Duration:     1,
		stretchRatio: 1,
	}
	if parent != nil {
		c.Duration = parent.Duration
		parent.children = append(parent.children, c)
	}
	return c
}

// Parent returns the parent context, nil at the root.
func (c *Context) Parent() *Context { return c.parent }

// Children returns the child contexts in registration order.
func (c *Context) Children() []*Context { return c.children }

// IsRoot reports whether c has no parent.
func (c *Context) IsRoot() bool { return c.parent == nil }

// HasLocalScale reports whether c overrides the inherited scale.
func (c *Context) HasLocalScale() bool { return c.local != nil }

// XScale returns the closest scale in the tree, starting at c.
// It returns nil on a root that was never assigned a scale.
func (c *Context) XScale() *scale.Linear {
	for n := c; n != nil; n = n.parent {
		if n.local != nil {
			return n.local
		}
	}
	return nil
}

// AssignScale makes s the local scale of c. The first scale assigned to a
// root is also snapshotted as the baseline used by stretching.
func (c *Context) AssignScale(s *scale.Linear) error {
	if s == nil {
		return ErrNilScale
	}
	c.local = s
	if c.parent == nil && c.baseline == nil {
		c.baseline = s.Copy()
	}
	return nil
}

// SetPixelRange applies the range to the local and baseline scales and to
// every descendant, including those currently inheriting, so a later
// override starts from the right range.
func (c *Context) SetPixelRange(lo, hi float64) {
	if c.local != nil {
		c.local.SetRange(lo, hi)
	}
	if c.baseline != nil {
		c.baseline.SetRange(lo, hi)
	}
	for _, child := range c.children {
		child.SetPixelRange(lo, hi)
	}
}

// BaselineScale returns the root's unstretched scale.
func (c *Context) BaselineScale() *scale.Linear {
	n := c
	for n.parent != nil {
		n = n.parent
	}
	return n.baseline
}

// StretchRatio returns the zoom factor of c.
func (c *Context) StretchRatio() float64 { return c.stretchRatio }

// SetStretchRatio zooms c by ratio relative to the baseline. Non-root
// contexts also compose their parent's ratio. A ratio of 1 on a non-root
// context drops the local scale so it inherits again.
//
// Children owning a local scale are re-stretched with their own ratio
// afterwards. Their domain width already divides by this context's ratio,
// so re-applying picks up the new zoom exactly once; scaling their ratio by
// new/old as well would apply it twice.
func (c *Context) SetStretchRatio(ratio float64) error {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return ErrInvalidRatio
	}

	previous := c.stretchRatio

	if ratio == 1 && c.parent != nil {
		c.local = nil
	} else {
		baseline := c.BaselineScale()
		if baseline == nil {
			return ErrNoBaseline
		}
		s := baseline.Copy()
		lo, hi := s.Domain()
		width := (hi - lo) / ratio
		if c.parent != nil {
			width /= c.parent.stretchRatio
		}
		s.SetDomain(lo, lo+width)
		c.local = s
	}
	c.stretchRatio = ratio

	log.Debug(log.CatContext, "stretch ratio changed", "from", previous, "to", ratio, "root", c.parent == nil)

	for _, child := range c.children {
		if child.local == nil {
			continue
		}
		if err := child.SetStretchRatio(child.stretchRatio); err != nil {
			return err
		}
	}
	return nil
}
