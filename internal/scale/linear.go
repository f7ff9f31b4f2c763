// Package scale provides the continuous linear mapping used to convert
// time and value units into pixels.
package scale

import "math"

// Linear maps a continuous domain onto a continuous range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear returns a scale mapping [d0,d1] onto [r0,r1].
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	return &Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Identity returns a 1:1 scale over [lo,hi].
func Identity(lo, hi float64) *Linear {
	return NewLinear(lo, hi, lo, hi)
}

// Map converts a domain value into the range.
func (s *Linear) Map(v float64) float64 {
	return s.r0 + normalize(s.d0, s.d1, v)*(s.r1-s.r0)
}

// Invert converts a range value back into the domain.
func (s *Linear) Invert(px float64) float64 {
	return s.d0 + normalize(s.r0, s.r1, px)*(s.d1-s.d0)
}

// Domain returns the domain bounds.
func (s *Linear) Domain() (float64, float64) {
	return s.d0, s.d1
}

// SetDomain replaces the domain bounds.
func (s *Linear) SetDomain(d0, d1 float64) {
	s.d0, s.d1 = d0, d1
}

// Range returns the range bounds.
func (s *Linear) Range() (float64, float64) {
	return s.r0, s.r1
}

// SetRange replaces the range bounds.
func (s *Linear) SetRange(r0, r1 float64) {
	s.r0, s.r1 = r0, r1
}

// Copy returns an independent scale with the same domain and range.
func (s *Linear) Copy() *Linear {
	c := *s
	return &c
}

// Ticks returns roughly count evenly spaced, human friendly values
// inside the domain.
func (s *Linear) Ticks(count int) []float64 {
	lo, hi := s.d0, s.d1
	if lo > hi {
		lo, hi = hi, lo
	}
	if count <= 0 || lo == hi || math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}

	step := tickStep(lo, hi, count)
	if step <= 0 || math.IsInf(step, 0) {
		return nil
	}

	start := math.Ceil(lo / step)
	stop := math.Floor(hi / step)
	ticks := make([]float64, 0, int(stop-start)+1)
	for i := start; i <= stop; i++ {
		ticks = append(ticks, i*step)
	}
	return ticks
}

// tickStep picks a step of 1, 2 or 5 times a power of ten.
func tickStep(lo, hi float64, count int) float64 {
	raw := (hi - lo) / float64(count)
	power := math.Pow(10, math.Floor(math.Log10(raw)))
	ratio := raw / power

	switch {
	case ratio >= math.Sqrt(50):
		return power * 10
	case ratio >= math.Sqrt(10):
		return power * 5
	case ratio >= math.Sqrt(2):
		return power * 2
	default:
		return power
	}
}

// normalize maps v into [0,1] relative to [a,b]. A degenerate interval
// maps everything onto its midpoint.
func normalize(a, b, v float64) float64 {
	if b-a == 0 {
		return 0.5
	}
	return (v - a) / (b - a)
}
