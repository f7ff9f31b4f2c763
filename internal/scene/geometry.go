package scene

import "math"

// Point is a position in some node's coordinate space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle with its origin at the minimum corner.
type Rect struct {
	X, Y, W, H float64
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.X+r.W, o.X+o.W)
	y1 := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Matrix is a 2D affine transform in SVG order:
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translate returns a translation by (x, y).
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, D: 1, E: x, F: y}
}

// FlipY returns the transform used by layers: translate by (x, y) and
// mirror the vertical axis so values grow upward.
func FlipY(x, y float64) Matrix {
	return Matrix{A: 1, D: -1, E: x, F: y}
}

// Mul returns m*n, the transform that applies n first and then m.
func Mul(m, n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply transforms p.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ApplyRect returns the bounding box of the transformed corners of r.
func (m Matrix) ApplyRect(r Rect) Rect {
	corners := [4]Point{
		m.Apply(Point{r.X, r.Y}),
		m.Apply(Point{r.X + r.W, r.Y}),
		m.Apply(Point{r.X, r.Y + r.H}),
		m.Apply(Point{r.X + r.W, r.Y + r.H}),
	}
	x0, y0 := corners[0].X, corners[0].Y
	x1, y1 := x0, y0
	for _, c := range corners[1:] {
		x0, x1 = math.Min(x0, c.X), math.Max(x1, c.X)
		y0, y1 = math.Min(y0, c.Y), math.Max(y1, c.Y)
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Invert returns the inverse transform and false when m is singular.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Matrix{}, false
	}
	return Matrix{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}
