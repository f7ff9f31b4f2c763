package render

import (
	"math"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/tracks/internal/scene"
)

// Glyphs.
const (
	GlyphDot  = "●"
	GlyphLine = "·"
)

// shades maps opacity to block glyphs, densest first.
var shades = []struct {
	min   float64
	glyph string
}{
	{0.75, "█"},
	{0.5, "▓"},
	{0.25, "▒"},
	{0, "░"},
}

// Shade returns the block glyph for an effective opacity, or "" when fully
// transparent.
func Shade(opacity float64) string {
	if opacity <= 0 {
		return ""
	}
	for _, s := range shades {
		if opacity >= s.min {
			return s.glyph
		}
	}
	return shades[len(shades)-1].glyph
}

type paint struct {
	m        scene.Matrix
	clip     scene.Rect
	opacity  float64
	fill     string
	selected bool
}

// Draw paints root and its descendants over the current contents.
func (c *Canvas) Draw(root *scene.Node) {
	c.draw(root, paint{
		m:       scene.Identity(),
		clip:    scene.Rect{W: float64(c.width), H: float64(c.height)},
		opacity: 1,
	})
}

func (c *Canvas) draw(n *scene.Node, p paint) {
	if n.Hidden() {
		return
	}
	p.m = scene.Mul(p.m, n.Transform())
	p.opacity *= n.Opacity()
	if f := n.Fill(); f != "" {
		p.fill = f
	}
	if n.HasClass("selected") {
		p.selected = true
	}
	if r, ok := n.Clip(); ok {
		p.clip = intersect(p.clip, p.m.ApplyRect(r))
	}
	if p.opacity <= 0 || p.clip.W <= 0 || p.clip.H <= 0 {
		return
	}

	switch prim := n.Primitive().(type) {
	case scene.Box:
		c.box(n, p, p.m.ApplyRect(prim.Bounds()))
	case scene.Circle:
		c.point(n, p, p.m.Apply(scene.Point{X: prim.CX, Y: prim.CY}), GlyphDot)
	case scene.Polyline:
		c.polyline(n, p, prim.Points)
	case scene.Text:
		c.text(n, p, p.m.Apply(scene.Point{X: prim.X, Y: prim.Y}), prim.Value)
	}

	for _, child := range n.Children() {
		c.draw(child, p)
	}
}

func intersect(a, b scene.Rect) scene.Rect {
	x0, y0 := math.Max(a.X, b.X), math.Max(a.Y, b.Y)
	x1, y1 := math.Min(a.X+a.W, b.X+b.W), math.Min(a.Y+a.H, b.Y+b.H)
	return scene.Rect{X: x0, Y: y0, W: math.Max(x1-x0, 0), H: math.Max(y1-y0, 0)}
}

// visible reports whether the centre of cell (x, y) lies in the clip.
func (p paint) visible(x, y int) bool {
	cx, cy := float64(x)+0.5, float64(y)+0.5
	return cx >= p.clip.X && cx < p.clip.X+p.clip.W &&
		cy >= p.clip.Y && cy < p.clip.Y+p.clip.H
}

// snap converts a coordinate to a cell index. A coordinate exactly on the
// far edge of the clip belongs to the last cell inside it.
func snap(v, lo, size float64) int {
	hi := lo + size
	if v == hi && size > 0 {
		return int(math.Ceil(hi)) - 1
	}
	return int(math.Floor(v))
}

func (c *Canvas) box(n *scene.Node, p paint, r scene.Rect) {
	glyph := Shade(p.opacity)
	if glyph == "" || r.W <= 0 || r.H <= 0 {
		return
	}
	x0, x1 := cellSpan(r.X, r.X+r.W)
	y0, y1 := cellSpan(r.Y, r.Y+r.H)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if p.visible(x, y) {
				c.set(x, y, Cell{Glyph: glyph, Fg: p.fill, Selected: p.selected}, n)
			}
		}
	}
}

func (c *Canvas) point(n *scene.Node, p paint, pt scene.Point, glyph string) {
	x := snap(pt.X, p.clip.X, p.clip.W)
	y := snap(pt.Y, p.clip.Y, p.clip.H)
	if p.visible(x, y) {
		c.set(x, y, Cell{Glyph: glyph, Fg: p.fill, Selected: p.selected}, n)
	}
}

// polyline traces each segment with one glyph per column (or per row for
// steep segments).
func (c *Canvas) polyline(n *scene.Node, p paint, points []scene.Point) {
	for i := 1; i < len(points); i++ {
		a, b := p.m.Apply(points[i-1]), p.m.Apply(points[i])
		steps := int(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)))
		for s := 0; s <= steps; s++ {
			t := 0.0
			if steps > 0 {
				t = float64(s) / float64(steps)
			}
			pt := scene.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
			c.point(n, p, pt, GlyphLine)
		}
	}
}

// text writes value starting at pt, one grapheme cluster at a time. Wide
// clusters take two cells. Cells keep the colour they had as background.
func (c *Canvas) text(n *scene.Node, p paint, pt scene.Point, value string) {
	x, y := int(math.Floor(pt.X)), int(math.Floor(pt.Y))
	state := -1
	for len(value) > 0 {
		cluster, rest, _, newState := uniseg.StepString(value, state)
		value, state = rest, newState

		w := runewidth.StringWidth(cluster)
		if w == 0 {
			continue
		}
		if !p.visible(x, y) || (w == 2 && !p.visible(x+1, y)) {
			return
		}
		bg := c.At(x, y).Fg
		c.set(x, y, Cell{Glyph: cluster, Fg: p.fill, Bg: bg, Selected: p.selected}, n)
		if w == 2 {
			c.set(x+1, y, Cell{Cont: true, Bg: bg, Selected: p.selected}, n)
		}
		x += w
	}
}
