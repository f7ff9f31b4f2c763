package layer

import (
	"math"

	"github.com/zjrosen/tracks/internal/scene"
	"github.com/zjrosen/tracks/internal/timecontext"
)

const (
	contextRegionColor   = "#787878"
	contextRegionOpacity = 0.1
)

// contextRegion is the translucent band drawn over the context extent while
// the context is editable. It has a grab handle on each side.
type contextRegion struct {
	node        *scene.Node
	body        *scene.Node
	left, right *scene.Node
	handleWidth float64
	accessors   Accessors[*timecontext.Context]
}

var _ Shape[*timecontext.Context] = (*contextRegion)(nil)

func newContextRegion(handleWidth float64) *contextRegion {
	return &contextRegion{handleWidth: handleWidth}
}

func (c *contextRegion) Category() string { return "segment" }

func (c *contextRegion) Configure(a Accessors[*timecontext.Context]) { c.accessors = a }

func (c *contextRegion) Render(RenderingContext) *scene.Node {
	if c.node != nil {
		return c.node
	}
	c.node = scene.NewGroup("context-region", c.Category())
	c.body = scene.NewLeaf(scene.Box{}, "segment-body")
	c.left = scene.NewLeaf(scene.Box{}, "handle", "left")
	c.right = scene.NewLeaf(scene.Box{}, "handle", "right")
	c.node.AppendChild(c.body)
	c.node.AppendChild(c.left)
	c.node.AppendChild(c.right)
	return c.node
}

func (c *contextRegion) bounds(rc RenderingContext, tc *timecontext.Context) (x, y, w, h float64) {
	tx := c.accessors.Float("x", tc, 0)
	ty := c.accessors.Float("y", tc, 0)
	x = rc.XScale.Map(tx)
	y = rc.YScale.Map(ty)
	w = math.Max(rc.XScale.Map(tx+c.accessors.Float("width", tc, 0))-x, 0)
	h = math.Max(rc.YScale.Map(ty+c.accessors.Float("height", tc, 1))-y, 0)
	return x, y, w, h
}

func (c *contextRegion) Update(rc RenderingContext, handle *scene.Node, tc *timecontext.Context, _ int) {
	x, y, w, h := c.bounds(rc, tc)
	color := c.accessors.String("color", tc, contextRegionColor)

	handle.SetTransform(scene.Translate(x, y))
	handle.SetOpacity(c.accessors.Float("opacity", tc, contextRegionOpacity))

	c.body.SetPrimitive(scene.Box{W: w, H: h})
	c.body.SetFill(color)

	hw := math.Min(c.handleWidth, w/2)
	c.left.SetPrimitive(scene.Box{W: hw, H: h})
	c.left.SetFill(color)
	c.right.SetPrimitive(scene.Box{X: w - hw, W: hw, H: h})
	c.right.SetFill(color)
}

func (c *contextRegion) HitTest(rc RenderingContext, tc *timecontext.Context, x1, y1, x2, y2 float64) bool {
	x, y, w, h := c.bounds(rc, tc)
	return x < x2 && x+w > x1 && y < y2 && y+h > y1
}

func (c *contextRegion) Destroy() {
	if c.node != nil {
		c.node.Remove()
	}
}
