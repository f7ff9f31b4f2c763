package shapes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tracks/internal/identity"
	"github.com/zjrosen/tracks/internal/layer"
	"github.com/zjrosen/tracks/internal/scale"
	"github.com/zjrosen/tracks/internal/scene"
	"github.com/zjrosen/tracks/internal/timecontext"
)

type sample struct {
	x, y, w, h float64
	color      string
	label      string
}

var sampleAccessors = layer.Accessors[*sample]{
	"cx":     func(s *sample) any { return s.x },
	"cy":     func(s *sample) any { return s.y },
	"x":      func(s *sample) any { return s.x },
	"y":      func(s *sample) any { return s.y },
	"width":  func(s *sample) any { return s.w },
	"height": func(s *sample) any { return s.h },
	"color":  func(s *sample) any { return s.color },
	"label":  func(s *sample) any { return s.label },
}

// pixelContext maps x [0,100] onto [0,200] and y [0,10] onto [0,50].
func pixelContext() layer.RenderingContext {
	return layer.RenderingContext{
		XScale: scale.NewLinear(0, 100, 0, 200),
		YScale: scale.NewLinear(0, 10, 0, 50),
		Width:  200,
		Height: 50,
	}
}

func TestDot_Update(t *testing.T) {
	d := NewDot[*sample](nil)
	d.Configure(sampleAccessors)
	rc := pixelContext()
	n := d.Render(rc)

	d.Update(rc, n, &sample{x: 10, y: 2, color: "#ff00ff"}, 0)

	require.Same(t, n, d.Render(rc), "render is idempotent")
	require.Equal(t, scene.Translate(20, 10), n.Transform())
	require.Equal(t, scene.Circle{R: 3}, n.Primitive())
	require.Equal(t, "#ff00ff", n.Fill())
	require.Equal(t, "dot", d.Category())
}

func TestDot_DefaultsWithoutAccessors(t *testing.T) {
	d := NewDot[*sample](nil)
	rc := pixelContext()
	n := d.Render(rc)

	d.Update(rc, n, &sample{x: 10}, 0)

	require.Equal(t, scene.Translate(0, 0), n.Transform())
	require.Equal(t, DefaultColor, n.Fill())
}

func TestDot_HitTestStrict(t *testing.T) {
	d := NewDot[*sample](nil)
	d.Configure(sampleAccessors)
	rc := pixelContext()
	s := &sample{x: 10, y: 2} // (20, 10) in pixels

	require.True(t, d.HitTest(rc, s, 0, 0, 21, 11))
	require.False(t, d.HitTest(rc, s, 20, 0, 40, 20), "centre on the left border")
	require.False(t, d.HitTest(rc, s, 0, 0, 40, 10), "centre on the top border")
}

func TestSegment_Update(t *testing.T) {
	seg := NewSegment[*sample](map[string]any{"handlerWidth": 4})
	seg.Configure(sampleAccessors)
	rc := pixelContext()
	n := seg.Render(rc)

	seg.Update(rc, n, &sample{x: 10, y: 2, w: 20, h: 4, color: "#00ff00", label: "build"}, 0)

	s := seg.(*Segment[*sample])
	require.Equal(t, scene.Translate(20, 10), n.Transform())
	require.Equal(t, scene.Box{W: 40, H: 20}, s.body.Primitive())
	require.Equal(t, scene.Box{W: 4, H: 20}, s.left.Primitive())
	require.Equal(t, scene.Box{X: 36, W: 4, H: 20}, s.right.Primitive())
	require.Equal(t, "#00ff00", s.body.Fill())
	require.False(t, s.label.Hidden())
	require.Equal(t, "build", s.label.Primitive().(scene.Text).Value)
}

func TestSegment_HandlesShrinkOnNarrowSegments(t *testing.T) {
	seg := NewSegment[*sample](nil)
	seg.Configure(sampleAccessors)
	rc := pixelContext()
	n := seg.Render(rc)

	seg.Update(rc, n, &sample{w: 1, h: 1}, 0) // 2px wide

	s := seg.(*Segment[*sample])
	require.Equal(t, scene.Box{W: 1, H: 5}, s.left.Primitive())
	require.True(t, s.label.Hidden(), "no label accessor value")
}

func TestSegment_HitTestOverlap(t *testing.T) {
	seg := NewSegment[*sample](nil)
	seg.Configure(sampleAccessors)
	rc := pixelContext()
	s := &sample{x: 10, y: 0, w: 10, h: 10} // x [20,40], y [0,50]

	require.True(t, seg.HitTest(rc, s, 39, 0, 100, 50))
	require.False(t, seg.HitTest(rc, s, 40, 0, 100, 50), "touching edges have no area")
	require.False(t, seg.HitTest(rc, s, 0, 0, 20, 50))
}

func TestSegment_Target(t *testing.T) {
	seg := NewSegment[*sample](map[string]any{"handlerWidth": 2.0}).(*Segment[*sample])
	seg.Configure(sampleAccessors)
	rc := pixelContext()
	s := &sample{x: 10, w: 10, h: 1} // x [20,40]

	require.Equal(t, "left", seg.Target(rc, s, 21))
	require.Equal(t, "", seg.Target(rc, s, 30))
	require.Equal(t, "right", seg.Target(rc, s, 39))
}

func TestMarker_Update(t *testing.T) {
	m := NewMarker[*sample](nil)
	m.Configure(sampleAccessors)
	rc := pixelContext()
	n := m.Render(rc)

	m.Update(rc, n, &sample{x: 50}, 0)

	mk := m.(*Marker[*sample])
	require.Equal(t, scene.Translate(100, 0), n.Transform())
	require.Equal(t, scene.Box{W: 1, H: 50}, mk.rule.Primitive())
	require.Equal(t, scene.Box{X: -1, Y: 49, W: 3, H: 1}, mk.handle.Primitive())
	require.Equal(t, DefaultMarkerColor, mk.rule.Fill(), "empty colour accessor value falls back")
}

func TestMarker_HitTest(t *testing.T) {
	m := NewMarker[*sample](nil)
	m.Configure(sampleAccessors)
	rc := pixelContext()
	s := &sample{x: 50}

	require.True(t, m.HitTest(rc, s, 90, 0, 110, 10))
	require.False(t, m.HitTest(rc, s, 100, 0, 110, 10))
	require.False(t, m.HitTest(rc, s, 90, 60, 110, 70), "above the layer")
}

func TestLine_SortsByX(t *testing.T) {
	l := NewLine[*sample](nil)
	l.Configure(sampleAccessors)
	rc := pixelContext()
	n := l.Render(rc)

	l.UpdateAll(rc, n, []*sample{{x: 30, y: 1, color: "#123456"}, {x: 10, y: 2}, {x: 20, y: 3}})

	require.Equal(t, scene.Polyline{Points: []scene.Point{{X: 20, Y: 10}, {X: 40, Y: 15}, {X: 60, Y: 5}}}, n.Primitive())
	require.Equal(t, "#123456", n.Fill())
}

func TestDestroy_DetachesNode(t *testing.T) {
	d := NewDot[*sample](nil)
	n := d.Render(pixelContext())
	parent := scene.NewGroup()
	parent.AppendChild(n)

	d.Destroy()

	require.Empty(t, parent.Children())
	require.True(t, d.(*Dot[*sample]).destroyed)
}

func TestAccessorsExposed(t *testing.T) {
	d := NewDot[*sample](nil)
	d.Configure(sampleAccessors)

	src, ok := d.(layer.AccessorSource[*sample])
	require.True(t, ok)
	require.Equal(t, 7.0, src.Accessors().Float("cx", &sample{x: 7}, 0))
}

// Two points 80 apart on a 1:1 mapping; a 50-wide query from the left
// edge finds only the first.
func TestLayerAreaQueryWithDots(t *testing.T) {
	root := timecontext.New(nil)
	root.Duration = 100
	require.NoError(t, root.AssignScale(scale.NewLinear(0, 100, 0, 100)))

	p1, p2 := &sample{x: 10, y: 5}, &sample{x: 90, y: 5}
	l := layer.NewCollection([]*sample{p1, p2}, identity.New[*sample](), layer.WithHeight(100), layer.WithYDomain(0, 100))
	l.ConfigureShape(NewDot[*sample], sampleAccessors, nil)
	require.NoError(t, l.BindContext(root))
	require.NoError(t, l.Render())
	require.NoError(t, l.Update())

	got := l.ItemsInArea(layer.Area{Left: 0, Top: 0, Width: 50, Height: 100})

	require.Equal(t, []*sample{p1}, got)
}

func TestLayerBreakpointFunction(t *testing.T) {
	root := timecontext.New(nil)
	root.Duration = 10
	require.NoError(t, root.AssignScale(scale.NewLinear(0, 10, 0, 100)))

	data := []*sample{{x: 5, y: 0.5}, {x: 1, y: 0.1}}
	l := layer.NewCollection(data, nil)
	l.ConfigureShape(NewDot[*sample], sampleAccessors, nil)
	l.ConfigureCommonShape(NewLine[*sample], sampleAccessors, nil)
	require.NoError(t, l.BindContext(root))
	require.NoError(t, l.Render())
	require.NoError(t, l.Update())

	var line *scene.Node
	l.Node().Walk(func(n *scene.Node) bool {
		if n.HasClass("common") {
			line = n.Children()[0]
			return false
		}
		return true
	})
	require.NotNil(t, line)
	require.Equal(t, scene.Polyline{Points: []scene.Point{{X: 10, Y: 10}, {X: 50, Y: 50}}}, line.Primitive())
}
