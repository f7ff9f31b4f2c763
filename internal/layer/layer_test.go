package layer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tracks/internal/identity"
	"github.com/zjrosen/tracks/internal/pubsub"
	"github.com/zjrosen/tracks/internal/scale"
	"github.com/zjrosen/tracks/internal/scene"
	"github.com/zjrosen/tracks/internal/timecontext"
)

type point struct{ x, y float64 }

// fakeShape draws a point as a unit circle and hit-tests with strict
// inequalities.
type fakeShape struct {
	node      *scene.Node
	accessors Accessors[*point]
	options   map[string]any
	destroyed int
	updates   int
	lastIndex int
}

func (s *fakeShape) Render(RenderingContext) *scene.Node {
	if s.node == nil {
		s.node = scene.NewLeaf(scene.Circle{R: 1})
	}
	return s.node
}

func (s *fakeShape) Update(rc RenderingContext, handle *scene.Node, d *point, index int) {
	handle.SetTransform(scene.Translate(rc.XScale.Map(d.x), rc.YScale.Map(d.y)))
	s.updates++
	s.lastIndex = index
}

func (s *fakeShape) HitTest(rc RenderingContext, d *point, x1, y1, x2, y2 float64) bool {
	cx, cy := rc.XScale.Map(d.x), rc.YScale.Map(d.y)
	return cx > x1 && cx < x2 && cy > y1 && cy < y2
}

func (s *fakeShape) Destroy() { s.destroyed++ }
func (s *fakeShape) Configure(a Accessors[*point]) { s.accessors = a }
func (s *fakeShape) Category() string { return "fake" }

// tracker counts shape instantiations.
type tracker struct {
	shapes []*fakeShape
}

func (tr *tracker) factory(options map[string]any) Shape[*point] {
	s := &fakeShape{options: options}
	tr.shapes = append(tr.shapes, s)
	return s
}

func (tr *tracker) destroyed() int {
	n := 0
	for _, s := range tr.shapes {
		n += s.destroyed
	}
	return n
}

type fakeLine struct {
	node     *scene.Node
	lastData []*point
}

func (f *fakeLine) Render(RenderingContext) *scene.Node {
	if f.node == nil {
		f.node = scene.NewLeaf(scene.Polyline{})
	}
	return f.node
}
func (f *fakeLine) UpdateAll(_ RenderingContext, _ *scene.Node, data []*point) { f.lastData = data }
func (f *fakeLine) Destroy() {}
func (f *fakeLine) Configure(Accessors[*point]) {}
func (f *fakeLine) Category() string { return "line" }

type mockBehavior struct {
	mock.Mock
}

func (m *mockBehavior) Initialize(l *Layer[*point]) { m.Called(l) }
func (m *mockBehavior) Select(h *scene.Node, d *point) { m.Called(h, d) }
func (m *mockBehavior) Unselect(h *scene.Node, d *point) { m.Called(h, d) }
func (m *mockBehavior) ToggleSelection(h *scene.Node, d *point) { m.Called(h, d) }
func (m *mockBehavior) Edit(rc RenderingContext, s Shape[*point], d *point, dx, dy float64, target string) {
	m.Called(rc, s, d, dx, dy, target)
}
func (m *mockBehavior) SelectedItems() []*point {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*point)
}

// identityContext returns a root context mapping [0,100] onto [0,100].
func identityContext(t *testing.T) *timecontext.Context {
	t.Helper()
	root := timecontext.New(nil)
	root.Duration = 100
	require.NoError(t, root.AssignScale(scale.NewLinear(0, 100, 0, 100)))
	return root
}

func newTestLayer(t *testing.T, data []*point, opts ...Option) (*Layer[*point], *tracker) {
	t.Helper()
	l := NewCollection(data, identity.New[*point](), opts...)
	tr := &tracker{}
	l.ConfigureShape(tr.factory, nil, map[string]any{"handlerWidth": 2})
	require.NoError(t, l.BindContext(identityContext(t)))
	return l, tr
}

func TestNewCollection_Defaults(t *testing.T) {
	l := NewCollection[*point](nil, nil)

	require.Equal(t, DefaultParams(), l.Params())
	require.Equal(t, Collection, l.DataType())
	require.True(t, l.Node().HasClass("layer"))
	require.Empty(t, l.Items())
}

func TestRender_RequiresShape(t *testing.T) {
	l := NewCollection([]*point{{}}, nil)
	require.NoError(t, l.BindContext(identityContext(t)))

	require.ErrorIs(t, l.Render(), ErrShapeNotConfigured)
}

func TestRender_RequiresContext(t *testing.T) {
	l := NewCollection([]*point{{}}, nil)
	l.ConfigureShape((&tracker{}).factory, nil, nil)

	require.ErrorIs(t, l.Render(), ErrContextNotBound)
	require.ErrorIs(t, l.Update(), ErrContextNotBound)
}

func TestBindContext_NoScale(t *testing.T) {
	l := NewCollection[*point](nil, nil)

	require.ErrorIs(t, l.BindContext(timecontext.New(nil)), ErrNoScale)
	require.ErrorIs(t, l.BindContext(nil), ErrNoScale)
}

func TestRender_CreatesItemsInDataOrder(t *testing.T) {
	a, b := &point{x: 1}, &point{x: 2}
	l, tr := newTestLayer(t, []*point{a, b})

	require.NoError(t, l.Render())

	require.Len(t, tr.shapes, 2)
	items := l.Items()
	require.Len(t, items, 2)
	for i, h := range items {
		require.True(t, h.HasClass("item"))
		require.True(t, h.HasClass("fake"))
		require.Same(t, tr.shapes[i].node, h)
		require.Equal(t, 2, tr.shapes[i].options["handlerWidth"])
	}
	d, ok := l.DatumFromItem(items[1])
	require.True(t, ok)
	require.Same(t, b, d)
}

func TestRender_Idempotent(t *testing.T) {
	l, tr := newTestLayer(t, []*point{{x: 1}, {x: 2}, {x: 3}})

	require.NoError(t, l.Render())
	before := l.Items()
	require.NoError(t, l.Render())

	require.Len(t, tr.shapes, 3, "second render instantiates nothing")
	require.Zero(t, tr.destroyed())
	require.Equal(t, before, l.Items())
	require.Equal(t, 2, l.Stats().Renders)
	require.Equal(t, 3, l.Stats().Entered)
}

func TestRender_IdentityStability(t *testing.T) {
	a, b, c := &point{x: 1}, &point{x: 2}, &point{x: 3}
	l, tr := newTestLayer(t, []*point{a, b})
	require.NoError(t, l.Render())
	bHandle := l.Items()[1]

	require.NoError(t, l.SetData([]*point{b, c}))
	require.NoError(t, l.Render())

	items := l.Items()
	require.Same(t, bHandle, items[0], "surviving datum keeps its node")
	require.Len(t, tr.shapes, 3)
	require.Equal(t, 1, tr.shapes[0].destroyed)
	require.Zero(t, tr.shapes[1].destroyed)
}

func TestRender_ExitCleanup(t *testing.T) {
	a, b := &point{x: 1}, &point{x: 2}
	reg := identity.New[*point]()
	l := NewCollection([]*point{a, b}, reg)
	tr := &tracker{}
	l.ConfigureShape(tr.factory, nil, nil)
	require.NoError(t, l.BindContext(identityContext(t)))
	require.NoError(t, l.Render())
	aHandle := l.Items()[0]

	require.NoError(t, l.SetData([]*point{b}))
	require.NoError(t, l.Render())

	_, ok := reg.Lookup(a)
	require.False(t, ok, "exited item releases its id")
	require.False(t, l.HasItem(aHandle))
	require.Nil(t, aHandle.Parent())
	require.Len(t, l.shapes, 1)
	require.Len(t, l.bindings, 1)
	require.Len(t, l.byKey, 1)
	require.Equal(t, 1, reg.Len())
	require.Equal(t, 1, l.Stats().Exited)
}

func TestRender_DuplicateDatumBoundOnce(t *testing.T) {
	a := &point{x: 1}
	l, tr := newTestLayer(t, []*point{a, a, a})

	require.NoError(t, l.Render())

	require.Len(t, tr.shapes, 1)
	require.Len(t, l.Items(), 1)
}

func TestRender_SharedRegistryCaveat(t *testing.T) {
	x := &point{x: 5}
	reg := identity.New[*point]()
	ctx := identityContext(t)

	first := NewCollection([]*point{x}, reg)
	second := NewCollection([]*point{x}, reg)
	tr1, tr2 := &tracker{}, &tracker{}
	first.ConfigureShape(tr1.factory, nil, nil)
	second.ConfigureShape(tr2.factory, nil, nil)
	require.NoError(t, first.BindContext(ctx))
	require.NoError(t, second.BindContext(ctx))
	require.NoError(t, first.Render())
	require.NoError(t, second.Render())
	require.Len(t, tr2.shapes, 1, "shared id, one shape each")

	require.NoError(t, first.SetData(nil))
	require.NoError(t, first.Render())
	require.NoError(t, second.Render())

	require.Len(t, tr2.shapes, 2, "second layer sees x as new once its id was released")
	require.Equal(t, 1, tr2.shapes[0].destroyed)
	_, ok := reg.Lookup(x)
	require.True(t, ok, "stale binding must not release the fresh id")

	require.NoError(t, second.Render())
	require.Len(t, tr2.shapes, 2, "stable again afterwards")
}

func TestEntity_SetDatumReusesWrapping(t *testing.T) {
	l := NewEntity(&point{x: 1}, nil)
	backing := &l.Data()[0]

	require.NoError(t, l.SetDatum(&point{x: 2}))
	require.NoError(t, l.SetDatum(&point{x: 3}))

	require.Len(t, l.Data(), 1)
	require.Same(t, backing, &l.Data()[0])
	require.Equal(t, 3.0, l.Data()[0].x)
}

func TestDataTypeMismatch(t *testing.T) {
	entity := NewEntity(&point{}, nil)
	collection := NewCollection[*point](nil, nil)

	require.ErrorIs(t, entity.SetData(nil), ErrDataTypeMismatch)
	require.ErrorIs(t, collection.SetDatum(&point{}), ErrDataTypeMismatch)
}

func TestEntity_RenderSwapsShapeOnNewDatum(t *testing.T) {
	l := NewEntity(&point{x: 1}, nil)
	tr := &tracker{}
	l.ConfigureShape(tr.factory, nil, nil)
	require.NoError(t, l.BindContext(identityContext(t)))
	require.NoError(t, l.Render())

	require.NoError(t, l.SetDatum(&point{x: 2}))
	require.NoError(t, l.Render())

	require.Len(t, tr.shapes, 2)
	require.Equal(t, 1, tr.shapes[0].destroyed)
	require.Len(t, l.Items(), 1)
}

func TestCommonShape_Singleton(t *testing.T) {
	l, _ := newTestLayer(t, []*point{{x: 1}})
	var lines []*fakeLine
	l.ConfigureCommonShape(func(map[string]any) CommonShape[*point] {
		f := &fakeLine{}
		lines = append(lines, f)
		return f
	}, nil, nil)

	for i := 2; i <= 4; i++ {
		require.NoError(t, l.Render())
		require.NoError(t, l.SetData(append(l.Data(), &point{x: float64(i)})))
	}
	require.NoError(t, l.UpdateShapes(nil))

	require.Len(t, lines, 1)
	common := 0
	for _, n := range l.offset.Children() {
		if n.HasClass("common") {
			common++
			require.True(t, n.HasClass("item"))
			require.True(t, n.HasClass("line"))
			require.False(t, l.HasItem(n))
		}
	}
	require.Equal(t, 1, common)
	require.Len(t, lines[0].lastData, 4, "common shape sees the whole dataset")
}

func TestItemsInArea(t *testing.T) {
	p1, p2 := &point{x: 10, y: 5}, &point{x: 90, y: 5}
	l, _ := newTestLayer(t, []*point{p1, p2}, WithYDomain(0, 100))
	require.NoError(t, l.Render())

	got := l.ItemsInArea(Area{Left: 0, Top: 0, Width: 50, Height: 100})

	require.Equal(t, []*point{p1}, got)
}

func TestItemsInArea_DataOrder(t *testing.T) {
	p1, p2, p3 := &point{x: 30, y: 5}, &point{x: 10, y: 5}, &point{x: 20, y: 5}
	l, _ := newTestLayer(t, []*point{p1, p2, p3}, WithYDomain(0, 100))
	require.NoError(t, l.Render())

	require.Equal(t, []*point{p1, p2, p3}, l.ItemsInArea(Area{Width: 100, Height: 100}))
}

func TestItemsInArea_InvalidInput(t *testing.T) {
	l, _ := newTestLayer(t, []*point{{x: 10, y: 0.5}})
	require.NoError(t, l.Render())

	tests := []struct {
		name string
		area Area
	}{
		{name: "zero width", area: Area{Width: 0, Height: 100}},
		{name: "negative height", area: Area{Width: 100, Height: -1}},
		{name: "NaN left", area: Area{Left: nan(), Width: 100, Height: 100}},
		{name: "infinite top", area: Area{Top: inf(), Width: 100, Height: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Empty(t, l.ItemsInArea(tt.area))
		})
	}
}

func TestItemsInArea_UnboundLayer(t *testing.T) {
	l := NewCollection([]*point{{}}, nil)
	require.Empty(t, l.ItemsInArea(Area{Width: 10, Height: 10}))
}

func TestUpdateContainer_PlacesLayerInParentContext(t *testing.T) {
	root := timecontext.New(nil)
	root.Duration = 100
	require.NoError(t, root.AssignScale(scale.NewLinear(0, 100, 0, 200)))
	child := timecontext.New(root)
	child.Start = 10
	child.Offset = 5

	l := NewCollection[*point](nil, nil, WithTop(30), WithOpacity(0.5), WithDebugContext(true))
	require.NoError(t, l.BindContext(child))
	require.NoError(t, l.UpdateContainer())

	require.Equal(t, scene.FlipY(20, 130), l.Node().Transform())
	clip, ok := l.boundingBox.Clip()
	require.True(t, ok)
	require.Equal(t, scene.Rect{W: 200, H: 100}, clip)
	require.Equal(t, 0.5, l.boundingBox.Opacity())
	require.Equal(t, scene.Translate(10, 0), l.offset.Transform())
	require.Equal(t, scene.Box{W: 200, H: 100}, l.debugRect.Primitive())

	rc := l.RenderingContext()
	require.Equal(t, 200.0, rc.Width)
	require.Equal(t, 10.0, rc.OffsetX)
	require.Equal(t, 100.0, rc.Height)
}

func TestUpdateContainer_RootUsesOwnScale(t *testing.T) {
	root := timecontext.New(nil)
	root.Start = 4
	require.NoError(t, root.AssignScale(scale.NewLinear(0, 10, 0, 100)))

	l := NewCollection[*point](nil, nil)
	require.NoError(t, l.BindContext(root))
	require.NoError(t, l.UpdateContainer())

	require.Equal(t, scene.FlipY(40, 100), l.Node().Transform())
}

func TestContextShape_CoversContextExtent(t *testing.T) {
	l, _ := newTestLayer(t, nil)
	require.NoError(t, l.UpdateContainer())

	region := l.contextShape
	require.Equal(t, scene.Box{W: 100, H: 100}, region.body.Primitive())
	require.Equal(t, scene.Box{W: 2, H: 100}, region.left.Primitive())
	require.Equal(t, scene.Box{X: 98, W: 2, H: 100}, region.right.Primitive())
	require.Equal(t, 0.1, region.node.Opacity())
	require.Equal(t, "segment", l.ContextShape().Category())
	require.True(t, l.ContextShape().HitTest(l.RenderingContext(), l.TimeContext(), 50, 10, 60, 20))
}

func TestSetContextEditable(t *testing.T) {
	l := NewCollection[*point](nil, nil)
	require.True(t, l.interactions.Hidden())

	l.SetContextEditable(true)
	require.False(t, l.interactions.Hidden())
	require.True(t, l.ContextEditable())
}

func TestSetters(t *testing.T) {
	l := NewCollection[*point](nil, nil)

	l.SetHeight(40)
	l.SetYDomain(-1, 1)
	l.SetTop(12)
	l.SetOpacity(0.3)

	p := l.Params()
	require.Equal(t, 40.0, p.Height)
	require.Equal(t, [2]float64{-1, 1}, p.YDomain)
	require.Equal(t, 12.0, p.Top)
	require.Equal(t, 0.3, p.Opacity)
	require.Equal(t, 40.0, l.yScale.Map(1))
	require.Equal(t, 0.0, l.yScale.Map(-1))
}

func TestUpdateShapes_SingleHandle(t *testing.T) {
	a, b := &point{x: 1, y: 0}, &point{x: 2, y: 1}
	l, tr := newTestLayer(t, []*point{a, b})
	require.NoError(t, l.Render())

	require.NoError(t, l.UpdateShapes(l.Items()[1]))

	require.Zero(t, tr.shapes[0].updates)
	require.Equal(t, 1, tr.shapes[1].updates)
	require.Equal(t, 1, tr.shapes[1].lastIndex)
	require.Equal(t, scene.Translate(2, 100), l.Items()[1].Transform())
}

func TestUpdate_AllShapes(t *testing.T) {
	l, tr := newTestLayer(t, []*point{{x: 1}, {x: 2}})
	require.NoError(t, l.Render())

	require.NoError(t, l.Update())

	for _, s := range tr.shapes {
		require.Equal(t, 1, s.updates)
	}
	require.Equal(t, 1, l.Stats().Updates)
}

func TestItemFromNode(t *testing.T) {
	l, _ := newTestLayer(t, []*point{{x: 1}})
	require.NoError(t, l.Render())
	item := l.Items()[0]
	inner := scene.NewLeaf(scene.Box{})
	item.AppendChild(inner)

	require.Same(t, item, l.ItemFromNode(inner))
	require.Same(t, item, l.ItemFromNode(item))
	require.Nil(t, l.ItemFromNode(l.Node()))
	require.Nil(t, l.ItemFromNode(scene.NewGroup("item")), "foreign items are not ours")

	require.True(t, l.HasElement(inner))
	require.True(t, l.HasElement(l.contextNode))
	require.False(t, l.HasElement(scene.NewGroup()))
	require.False(t, l.HasElement(nil))

	_, ok := l.DatumFromItem(scene.NewGroup())
	require.False(t, ok)
}

func TestSelection_NoBehaviorIsNoop(t *testing.T) {
	l, _ := newTestLayer(t, []*point{{x: 1}})
	require.NoError(t, l.Render())

	require.NotPanics(t, func() {
		l.Select()
		l.Unselect()
		l.ToggleSelection()
		l.Edit(l.Items(), 1, 1, "")
	})
	require.Nil(t, l.SelectedItems())
}

func TestSelect_AllItemsAndBringsToFront(t *testing.T) {
	a, b := &point{x: 1}, &point{x: 2}
	l, _ := newTestLayer(t, []*point{a, b})
	require.NoError(t, l.Render())
	items := l.Items()

	b0 := &mockBehavior{}
	b0.On("Initialize", l).Once()
	b0.On("Select", items[0], a).Once()
	b0.On("Select", items[1], b).Once()
	b0.On("Unselect", items[1], b).Once()
	b0.On("ToggleSelection", items[0], a).Once()
	b0.On("SelectedItems").Return([]*point{a})
	l.SetBehavior(b0)

	l.Select(items[0])
	children := l.offset.Children()
	require.Same(t, items[0], children[len(children)-1])
	l.Select(items[1])
	l.Unselect(items[1])
	l.ToggleSelection(items[0])
	l.Select(scene.NewGroup())

	require.Equal(t, []*point{a}, l.SelectedItems())
	require.Equal(t, items, l.Items(), "paint order does not change data order")
	b0.AssertExpectations(t)
}

func TestSelect_NoHandlesMeansAll(t *testing.T) {
	a, b := &point{x: 1}, &point{x: 2}
	l, _ := newTestLayer(t, []*point{a, b})
	require.NoError(t, l.Render())

	b0 := &mockBehavior{}
	b0.On("Initialize", mock.Anything)
	b0.On("Select", mock.Anything, mock.Anything)
	l.SetBehavior(b0)

	l.Select()

	b0.AssertNumberOfCalls(t, "Select", 2)
}

func TestEdit_PublishesEvent(t *testing.T) {
	a := &point{x: 1}
	l, tr := newTestLayer(t, []*point{a}, WithID("bpf"))
	require.NoError(t, l.Render())
	h := l.Items()[0]

	b0 := &mockBehavior{}
	b0.On("Initialize", mock.Anything)
	b0.On("Edit", mock.Anything, Shape[*point](tr.shapes[0]), a, 3.0, -1.0, "left").Once()
	l.SetBehavior(b0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := l.Events(ctx)

	l.Edit([]*scene.Node{h}, 3, -1, "left")

	select {
	case ev := <-events:
		require.Equal(t, pubsub.EditedEvent, ev.Type)
		require.Equal(t, Edit[*point]{LayerID: "bpf", Datum: a, Target: "left", DX: 3, DY: -1}, ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("no edit event")
	}
	b0.AssertExpectations(t)
}

func TestClose_EndsSubscriptions(t *testing.T) {
	l := NewCollection[*point](nil, nil)
	events := l.Events(context.Background())

	l.Close()

	_, open := <-events
	require.False(t, open)
}
