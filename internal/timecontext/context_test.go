package timecontext

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/tracks/internal/scale"
)

func newRoot(t *testing.T, d0, d1, r0, r1 float64) *Context {
	t.Helper()
	root := New(nil)
	root.Duration = d1 - d0
	require.NoError(t, root.AssignScale(scale.NewLinear(d0, d1, r0, r1)))
	return root
}

func domain(s *scale.Linear) [2]float64 {
	lo, hi := s.Domain()
	return [2]float64{lo, hi}
}

func TestNew_Defaults(t *testing.T) {
	root := New(nil)

	require.True(t, root.IsRoot())
	require.Equal(t, 1.0, root.Duration)
	require.Equal(t, 1.0, root.StretchRatio())
	require.Nil(t, root.XScale(), "unassigned root resolves no scale")
	require.Nil(t, root.BaselineScale())
}

func TestNew_ChildInheritsDurationAndRegisters(t *testing.T) {
	root := New(nil)
	root.Duration = 42

	child := New(root)

	require.Equal(t, 42.0, child.Duration)
	require.Same(t, root, child.Parent())
	require.Equal(t, []*Context{child}, root.Children())
	require.False(t, child.IsRoot())
}

func TestXScale_InheritanceAndOverride(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 1000)
	child := New(root)

	require.Same(t, root.XScale(), child.XScale(), "child without a local scale returns the parent's scale by identity")
	require.False(t, child.HasLocalScale())

	own := scale.NewLinear(0, 10, 0, 1000)
	require.NoError(t, child.AssignScale(own))

	require.Same(t, own, child.XScale())
	require.True(t, child.HasLocalScale())
}

func TestXScale_DeepInheritance(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 1000)
	grandchild := New(New(root))

	require.Same(t, root.XScale(), grandchild.XScale())
}

func TestAssignScale_Nil(t *testing.T) {
	require.ErrorIs(t, New(nil).AssignScale(nil), ErrNilScale)
}

func TestAssignScale_BaselineOnlyOnceAtRoot(t *testing.T) {
	root := New(nil)
	first := scale.NewLinear(0, 100, 0, 100)
	require.NoError(t, root.AssignScale(first))

	baseline := root.BaselineScale()
	require.NotNil(t, baseline)
	require.NotSame(t, first, baseline, "baseline is a copy")

	require.NoError(t, root.AssignScale(scale.NewLinear(0, 5, 0, 100)))
	require.Same(t, baseline, root.BaselineScale())
	require.Equal(t, [2]float64{0, 100}, domain(root.BaselineScale()))
}

func TestAssignScale_ChildGetsNoBaseline(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 100)
	child := New(root)

	require.NoError(t, child.AssignScale(scale.NewLinear(0, 1, 0, 1)))
	require.Same(t, root.BaselineScale(), child.BaselineScale())
}

func TestSetPixelRange_RecursesIntoInheritingChildren(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 100)
	inheriting := New(root)
	overriding := New(inheriting)
	require.NoError(t, overriding.AssignScale(scale.NewLinear(0, 10, 0, 100)))

	root.SetPixelRange(0, 400)

	lo, hi := root.XScale().Range()
	require.Equal(t, [2]float64{0, 400}, [2]float64{lo, hi})
	lo, hi = root.BaselineScale().Range()
	require.Equal(t, [2]float64{0, 400}, [2]float64{lo, hi})
	lo, hi = overriding.XScale().Range()
	require.Equal(t, [2]float64{0, 400}, [2]float64{lo, hi}, "grandchild under an inheriting child still receives the range")
}

func TestStretch_RoundTrip(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 100)

	require.NoError(t, root.SetStretchRatio(2))
	lo, hi := root.XScale().Domain()
	require.Equal(t, 0.0, lo, "stretch anchors at the domain minimum")
	require.InDelta(t, 50, hi-lo, 1e-9)
	require.Equal(t, 2.0, root.StretchRatio())

	require.NoError(t, root.SetStretchRatio(1))
	require.Equal(t, [2]float64{0, 100}, domain(root.XScale()))
}

func TestStretch_RootKeepsScaleAtRatioOne(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 100)

	require.NoError(t, root.SetStretchRatio(1))
	require.True(t, root.HasLocalScale())
}

func TestStretch_ChildRatioOneRevertsToInheritance(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 100)
	child := New(root)

	require.NoError(t, child.SetStretchRatio(4))
	require.True(t, child.HasLocalScale())
	require.InDelta(t, 25, domainWidth(child), 1e-9)

	require.NoError(t, child.SetStretchRatio(1))
	require.False(t, child.HasLocalScale())
	require.Same(t, root.XScale(), child.XScale())
}

func TestStretch_ChildComposesParentRatio(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 100)
	child := New(root)

	require.NoError(t, root.SetStretchRatio(2))
	require.NoError(t, child.SetStretchRatio(2))

	require.InDelta(t, 25, domainWidth(child), 1e-9)
}

// TestStretch_ParentZoomReachesOverridingChildOnce pins the propagation
// behavior: a child keeps its own ratio, and its scale is rebuilt so the
// parent's new ratio is applied exactly once.
func TestStretch_ParentZoomReachesOverridingChildOnce(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 100)
	child := New(root)
	require.NoError(t, child.SetStretchRatio(2))
	require.InDelta(t, 50, domainWidth(child), 1e-9)

	require.NoError(t, root.SetStretchRatio(2))
	require.Equal(t, 2.0, child.StretchRatio(), "child ratio is not multiplied")
	require.InDelta(t, 25, domainWidth(child), 1e-9)

	require.NoError(t, root.SetStretchRatio(1))
	require.InDelta(t, 50, domainWidth(child), 1e-9)
}

func TestStretch_InheritingChildrenAreSkipped(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 100)
	child := New(root)

	require.NoError(t, root.SetStretchRatio(3))

	require.False(t, child.HasLocalScale())
	require.Equal(t, 1.0, child.StretchRatio())
	require.Same(t, root.XScale(), child.XScale())
}

func TestStretch_InvalidRatio(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 100)

	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		require.ErrorIs(t, root.SetStretchRatio(r), ErrInvalidRatio)
	}
	require.Equal(t, 1.0, root.StretchRatio())
}

func TestStretch_NoBaseline(t *testing.T) {
	root := New(nil)
	child := New(root)

	require.ErrorIs(t, root.SetStretchRatio(2), ErrNoBaseline)
	require.ErrorIs(t, child.SetStretchRatio(2), ErrNoBaseline)
	require.NoError(t, child.SetStretchRatio(1), "reverting to inheritance needs no baseline")
}

func TestStretch_KeepsPixelRange(t *testing.T) {
	root := newRoot(t, 0, 100, 0, 640)

	require.NoError(t, root.SetStretchRatio(4))

	lo, hi := root.XScale().Range()
	require.Equal(t, [2]float64{0, 640}, [2]float64{lo, hi})
	require.InDelta(t, 640, root.XScale().Map(25), 1e-9)
}

// TestProperty_StretchWidth checks the domain width law for a two level tree.
func TestProperty_StretchWidth(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		root := New(nil)
		_ = root.AssignScale(scale.NewLinear(0, 100, 0, 100))
		child := New(root)

		p := rapid.Float64Range(0.1, 10).Draw(rt, "parent")
		c := rapid.Float64Range(0.1, 10).Draw(rt, "child")

		if err := child.SetStretchRatio(c); err != nil {
			rt.Fatal(err)
		}
		if err := root.SetStretchRatio(p); err != nil {
			rt.Fatal(err)
		}

		if c == 1 {
			if child.HasLocalScale() {
				rt.Fatal("ratio 1 child must inherit")
			}
			return
		}
		want := 100 / (p * c)
		if got := domainWidth(child); math.Abs(got-want) > 1e-6 {
			rt.Fatalf("child width = %v, want %v", got, want)
		}
	})
}

func domainWidth(c *Context) float64 {
	lo, hi := c.XScale().Domain()
	return hi - lo
}
