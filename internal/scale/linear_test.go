package scale

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinear_Map(t *testing.T) {
	s := NewLinear(0, 10, 0, 100)

	require.InDelta(t, 0, s.Map(0), 1e-9)
	require.InDelta(t, 50, s.Map(5), 1e-9)
	require.InDelta(t, 100, s.Map(10), 1e-9)
	require.InDelta(t, 150, s.Map(15), 1e-9, "values outside the domain extrapolate")
}

func TestLinear_InvertRoundTrip(t *testing.T) {
	s := NewLinear(2, 6, 0, 400)

	for _, v := range []float64{2, 3.5, 6, 10} {
		require.InDelta(t, v, s.Invert(s.Map(v)), 1e-9)
	}
}

func TestLinear_InvertedRange(t *testing.T) {
	s := NewLinear(0, 1, 100, 0)

	require.InDelta(t, 100, s.Map(0), 1e-9)
	require.InDelta(t, 25, s.Map(0.75), 1e-9)
}

func TestLinear_DegenerateDomain(t *testing.T) {
	s := NewLinear(3, 3, 0, 10)

	require.InDelta(t, 5, s.Map(3), 1e-9)
	require.InDelta(t, 5, s.Map(42), 1e-9)
}

func TestLinear_CopyIsIndependent(t *testing.T) {
	s := NewLinear(0, 100, 0, 100)
	c := s.Copy()

	c.SetDomain(0, 50)
	c.SetRange(0, 200)

	d0, d1 := s.Domain()
	r0, r1 := s.Range()
	require.Equal(t, [2]float64{0, 100}, [2]float64{d0, d1})
	require.Equal(t, [2]float64{0, 100}, [2]float64{r0, r1})
	require.NotSame(t, s, c)
}

func TestIdentity(t *testing.T) {
	s := Identity(0, 80)

	require.InDelta(t, 17, s.Map(17), 1e-9)
	require.InDelta(t, 17, s.Invert(17), 1e-9)
}

func TestLinear_Ticks(t *testing.T) {
	s := NewLinear(0, 10, 0, 100)

	require.Equal(t, []float64{0, 2, 4, 6, 8, 10}, s.Ticks(5))
	require.Equal(t, []float64{0, 5, 10}, s.Ticks(2))
}

func TestLinear_TicksEmpty(t *testing.T) {
	require.Nil(t, NewLinear(0, 10, 0, 1).Ticks(0))
	require.Nil(t, NewLinear(4, 4, 0, 1).Ticks(5))
}
