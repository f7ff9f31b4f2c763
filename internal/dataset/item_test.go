package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDoc = `
items:
  - id: intro
    x: 0
    y: 0.2
    width: 12
    height: 0.5
    label: Intro
  - x: 30
    y: 0.8
    color: "#ff0000"
`

func TestParse(t *testing.T) {
	items, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	require.Equal(t, []*Item{
		{ID: "intro", X: 0, Y: 0.2, Width: 12, Height: 0.5, Label: "Intro"},
		{ID: "#1", X: 30, Y: 0.8, Color: "#ff0000"},
	}, items)
}

func TestParse_Empty(t *testing.T) {
	items, err := ParseBytes(nil)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{name: "duplicate id", doc: "items: [{id: a}, {id: a}]", is: ErrDuplicateID},
		{name: "negative width", doc: "items: [{id: a, width: -1}]", is: ErrInvalidItem},
		{name: "unknown field", doc: "items: [{id: a, colour: red}]"},
		{name: "not yaml", doc: "items: [", is: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.doc))
			require.Error(t, err)
			if tt.is != nil {
				require.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestMarshal_RoundTripsThroughParse(t *testing.T) {
	in := []*Item{{ID: "a", X: 1, Y: 2, Width: 3, Label: "x"}}

	b, err := Marshal(in)
	require.NoError(t, err)
	require.Contains(t, string(b), "label: x")

	out, err := ParseBytes(b)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestClone_IsDeep(t *testing.T) {
	in := []*Item{{ID: "a", X: 1}}
	out := Clone(in)

	out[0].X = 5
	require.Equal(t, 1.0, in[0].X)
	require.NotSame(t, in[0], out[0])
}

func TestSpan(t *testing.T) {
	_, _, ok := Span(nil)
	require.False(t, ok)

	lo, hi, ok := Span([]*Item{{X: 5, Width: 10}, {X: -2}, {X: 20}})
	require.True(t, ok)
	require.Equal(t, -2.0, lo)
	require.Equal(t, 20.0, hi)
}

func TestAccessorsAndMutators(t *testing.T) {
	it := &Item{ID: "a", X: 1, Y: 2, Width: 3, Height: 4, Label: "l", Color: "#fff"}
	a := Accessors()

	require.Equal(t, 1.0, a.Float("cx", it, 0))
	require.Equal(t, 2.0, a.Float("y", it, 0))
	require.Equal(t, 4.0, a.Float("height", it, 0))
	require.Equal(t, "l", a.String("label", it, ""))
	require.Equal(t, "#000", a.String("color", &Item{}, "#000"))

	m := Mutators()
	m["x"](it, 9)
	m["cy"](it, 8)
	m["width"](it, 7)
	require.Equal(t, Item{ID: "a", X: 9, Y: 8, Width: 7, Height: 4, Label: "l", Color: "#fff"}, *it)
}
