package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordRender(t *testing.T) {
	var s RenderStats
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s.RecordRender(5, 0, 5, 2*time.Millisecond, at)
	s.RecordRender(1, 2, 4, 300*time.Microsecond, at.Add(time.Second))

	require.Equal(t, 2, s.Renders)
	require.Equal(t, 6, s.Entered)
	require.Equal(t, 2, s.Exited)
	require.Equal(t, 4, s.Bound)
	require.Equal(t, 300*time.Microsecond, s.LastRender)
	require.Equal(t, at.Add(time.Second), s.LastRenderAt)
}

func TestAdd_LaterRenderWins(t *testing.T) {
	t0 := time.Unix(100, 0)
	a := RenderStats{Renders: 1, Bound: 3, LastRender: time.Millisecond, LastRenderAt: t0}
	b := RenderStats{Renders: 2, Updates: 4, Bound: 2, LastRender: time.Second, LastRenderAt: t0.Add(time.Minute)}

	sum := a.Add(b)
	require.Equal(t, 3, sum.Renders)
	require.Equal(t, 4, sum.Updates)
	require.Equal(t, 5, sum.Bound)
	require.Equal(t, time.Second, sum.LastRender)

	require.Equal(t, time.Second, b.Add(a).LastRender, "order does not matter")
}

func TestFormatItemsDisplay(t *testing.T) {
	s := RenderStats{Bound: 42, Entered: 3, Exited: 1}
	require.Equal(t, "42 items (+3/-1)", s.FormatItemsDisplay())
}

func TestFormatRenderDisplay(t *testing.T) {
	tests := []struct {
		name  string
		stats RenderStats
		want  string
	}{
		{name: "never rendered", stats: RenderStats{}, want: "-"},
		{name: "microseconds", stats: RenderStats{Renders: 1, LastRender: 450 * time.Microsecond}, want: "450µs"},
		{name: "milliseconds", stats: RenderStats{Renders: 1, LastRender: 1200 * time.Microsecond}, want: "1.2ms"},
		{name: "seconds", stats: RenderStats{Renders: 1, LastRender: 1500 * time.Millisecond}, want: "1.50s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.stats.FormatRenderDisplay())
		})
	}
}
