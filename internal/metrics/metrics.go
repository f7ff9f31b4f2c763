// Package metrics tracks reconciliation counters for layers.
package metrics

import (
	"fmt"
	"time"
)

// RenderStats accumulates what a layer's reconciliation has done.
type RenderStats struct {
	Renders int `json:"renders"`
	Updates int `json:"updates"`

	// Cumulative item churn.
	Entered int `json:"entered"`
	Exited  int `json:"exited"`

	// Bound is the number of live item bindings after the last render.
	Bound int `json:"bound"`

	LastRender   time.Duration `json:"last_render"`
	LastRenderAt time.Time     `json:"last_render_at"`
}

// RecordRender folds one Render pass into the stats.
func (s *RenderStats) RecordRender(entered, exited, bound int, took time.Duration, at time.Time) {
	s.Renders++
	s.Entered += entered
	s.Exited += exited
	s.Bound = bound
	s.LastRender = took
	s.LastRenderAt = at
}

// RecordUpdate counts one shape update pass.
func (s *RenderStats) RecordUpdate() {
	s.Updates++
}

// Add returns the sum of two stats. Bound adds up; the later render wins.
func (s RenderStats) Add(o RenderStats) RenderStats {
	out := RenderStats{
		Renders: s.Renders + o.Renders,
		Updates: s.Updates + o.Updates,
		Entered: s.Entered + o.Entered,
		Exited:  s.Exited + o.Exited,
		Bound:   s.Bound + o.Bound,
	}
	out.LastRender, out.LastRenderAt = s.LastRender, s.LastRenderAt
	if o.LastRenderAt.After(s.LastRenderAt) {
		out.LastRender, out.LastRenderAt = o.LastRender, o.LastRenderAt
	}
	return out
}

// FormatItemsDisplay returns e.g. "42 items (+3/-1)".
func (s RenderStats) FormatItemsDisplay() string {
	return fmt.Sprintf("%d items (+%d/-%d)", s.Bound, s.Entered, s.Exited)
}

// FormatRenderDisplay returns the last render duration, e.g. "1.2ms", or
// "-" before the first render.
func (s RenderStats) FormatRenderDisplay() string {
	if s.Renders == 0 {
		return "-"
	}
	switch {
	case s.LastRender < time.Millisecond:
		return fmt.Sprintf("%dµs", s.LastRender.Microseconds())
	case s.LastRender < time.Second:
		return fmt.Sprintf("%.1fms", float64(s.LastRender.Microseconds())/1000)
	default:
		return fmt.Sprintf("%.2fs", s.LastRender.Seconds())
	}
}
