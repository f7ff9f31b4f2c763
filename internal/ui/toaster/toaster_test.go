package toaster

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()

	require.False(t, m.Visible())
	require.Empty(t, m.View())
}

func TestShow(t *testing.T) {
	m, cmd := New().Show("reloaded events.yaml", StyleSuccess, time.Millisecond)

	require.True(t, m.Visible())
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), "✓ reloaded events.yaml")
	require.Equal(t, "reloaded events.yaml", m.Message())
}

func TestShow_EmptyMessageStaysHidden(t *testing.T) {
	m, _ := New().Show("", StyleInfo, time.Second)

	require.False(t, m.Visible())
	require.Empty(t, m.View())
}

func TestView_Styles(t *testing.T) {
	tests := []struct {
		style Style
		icon  string
	}{
		{StyleSuccess, "✓"},
		{StyleError, "✗"},
		{StyleInfo, "i"},
		{StyleWarn, "!"},
	}
	for _, tt := range tests {
		m, _ := New().Show("msg", tt.style, time.Second)
		require.Contains(t, m.View(), tt.icon+" msg")
	}
}

func TestDismiss_OnlyMatchingToast(t *testing.T) {
	m, first := New().Show("first", StyleInfo, time.Millisecond)
	m, second := m.Show("second", StyleWarn, time.Millisecond)

	m = m.Update(first())
	require.True(t, m.Visible(), "a stale dismissal keeps the newer toast")
	require.Equal(t, "second", m.Message())

	m = m.Update(second())
	require.False(t, m.Visible())
}

func TestOverlay(t *testing.T) {
	bg := strings.Repeat(strings.Repeat(".", 20)+"\n", 5) + strings.Repeat(".", 20)

	require.Equal(t, bg, New().Overlay(bg, 20, 6))

	m, _ := New().Show("ok", StyleSuccess, time.Second)
	lines := strings.Split(m.Overlay(bg, 20, 6), "\n")
	require.Len(t, lines, 6)
	require.Contains(t, lines[3], "✓ ok")
	require.Equal(t, strings.Repeat(".", 20), lines[5], "one row of padding below")
}
