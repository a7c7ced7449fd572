package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampWidth_Resolve(t *testing.T) {
	t.Parallel()

	c := DefaultLayoutConfig().FirstColumn
	assert.InDelta(t, 180, c.Resolve(500), 0.001)
	assert.InDelta(t, 220, c.Resolve(1000), 0.001)
	assert.InDelta(t, 290, c.Resolve(2000), 0.001)
	assert.Equal(t, "clamp(180px, 22vw, 290px)", c.CSS())
}

func TestComputeLayout(t *testing.T) {
	t.Parallel()

	cfg := DefaultLayoutConfig()

	tests := []struct {
		name      string
		orderLen  int
		showSub   bool
		vp        Viewport
		minWidth  float64
		dataWidth float64
		secondTop float64
		left      float64
	}{
		{
			name:      "no columns uses one divisor",
			orderLen:  0,
			vp:        Viewport{Width: 1000},
			minWidth:  180 + 96,
			dataWidth: 1000 - 220,
		},
		{
			name:      "narrow viewport clamps data width",
			orderLen:  10,
			vp:        Viewport{Width: 800},
			minWidth:  180 + 10*96 + 10,
			dataWidth: 96,
		},
		{
			name:      "with sub column and measurements",
			orderLen:  4,
			showSub:   true,
			vp:        Viewport{Width: 2000, HeaderRowHeight: 37, FirstColumnWidth: 288},
			minWidth:  180 + 140 + 4*96 + 4,
			dataWidth: (2000 - 290 - 220 - 4) / 4.0,
			secondTop: 37,
			left:      288,
		},
		{
			name:      "unmeasured first column falls back",
			orderLen:  2,
			showSub:   true,
			vp:        Viewport{Width: 1000},
			minWidth:  180 + 140 + 2*96 + 2,
			dataWidth: (1000 - 220 - 180 - 2) / 2.0,
			left:      220,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := ComputeLayout(cfg, tt.orderLen, tt.showSub, tt.vp)
			assert.InDelta(t, tt.minWidth, l.MinTableWidth, 0.001)
			assert.InDelta(t, tt.dataWidth, l.DataColumnWidth, 0.001)
			assert.InDelta(t, tt.secondTop, l.SecondHeaderRowTop, 0.001)
			assert.InDelta(t, tt.left, l.SecondColumnLeft, 0.001)
			assert.GreaterOrEqual(t, l.DataColumnWidth, cfg.DataMinWidth)
		})
	}
}

func TestComputeLayout_Idempotent(t *testing.T) {
	t.Parallel()

	cfg := DefaultLayoutConfig()
	vp := Viewport{Width: 1280, HeaderRowHeight: 40}
	assert.Equal(t, ComputeLayout(cfg, 7, true, vp), ComputeLayout(cfg, 7, true, vp))
}

func TestComputeLayout_CSS(t *testing.T) {
	t.Parallel()

	l := ComputeLayout(DefaultLayoutConfig(), 3, true, Viewport{})
	assert.Equal(t,
		"calc((100% - (clamp(180px, 22vw, 290px) + clamp(140px, 18vw, 220px)) - 3px) / 3)",
		l.DataColumnCSS)
}

func TestComputeScroll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		state     ScrollState
		showLeft  bool
		showRight bool
	}{
		{name: "fits", state: ScrollState{ScrollWidth: 801, ClientWidth: 800}},
		{name: "at start", state: ScrollState{ScrollLeft: 1, ScrollWidth: 1600, ClientWidth: 800}, showRight: true},
		{name: "middle", state: ScrollState{ScrollLeft: 400, ScrollWidth: 1600, ClientWidth: 800}, showLeft: true, showRight: true},
		{name: "at end", state: ScrollState{ScrollLeft: 799, ScrollWidth: 1600, ClientWidth: 800}, showLeft: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := ComputeScroll(tt.state)
			assert.Equal(t, tt.showLeft, s.ShowLeft())
			assert.Equal(t, tt.showRight, s.ShowRight())
		})
	}
}

func TestScrollStep(t *testing.T) {
	t.Parallel()

	cfg := DefaultLayoutConfig()
	assert.InDelta(t, 320, cfg.ScrollStep(400), 0.001)
	assert.InDelta(t, 600, cfg.ScrollStep(1000), 0.001)
}
