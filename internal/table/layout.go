package table

import (
	"fmt"
	"math"
)

// scrollTolerance absorbs sub-pixel rounding in scroll measurements.
const scrollTolerance = 2.0

// ClampWidth is a CSS clamp(min, preferred vw, max) column width.
type ClampWidth struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
	VW  float64 `yaml:"vw" json:"vw"`
}

// Resolve evaluates the clamp for a viewport width in pixels.
func (c ClampWidth) Resolve(viewport float64) float64 {
	w := viewport * c.VW / 100
	return math.Min(math.Max(w, c.Min), c.Max)
}

// CSS renders the clamp as a CSS expression.
func (c ClampWidth) CSS() string {
	return fmt.Sprintf("clamp(%gpx, %gvw, %gpx)", c.Min, c.VW, c.Max)
}

// LayoutConfig holds the sticky-layout constants.
type LayoutConfig struct {
	FirstColumn   ClampWidth `yaml:"firstColumn" json:"firstColumn"`
	SecondColumn  ClampWidth `yaml:"secondColumn" json:"secondColumn"`
	DataMinWidth  float64    `yaml:"dataMinWidth" json:"dataMinWidth"`
	ColumnSpacing float64    `yaml:"columnSpacing" json:"columnSpacing"`
	ScrollRatio   float64    `yaml:"scrollRatio" json:"scrollRatio"`
	MinScrollStep float64    `yaml:"minScrollStep" json:"minScrollStep"`
}

// DefaultLayoutConfig returns the layout constants used by the portal.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		FirstColumn:   ClampWidth{Min: 180, Max: 290, VW: 22},
		SecondColumn:  ClampWidth{Min: 140, Max: 220, VW: 18},
		DataMinWidth:  96,
		ColumnSpacing: 1,
		ScrollRatio:   0.6,
		MinScrollStep: 320,
	}
}

// Viewport carries the client measurements a layout depends on. Zero
// measurements mean "not measured yet".
type Viewport struct {
	Width            float64 `json:"width"`
	HeaderRowHeight  float64 `json:"header_height"`
	FirstColumnWidth float64 `json:"first_col_width"`
}

// Layout is the computed geometry of a rendered table.
type Layout struct {
	Columns            int     `json:"columns"`
	ShowSubColumn      bool    `json:"show_sub_column"`
	FirstColumnWidth   float64 `json:"first_column_width"`
	SecondColumnWidth  float64 `json:"second_column_width,omitempty"`
	DataColumnWidth    float64 `json:"data_column_width"`
	Spacing            float64 `json:"spacing"`
	MinTableWidth      float64 `json:"min_table_width"`
	TableWidth         float64 `json:"table_width"`
	SecondColumnLeft   float64 `json:"second_column_left,omitempty"`
	SecondHeaderRowTop float64 `json:"second_header_row_top"`
	FirstColumnCSS     string  `json:"first_column_css"`
	SecondColumnCSS    string  `json:"second_column_css,omitempty"`
	DataColumnCSS      string  `json:"data_column_css"`
}

// ComputeLayout derives column widths, the minimum table width and sticky
// offsets. orderLen is the number of column-axis entries; the divisor is
// never below one.
func ComputeLayout(cfg LayoutConfig, orderLen int, showSub bool, vp Viewport) Layout {
	nCols := orderLen
	if nCols < 1 {
		nCols = 1
	}
	spacing := math.Max(0, cfg.ColumnSpacing*float64(orderLen))

	l := Layout{
		Columns:          nCols,
		ShowSubColumn:    showSub,
		Spacing:          spacing,
		FirstColumnWidth: cfg.FirstColumn.Resolve(vp.Width),
		FirstColumnCSS:   cfg.FirstColumn.CSS(),
	}

	leadingMin := cfg.FirstColumn.Min
	leading := l.FirstColumnWidth
	leadingCSS := cfg.FirstColumn.CSS()
	if showSub {
		l.SecondColumnWidth = cfg.SecondColumn.Resolve(vp.Width)
		l.SecondColumnCSS = cfg.SecondColumn.CSS()
		leadingMin += cfg.SecondColumn.Min
		leading += l.SecondColumnWidth
		leadingCSS = "(" + cfg.FirstColumn.CSS() + " + " + cfg.SecondColumn.CSS() + ")"
	}

	l.MinTableWidth = leadingMin + float64(nCols)*cfg.DataMinWidth + spacing
	l.TableWidth = math.Max(vp.Width, l.MinTableWidth)
	l.DataColumnWidth = math.Max((l.TableWidth-leading-spacing)/float64(nCols), cfg.DataMinWidth)
	l.DataColumnCSS = fmt.Sprintf("calc((100%% - %s - %gpx) / %d)", leadingCSS, spacing, nCols)

	if showSub {
		l.SecondColumnLeft = vp.FirstColumnWidth
		if l.SecondColumnLeft <= 0 {
			l.SecondColumnLeft = l.FirstColumnWidth
		}
	}
	l.SecondHeaderRowTop = math.Max(0, vp.HeaderRowHeight)

	return l
}

// ScrollState describes a horizontal scroll container.
type ScrollState struct {
	ScrollLeft  float64
	ScrollWidth float64
	ClientWidth float64
}

// ScrollIndicators tells which scroll arrows to show.
type ScrollIndicators struct {
	CanScroll bool
	AtStart   bool
	AtEnd     bool
}

// ShowLeft reports whether the left arrow should be visible.
func (s ScrollIndicators) ShowLeft() bool { return s.CanScroll && !s.AtStart }

// ShowRight reports whether the right arrow should be visible.
func (s ScrollIndicators) ShowRight() bool { return s.CanScroll && !s.AtEnd }

// ComputeScroll evaluates the scroll indicators with a 2px tolerance.
func ComputeScroll(s ScrollState) ScrollIndicators {
	return ScrollIndicators{
		CanScroll: s.ScrollWidth > s.ClientWidth+scrollTolerance,
		AtStart:   s.ScrollLeft <= scrollTolerance,
		AtEnd:     s.ScrollLeft+s.ClientWidth >= s.ScrollWidth-scrollTolerance,
	}
}

// ScrollStep returns the distance of one arrow click.
func (cfg LayoutConfig) ScrollStep(clientWidth float64) float64 {
	return math.Max(math.Round(clientWidth*cfg.ScrollRatio), cfg.MinScrollStep)
}
