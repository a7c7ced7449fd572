package table

// Row background classes.
const (
	BackgroundTop     = "top"
	BackgroundSection = "section"
	BackgroundPlain   = "plain"
)

const (
	baseIndent  = 10
	depthIndent = 18
)

// Options controls view construction.
type Options struct {
	Layout     LayoutConfig
	Viewport   Viewport
	Classifier *ProjectionClassifier
}

// DefaultOptions returns options with the portal's layout constants and
// census years.
func DefaultOptions() Options {
	return Options{
		Layout:     DefaultLayoutConfig(),
		Classifier: NewProjectionClassifier(nil),
	}
}

// CellView is one formatted data cell.
type CellView struct {
	Raw        string `json:"raw"`
	Text       string `json:"text"`
	Projection bool   `json:"projection,omitempty"`
}

// RowView is one body row. LabelRowSpan is zero when the label cell is
// covered by the rowspan of a previous row.
type RowView struct {
	Label        string     `json:"label"`
	LabelRowSpan int        `json:"label_rowspan"`
	SubLabel     string     `json:"sub_label,omitempty"`
	HasSubCell   bool       `json:"has_sub_cell"`
	Depth        int        `json:"depth"`
	Indent       int        `json:"indent"`
	Emphasis     bool       `json:"emphasis"`
	Background   string     `json:"background"`
	Cells        []CellView `json:"cells"`
}

// LegendEntry is one line of the marker legend.
type LegendEntry struct {
	Code        Marker `json:"code"`
	Description string `json:"description"`
}

// View is a table ready for display or export.
type View struct {
	Variant          Variant            `json:"variant"`
	Meta             Meta               `json:"meta"`
	Order            []ColumnOrderEntry `json:"order"`
	SingleHeaderRow  bool               `json:"single_header_row"`
	ShowSubColumn    bool               `json:"show_sub_column"`
	Header           Header             `json:"header"`
	Rows             []RowView          `json:"rows"`
	Notes            []string           `json:"notes"`
	Legend           []LegendEntry      `json:"legend"`
	ProjectionLegend string             `json:"projection_legend,omitempty"`
	Layout           Layout             `json:"layout"`
}

// Build renders t into a View. Every row is resolved against the same column
// order, so all rows carry exactly len(Order) cells.
func Build(t Table, opts Options) *View {
	if opts.Classifier == nil {
		opts.Classifier = NewProjectionClassifier(nil)
	}

	norm := Normalize(t)
	meta := t.Meta()
	projection := make([]bool, len(norm.Order))
	for i, e := range norm.Order {
		projection[i] = opts.Classifier.IsProjectionColumn(e.Principal, meta.Source)
	}

	v := &View{
		Variant:         t.Variant(),
		Meta:            meta,
		Order:           norm.Order,
		SingleHeaderRow: norm.SingleHeaderRow,
		ShowSubColumn:   norm.HasAnySubs,
		Header:          BuildHeader(t, norm.Order, norm.HasAnySubs),
		Notes:           append([]string(nil), t.Notes()...),
		Layout:          ComputeLayout(opts.Layout, len(norm.Order), norm.HasAnySubs, opts.Viewport),
	}
	markHeaderProjection(v.Header, opts.Classifier, meta.Source)

	cells := func(values Values) []CellView {
		out := make([]CellView, len(norm.Order))
		for i, e := range norm.Order {
			raw := Resolve(values, e)
			out[i] = CellView{Raw: raw, Text: FormatCell(raw), Projection: projection[i]}
		}
		return out
	}

	switch tt := t.(type) {
	case *LegacyTable:
		v.Rows = legacyRows(tt, norm.HasAnySubs, cells)
	case *CurrentTable:
		v.Rows = currentRows(tt, cells)
	}

	for _, m := range DetectMarkers(t) {
		v.Legend = append(v.Legend, LegendEntry{Code: m, Description: m.Description()})
	}
	if opts.Classifier.ShowLegend(meta.Source, norm.Order) {
		v.ProjectionLegend = ProjectionLegend
	}
	return v
}

func legacyRows(t *LegacyTable, showSub bool, cells func(Values) []CellView) []RowView {
	rows := make([]RowView, 0, len(t.Rows))
	for _, r := range t.Rows {
		if len(r.SubIndicators) == 0 {
			rows = append(rows, RowView{
				Label:        r.Indicator,
				LabelRowSpan: 1,
				HasSubCell:   showSub,
				Indent:       baseIndent,
				Emphasis:     true,
				Background:   BackgroundPlain,
				Cells:        cells(r.Values),
			})
			continue
		}
		for k, sub := range r.SubIndicators {
			span := 0
			if k == 0 {
				span = len(r.SubIndicators)
			}
			rows = append(rows, RowView{
				Label:        r.Indicator,
				LabelRowSpan: span,
				SubLabel:     sub.Name,
				HasSubCell:   true,
				Indent:       baseIndent,
				Emphasis:     true,
				Background:   BackgroundTop,
				Cells:        cells(sub.Values),
			})
		}
	}
	return rows
}

func currentRows(t *CurrentTable, cells func(Values) []CellView) []RowView {
	rows := make([]RowView, 0, len(t.Rows))
	for _, r := range t.Rows {
		bg := BackgroundPlain
		switch {
		case r.Depth == 0:
			bg = BackgroundTop
		case r.Section:
			bg = BackgroundSection
		}
		rows = append(rows, RowView{
			Label:        r.Indicator,
			LabelRowSpan: 1,
			Depth:        r.Depth,
			Indent:       baseIndent + r.Depth*depthIndent,
			Emphasis:     r.Depth == 0 || r.Section,
			Background:   bg,
			Cells:        cells(r.Values),
		})
	}
	return rows
}

func markHeaderProjection(h Header, c *ProjectionClassifier, source string) {
	if len(h.Rows) == 0 {
		return
	}
	for i := range h.Rows[0] {
		cell := &h.Rows[0][i]
		if cell.Kind == KindPrincipal {
			cell.Projection = c.IsProjectionColumn(cell.Label, source)
		}
	}
}
