package export

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/vyrodovalexey/statportal/internal/table"
)

// HTMLExporter writes a standalone page with sticky label columns and
// header rows, projection shading and the legends.
type HTMLExporter struct {
	tmpl *template.Template
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{tmpl: pageTemplate}
}

// ContentType implements Exporter.
func (e *HTMLExporter) ContentType() string { return MimeHTML + "; charset=utf-8" }

type htmlPage struct {
	*table.View
	MinWidth       float64
	FirstWidth     template.CSS
	SecondWidth    template.CSS
	DataWidth      template.CSS
	SecondLeft     template.CSS
	SecondRowTop   template.CSS
	HasProjections bool
}

// Export implements Exporter.
func (e *HTMLExporter) Export(w io.Writer, v *table.View) error {
	l := v.Layout
	page := htmlPage{
		View:           v,
		MinWidth:       l.MinTableWidth,
		FirstWidth:     template.CSS(l.FirstColumnCSS),
		DataWidth:      template.CSS(l.DataColumnCSS),
		SecondRowTop:   template.CSS(secondRowTop(l)),
		HasProjections: v.ProjectionLegend != "",
	}
	if v.ShowSubColumn {
		page.SecondWidth = template.CSS(l.SecondColumnCSS)
		page.SecondLeft = template.CSS(fmt.Sprintf("%gpx", l.SecondColumnLeft))
	}
	if err := e.tmpl.Execute(w, page); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func secondRowTop(l table.Layout) string {
	if l.SecondHeaderRowTop > 0 {
		return fmt.Sprintf("%gpx", l.SecondHeaderRowTop)
	}
	return "2.2em"
}

// headerClass returns the CSS classes of a header cell in header row i.
func headerClass(i int, c table.HeaderCell) string {
	var classes []string
	switch c.Kind {
	case table.KindRowLabel:
		classes = append(classes, "sticky-col-1")
	case table.KindSubLabel:
		classes = append(classes, "sticky-col-2")
	}
	if i > 0 {
		classes = append(classes, "sticky-row-2")
	}
	if c.Projection {
		classes = append(classes, "projection")
	}
	return strings.Join(classes, " ")
}

var pageTemplate = template.Must(template.New("table").Funcs(template.FuncMap{
	"headerClass": headerClass,
}).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Meta.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; font-size: 14px; color: #1f2937; }
.table-wrap { overflow: auto; max-height: 80vh; border: 1px solid #e5e7eb; }
table { border-collapse: separate; border-spacing: 0; min-width: {{.MinWidth}}px; width: 100%; }
th, td { border-right: 1px solid #e5e7eb; border-bottom: 1px solid #e5e7eb; padding: 4px 8px; }
thead th { position: sticky; top: 0; z-index: 2; background: #fef3c7; text-align: center; }
thead th.sticky-row-2 { top: {{.SecondRowTop}}; }
td.num { text-align: right; white-space: nowrap; width: {{.DataWidth}}; }
.sticky-col-1 { position: sticky; left: 0; z-index: 1; background: #fff; text-align: left; width: {{.FirstWidth}}; }
{{if .ShowSubColumn}}.sticky-col-2 { position: sticky; left: {{.SecondLeft}}; z-index: 1; background: #fff; width: {{.SecondWidth}}; }
{{end}}thead .sticky-col-1, thead .sticky-col-2 { z-index: 3; background: #fef3c7; }
.row-top th, .row-top td { background: #f9fafb; }
.row-section th, .row-section td { background: #f3f4f6; }
.emphasis { font-weight: 600; }
.projection { background: #fde2cf; }
.legend, .notes { margin-top: 12px; font-size: 12px; }
</style>
</head>
<body>
<h1>{{.Meta.Title}}</h1>
{{with .Meta.Source}}<p class="source">Source : {{.}}</p>
{{end}}<div class="table-wrap">
<table>
<thead>
{{range $i, $row := .Header.Rows}}<tr>{{range $row}}<th colspan="{{.ColSpan}}" rowspan="{{.RowSpan}}" class="{{headerClass $i .}}">{{.Label}}</th>{{end}}</tr>
{{end}}</thead>
<tbody>
{{range .Rows}}<tr class="row-{{.Background}}">{{if gt .LabelRowSpan 0}}<th scope="row" rowspan="{{.LabelRowSpan}}" class="sticky-col-1{{if .Emphasis}} emphasis{{end}}" style="padding-left: {{.Indent}}px">{{.Label}}</th>{{end}}{{if $.ShowSubColumn}}<td class="sticky-col-2">{{.SubLabel}}</td>{{end}}{{range .Cells}}<td class="num{{if .Projection}} projection{{end}}">{{.Text}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</div>
{{if or .Legend .HasProjections}}<div class="legend">
{{range .Legend}}<p><strong>{{.Code}}</strong> : {{.Description}}</p>
{{end}}{{if .HasProjections}}<p class="projection-legend"><span class="projection">&nbsp;&nbsp;&nbsp;</span> {{.ProjectionLegend}}</p>
{{end}}</div>
{{end}}{{with .Notes}}<div class="notes">
{{range .}}<p>{{.}}</p>
{{end}}</div>
{{end}}</body>
</html>
`
