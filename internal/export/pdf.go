package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/vyrodovalexey/statportal/internal/table"
)

const (
	pdfMargin      = 10.0
	pdfRowHeight   = 6.0
	pdfFontSize    = 7.0
	pdfTitleSize   = 12.0
	pdfMinDataW    = 12.0
	pdfLabelShare  = 0.28
	pdfSubShare    = 0.16
	pdfFontFamily  = "Helvetica"
	pdfEllipsis    = "..."
	pdfFooterSpace = 8.0
)

// PDFExporter writes a landscape A4 document: the title and source, the
// table with its header repeated on every page, then legends and notes.
type PDFExporter struct{}

// NewPDFExporter creates a PDF exporter.
func NewPDFExporter() *PDFExporter { return &PDFExporter{} }

// ContentType implements Exporter.
func (e *PDFExporter) ContentType() string { return MimePDF }

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	view   *table.View
	widths []float64
	header []placedCell
	bottom float64
}

// Export implements Exporter.
func (e *PDFExporter) Export(w io.Writer, v *table.View) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")
	pdf.SetTitle(v.Meta.Title, true)

	pw := &pdfWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		view:   v,
		header: placeHeader(v.Header),
	}
	pageW, pageH := pdf.GetPageSize()
	pw.bottom = pageH - pdfMargin - pdfFooterSpace
	pw.widths = columnWidths(v, pageW-2*pdfMargin)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin - 2)
		pdf.SetFont(pdfFontFamily, "I", pdfFontSize)
		pdf.CellFormat(0, 4, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pw.title()
	pw.tableHeader()
	for _, row := range v.Rows {
		if pdf.GetY()+pdfRowHeight > pw.bottom {
			pdf.AddPage()
			pw.tableHeader()
		}
		pw.row(row)
	}
	pw.footer()

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// columnWidths shares the printable width between label and data columns.
func columnWidths(v *table.View, avail float64) []float64 {
	label := avail * pdfLabelShare
	widths := []float64{label}
	rest := avail - label
	if v.ShowSubColumn {
		sub := avail * pdfSubShare
		widths = append(widths, sub)
		rest -= sub
	}
	n := int(math.Max(1, float64(len(v.Order))))
	data := math.Max(rest/float64(n), pdfMinDataW)
	for range v.Order {
		widths = append(widths, data)
	}
	return widths
}

func (pw *pdfWriter) title() {
	pdf := pw.pdf
	pdf.SetFont(pdfFontFamily, "B", pdfTitleSize)
	pdf.MultiCell(0, 6, pw.tr(pw.view.Meta.Title), "", "L", false)
	if src := pw.view.Meta.Source; src != "" {
		pdf.SetFont(pdfFontFamily, "I", pdfFontSize+1)
		pdf.MultiCell(0, 5, pw.tr("Source : "+src), "", "L", false)
	}
	pdf.Ln(2)
}

func (pw *pdfWriter) tableHeader() {
	pdf := pw.pdf
	pdf.SetFont(pdfFontFamily, "B", pdfFontSize)
	pdf.SetDrawColor(191, 191, 191)
	top := pdf.GetY()
	for _, pc := range pw.header {
		x := pdfMargin + sum(pw.widths[:pc.Col])
		w := sum(pw.widths[pc.Col:min(pc.Col+span(pc.ColSpan), len(pw.widths))])
		h := pdfRowHeight * float64(span(pc.RowSpan))
		if pc.Projection {
			pdf.SetFillColor(252, 228, 214)
		} else {
			pdf.SetFillColor(255, 242, 204)
		}
		pdf.SetXY(x, top+pdfRowHeight*float64(pc.Row))
		pdf.CellFormat(w, h, pw.fit(pc.Label, w), "1", 0, "C", true, 0, "")
	}
	pdf.SetXY(pdfMargin, top+pdfRowHeight*float64(pw.view.Header.Height()))
}

func (pw *pdfWriter) row(row table.RowView) {
	pdf := pw.pdf
	style := ""
	if row.Emphasis {
		style = "B"
	}
	pdf.SetFont(pdfFontFamily, style, pdfFontSize)

	rec := bodyRecord(pw.view, row, false)
	lead := leadingColumns(pw.view)
	for i, text := range rec {
		w := pw.widths[i]
		align, fill := "R", false
		if i < lead {
			align = "L"
		} else if row.Cells[i-lead].Projection {
			pdf.SetFillColor(252, 228, 214)
			fill = true
		}
		if i == 0 && row.Depth > 0 {
			text = strings.Repeat("  ", row.Depth) + text
		}
		pdf.CellFormat(w, pdfRowHeight, pw.fit(text, w), "1", 0, align, fill, 0, "")
	}
	pdf.Ln(-1)
}

func (pw *pdfWriter) footer() {
	lines := footerLines(pw.view)
	if len(lines) == 0 {
		return
	}
	pdf := pw.pdf
	pdf.Ln(3)
	pdf.SetFont(pdfFontFamily, "", pdfFontSize)
	for _, line := range lines {
		if pdf.GetY()+4 > pw.bottom {
			pdf.AddPage()
		}
		pdf.MultiCell(0, 4, pw.tr(line), "", "L", false)
	}
}

// fit translates s and shortens it to the cell width.
func (pw *pdfWriter) fit(s string, w float64) string {
	out := pw.tr(s)
	maxW := w - 2*pw.pdf.GetCellMargin()
	if pw.pdf.GetStringWidth(out) <= maxW {
		return out
	}
	// Translated text is single-byte cp1252.
	for len(out) > 0 && pw.pdf.GetStringWidth(out+pdfEllipsis) > maxW {
		out = out[:len(out)-1]
	}
	return out + pdfEllipsis
}

func sum(xs []float64) float64 {
	var t float64
	for _, x := range xs {
		t += x
	}
	return t
}
