package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/vyrodovalexey/statportal/internal/table"
)

// SheetName is the worksheet holding the exported table.
const SheetName = "Données"

const (
	headerFill     = "#FFF2CC"
	projectionFill = "#FCE4D6"
	sectionFill    = "#F2F2F2"

	labelColumnWidth = 42
	subColumnWidth   = 30
	dataColumnWidth  = 14
)

// XLSXExporter writes a workbook with one sheet. Header spans become
// merged cells and the label columns and header rows are frozen.
type XLSXExporter struct{}

// NewXLSXExporter creates an XLSX exporter.
func NewXLSXExporter() *XLSXExporter { return &XLSXExporter{} }

// ContentType implements Exporter.
func (e *XLSXExporter) ContentType() string { return MimeXLSX }

type xlsxStyles struct {
	header, headerProjection, label, emphasis, cell, projection, section int
}

// Export implements Exporter.
func (e *XLSXExporter) Export(w io.Writer, v *table.View) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	styles, err := newXLSXStyles(f)
	if err != nil {
		return err
	}

	for _, pc := range placeHeader(v.Header) {
		style := styles.header
		if pc.Projection {
			style = styles.headerProjection
		}
		if err := setRange(f, pc.Row, pc.Col, span(pc.RowSpan), span(pc.ColSpan), pc.Label, style); err != nil {
			return err
		}
	}

	top := v.Header.Height()
	lead := leadingColumns(v)
	for i, row := range v.Rows {
		r := top + i
		labelStyle := styles.label
		if row.Emphasis {
			labelStyle = styles.emphasis
		}
		if row.LabelRowSpan > 0 {
			if err := setRange(f, r, 0, row.LabelRowSpan, 1, row.Label, labelStyle); err != nil {
				return err
			}
		}
		if v.ShowSubColumn {
			if err := setCell(f, r, 1, row.SubLabel, styles.label); err != nil {
				return err
			}
		}
		for j, c := range row.Cells {
			style := styles.cell
			switch {
			case c.Projection:
				style = styles.projection
			case row.Background == table.BackgroundSection:
				style = styles.section
			}
			if err := setCell(f, r, lead+j, c.Text, style); err != nil {
				return err
			}
		}
	}

	footerRow := top + len(v.Rows) + 1
	for i, line := range footerLines(v) {
		if err := setCell(f, footerRow+i, 0, line, 0); err != nil {
			return err
		}
	}

	if err := setColumnWidths(f, v); err != nil {
		return err
	}
	topLeft, err := excelize.CoordinatesToCellName(lead+1, top+1)
	if err != nil {
		return err
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      lead,
		YSplit:      top,
		TopLeftCell: topLeft,
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("freeze panes: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "#BFBFBF", Style: 1},
		{Type: "right", Color: "#BFBFBF", Style: 1},
		{Type: "top", Color: "#BFBFBF", Style: 1},
		{Type: "bottom", Color: "#BFBFBF", Style: 1},
	}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}
	centered := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	wrapped := &excelize.Alignment{Vertical: "center", WrapText: true}
	right := &excelize.Alignment{Horizontal: "right"}
	bold := &excelize.Font{Bold: true}

	var s xlsxStyles
	defs := []struct {
		dst   *int
		style excelize.Style
	}{
		{&s.header, excelize.Style{Border: border, Fill: fill(headerFill), Font: bold, Alignment: centered}},
		{&s.headerProjection, excelize.Style{Border: border, Fill: fill(projectionFill), Font: bold, Alignment: centered}},
		{&s.label, excelize.Style{Border: border, Alignment: wrapped}},
		{&s.emphasis, excelize.Style{Border: border, Font: bold, Alignment: wrapped}},
		{&s.cell, excelize.Style{Border: border, Alignment: right}},
		{&s.projection, excelize.Style{Border: border, Fill: fill(projectionFill), Alignment: right}},
		{&s.section, excelize.Style{Border: border, Fill: fill(sectionFill), Alignment: right}},
	}
	for i := range defs {
		id, err := f.NewStyle(&defs[i].style)
		if err != nil {
			return s, fmt.Errorf("create style: %w", err)
		}
		*defs[i].dst = id
	}
	return s, nil
}

// setCell writes value at zero-based (row, col). A zero style keeps the
// default.
func setCell(f *excelize.File, row, col int, value string, style int) error {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if err := f.SetCellStr(SheetName, name, value); err != nil {
		return err
	}
	if style != 0 {
		return f.SetCellStyle(SheetName, name, name, style)
	}
	return nil
}

// setRange writes value at the top-left of a rows x cols block and merges
// the block when it spans more than one cell.
func setRange(f *excelize.File, row, col, rows, cols int, value string, style int) error {
	if err := setCell(f, row, col, value, style); err != nil {
		return err
	}
	if rows == 1 && cols == 1 {
		return nil
	}
	from, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(col+cols, row+rows)
	if err != nil {
		return err
	}
	if err := f.MergeCell(SheetName, from, to); err != nil {
		return fmt.Errorf("merge %s:%s: %w", from, to, err)
	}
	return f.SetCellStyle(SheetName, from, to, style)
}

func setColumnWidths(f *excelize.File, v *table.View) error {
	widths := []float64{labelColumnWidth}
	if v.ShowSubColumn {
		widths = append(widths, subColumnWidth)
	}
	for range v.Order {
		widths = append(widths, dataColumnWidth)
	}
	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, w); err != nil {
			return err
		}
	}
	return nil
}
