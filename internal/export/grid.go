package export

import "github.com/vyrodovalexey/statportal/internal/table"

// placedCell is a header cell with its grid position.
type placedCell struct {
	Row, Col int
	table.HeaderCell
}

func span(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// leadingColumns is the number of label columns before the data cells.
func leadingColumns(v *table.View) int {
	if v.ShowSubColumn {
		return 2
	}
	return 1
}

// width is the total column count of a view.
func width(v *table.View) int {
	return leadingColumns(v) + len(v.Order)
}

// placeHeader assigns grid positions to header cells the way a browser
// lays out rowspan and colspan.
func placeHeader(h table.Header) []placedCell {
	occupied := make(map[[2]int]bool)
	var out []placedCell
	for r, row := range h.Rows {
		col := 0
		for _, cell := range row {
			for occupied[[2]int{r, col}] {
				col++
			}
			out = append(out, placedCell{Row: r, Col: col, HeaderCell: cell})
			for dr := 0; dr < span(cell.RowSpan); dr++ {
				for dc := 0; dc < span(cell.ColSpan); dc++ {
					occupied[[2]int{r + dr, col + dc}] = true
				}
			}
			col += span(cell.ColSpan)
		}
	}
	return out
}

// headerGrid flattens the header into rows of labels; spanned positions
// are left blank.
func headerGrid(v *table.View) [][]string {
	grid := make([][]string, v.Header.Height())
	for i := range grid {
		grid[i] = make([]string, width(v))
	}
	for _, pc := range placeHeader(v.Header) {
		if pc.Row < len(grid) && pc.Col < len(grid[pc.Row]) {
			grid[pc.Row][pc.Col] = pc.Label
		}
	}
	return grid
}

// bodyRecord returns the leading labels and formatted cells of a row. The
// parent label is repeated on rows it spans when repeatLabel is set.
func bodyRecord(v *table.View, row table.RowView, repeatLabel bool) []string {
	rec := make([]string, 0, width(v))
	label := row.Label
	if row.LabelRowSpan == 0 && !repeatLabel {
		label = ""
	}
	rec = append(rec, label)
	if v.ShowSubColumn {
		rec = append(rec, row.SubLabel)
	}
	for _, c := range row.Cells {
		rec = append(rec, c.Text)
	}
	return rec
}

// footerLines returns the notes and legends printed under the table.
func footerLines(v *table.View) []string {
	var lines []string
	for _, e := range v.Legend {
		lines = append(lines, string(e.Code)+" : "+e.Description)
	}
	if v.ProjectionLegend != "" {
		lines = append(lines, v.ProjectionLegend)
	}
	lines = append(lines, v.Notes...)
	return lines
}
