package table

import "strings"

// CellKind tells a header cell's role.
type CellKind string

// Header cell kinds.
const (
	KindRowLabel  CellKind = "row_label"
	KindSubLabel  CellKind = "sub_label"
	KindPrincipal CellKind = "principal"
	KindSub       CellKind = "sub"
)

// HeaderCell is one <th> of the table header.
type HeaderCell struct {
	Label      string   `json:"label"`
	ColSpan    int      `json:"colspan"`
	RowSpan    int      `json:"rowspan"`
	Kind       CellKind `json:"kind"`
	Projection bool     `json:"projection,omitempty"`
}

// Header is the one- or two-row table header.
type Header struct {
	Rows [][]HeaderCell `json:"rows"`
}

// Height returns the number of header rows.
func (h Header) Height() int { return len(h.Rows) }

// groupHasSubs reports whether a legacy group spans real sub-columns: more
// than one sub label with at least one non-blank.
func groupHasSubs(g ColumnGroup) bool {
	if len(g.Subs) <= 1 {
		return false
	}
	for _, s := range g.Subs {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// BuildHeader assembles the header of t over the given column order.
func BuildHeader(t Table, order []ColumnOrderEntry, showSub bool) Header {
	single := SingleHeaderRow(order)
	span := 2
	if single {
		span = 1
	}

	first := leadingHeaderCells(t.Meta().RowLabel, showSub, span)
	if single {
		for _, e := range order {
			first = append(first, HeaderCell{Label: e.Principal, ColSpan: 1, RowSpan: 1, Kind: KindPrincipal})
		}
		return Header{Rows: [][]HeaderCell{first}}
	}

	var top, second []HeaderCell
	if t.Variant() == VariantLegacy {
		top, second = legacyHeaderRows(t.Groups())
	} else {
		top, second = currentHeaderRows(order)
	}
	return Header{Rows: [][]HeaderCell{append(first, top...), second}}
}

func leadingHeaderCells(rowLabel string, showSub bool, rowSpan int) []HeaderCell {
	if strings.TrimSpace(rowLabel) == "" {
		rowLabel = DefaultRowLabel
	}
	cells := []HeaderCell{{Label: rowLabel, ColSpan: 1, RowSpan: rowSpan, Kind: KindRowLabel}}
	if showSub {
		cells = append(cells, HeaderCell{ColSpan: 1, RowSpan: rowSpan, Kind: KindSubLabel})
	}
	return cells
}

// legacyHeaderRows walks the groups: a group with real subs spans them on the
// first row and lists them on the second; any other group spans both rows.
func legacyHeaderRows(groups ColumnGroups) (top, second []HeaderCell) {
	for _, g := range groups {
		if !groupHasSubs(g) {
			top = append(top, HeaderCell{Label: g.Principal, ColSpan: 1, RowSpan: 2, Kind: KindPrincipal})
			continue
		}
		top = append(top, HeaderCell{Label: g.Principal, ColSpan: len(g.Subs), RowSpan: 1, Kind: KindPrincipal})
		for _, s := range g.Subs {
			second = append(second, HeaderCell{Label: s, ColSpan: 1, RowSpan: 1, Kind: KindSub})
		}
	}
	return top, second
}

// currentHeaderRows merges runs of equal principals on the first row and
// lists every sub label on the second.
func currentHeaderRows(order []ColumnOrderEntry) (top, second []HeaderCell) {
	for i := 0; i < len(order); {
		j := i + 1
		for j < len(order) && order[j].Principal == order[i].Principal {
			j++
		}
		top = append(top, HeaderCell{Label: order[i].Principal, ColSpan: j - i, RowSpan: 1, Kind: KindPrincipal})
		i = j
	}
	for _, e := range order {
		second = append(second, HeaderCell{Label: e.Sub, ColSpan: 1, RowSpan: 1, Kind: KindSub})
	}
	return top, second
}
