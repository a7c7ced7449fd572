package table

// BuildOrderFromGroups flattens column groups into the column axis. Each
// group contributes one entry per sub label, or a single entry with an empty
// sub label when it has none. Order and repeated labels are preserved.
func BuildOrderFromGroups(groups ColumnGroups) []ColumnOrderEntry {
	order := make([]ColumnOrderEntry, 0, len(groups))
	for _, g := range groups {
		if len(g.Subs) == 0 {
			order = append(order, ColumnOrderEntry{Principal: g.Principal})
			continue
		}
		for _, sub := range g.Subs {
			order = append(order, ColumnOrderEntry{Principal: g.Principal, Sub: sub})
		}
	}
	return order
}

// SingleHeaderRow reports whether a flat header row suffices: the order is
// non-empty and no entry carries a sub label.
func SingleHeaderRow(order []ColumnOrderEntry) bool {
	if len(order) == 0 {
		return false
	}
	for _, e := range order {
		if e.Sub != "" {
			return false
		}
	}
	return true
}

// Normalized is the column-axis summary of a table.
type Normalized struct {
	Order           []ColumnOrderEntry
	SingleHeaderRow bool
	HasAnySubs      bool
}

// Normalize computes the canonical column order and the header/sub-indicator
// flags of t.
func Normalize(t Table) Normalized {
	order := t.ColumnOrder()
	return Normalized{
		Order:           order,
		SingleHeaderRow: SingleHeaderRow(order),
		HasAnySubs:      t.HasAnySubIndicators(),
	}
}
