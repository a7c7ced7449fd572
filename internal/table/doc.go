// Package table turns statistical table payloads from the statistics API
// into display-ready views.
//
// A payload arrives in one of two shapes. Legacy tables ("ancien") may nest
// sub-indicator rows under a parent indicator and merge single-sub-column
// groups across both header rows. Current tables ("nouveau") express the row
// hierarchy through a depth field and always derive their two header rows
// from grouping boundaries. Decode returns either a *LegacyTable or a
// *CurrentTable behind the sealed Table interface:
//
//	t, err := table.Decode(body)
//	if err != nil {
//	    return err
//	}
//	view := table.Build(t, table.DefaultOptions())
//
// Every row is resolved against the same flattened column order, so a built
// View is always rectangular. Missing cells are data, not errors, and render
// as the "NA" marker.
package table
