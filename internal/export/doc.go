// Package export writes rendered table views as CSV, XLSX, PDF or
// standalone HTML documents.
//
// Every exporter works from a table.View, so exports show exactly the
// formatted cells, header spans and legends of the on-screen table.
package export
