package export

import (
	"encoding/csv"
	"io"

	"github.com/vyrodovalexey/statportal/internal/table"
)

// utf8BOM lets spreadsheet applications detect the encoding.
const utf8BOM = "﻿"

// CSVExporter writes the header rows, then one record per body row with
// the parent label repeated, then the legends and notes.
type CSVExporter struct {
	comma rune
	bom   bool
}

// CSVOption configures a CSVExporter.
type CSVOption func(*CSVExporter)

// WithComma sets the field delimiter.
func WithComma(r rune) CSVOption {
	return func(e *CSVExporter) {
		e.comma = r
	}
}

// WithoutBOM omits the leading byte order mark.
func WithoutBOM() CSVOption {
	return func(e *CSVExporter) {
		e.bom = false
	}
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{comma: ',', bom: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ContentType implements Exporter.
func (e *CSVExporter) ContentType() string { return MimeCSV + "; charset=utf-8" }

// Export implements Exporter.
func (e *CSVExporter) Export(w io.Writer, v *table.View) error {
	if e.bom {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = e.comma

	records := headerGrid(v)
	for _, row := range v.Rows {
		records = append(records, bodyRecord(v, row, true))
	}
	if footer := footerLines(v); len(footer) > 0 {
		records = append(records, []string{""})
		for _, line := range footer {
			records = append(records, []string{line})
		}
	}
	return cw.WriteAll(records)
}
