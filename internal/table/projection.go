package table

import (
	"strconv"
	"strings"
)

// DefaultCensusYears are the census years of the national statistics office.
// Year columns matching one of them hold observed, not projected, values.
var DefaultCensusYears = []int{1977, 1988, 2000, 2013, 2023}

// ProjectionLegend is the footnote shown under tables with projected columns.
const ProjectionLegend = "Les colonnes colorées représentent les projections."

// ProjectionClassifier flags year columns that hold projections.
type ProjectionClassifier struct {
	census map[string]struct{}
}

// NewProjectionClassifier creates a classifier for the given census years.
// A nil slice selects DefaultCensusYears.
func NewProjectionClassifier(censusYears []int) *ProjectionClassifier {
	if censusYears == nil {
		censusYears = DefaultCensusYears
	}
	census := make(map[string]struct{}, len(censusYears))
	for _, y := range censusYears {
		census[strconv.Itoa(y)] = struct{}{}
	}
	return &ProjectionClassifier{census: census}
}

// SourceMentionsProjection reports whether the source text contains
// "projection" in any case.
func SourceMentionsProjection(source string) bool {
	return strings.Contains(strings.ToLower(source), "projection")
}

// IsProjectionColumn reports whether the column label is a non-census year of
// a table whose source mentions projections.
func (p *ProjectionClassifier) IsProjectionColumn(label, source string) bool {
	if !SourceMentionsProjection(source) {
		return false
	}
	year := strings.TrimSpace(label)
	if !isFourDigits(year) {
		return false
	}
	_, census := p.census[year]
	return !census
}

// ShowLegend reports whether the projection legend applies to a table with
// the given source and column order.
func (p *ProjectionClassifier) ShowLegend(source string, order []ColumnOrderEntry) bool {
	if !SourceMentionsProjection(source) {
		return false
	}
	for _, e := range order {
		if p.IsProjectionColumn(e.Principal, source) {
			return true
		}
	}
	return false
}

func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
