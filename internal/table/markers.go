package table

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Marker is a status code that stands in for a value.
type Marker string

// Status markers, in legend order.
const (
	MarkerNotAvailable  Marker = "N/D"
	MarkerNotSpecified  Marker = "NS"
	MarkerNotApplicable Marker = "NA"
)

// Markers is the full marker vocabulary in legend order.
var Markers = []Marker{MarkerNotAvailable, MarkerNotSpecified, MarkerNotApplicable}

var markerDescriptions = map[Marker]string{
	MarkerNotAvailable:  "Non disponible",
	MarkerNotSpecified:  "Non spécifié",
	MarkerNotApplicable: "Non applicable",
}

// Description returns the French legend text of the marker.
func (m Marker) Description() string {
	return markerDescriptions[m]
}

// LegendLine renders the marker as "CODE : description".
func (m Marker) LegendLine() string {
	return string(m) + " : " + m.Description()
}

// DetectMarkers returns the vocabulary members that appear as a value
// anywhere in the table, including sub-indicator lookups. Values are trimmed
// and upper-cased before comparison. The result follows vocabulary order.
func DetectMarkers(t Table) []Marker {
	if t == nil {
		return nil
	}

	upper := cases.Upper(language.Und)
	seen := make(map[Marker]bool, len(Markers))
	t.eachValues(func(v Values) {
		for _, subs := range v {
			for _, raw := range subs {
				code := Marker(upper.String(strings.TrimSpace(raw)))
				if _, known := markerDescriptions[code]; known {
					seen[code] = true
				}
			}
		}
	})

	out := make([]Marker, 0, len(seen))
	for _, m := range Markers {
		if seen[m] {
			out = append(out, m)
		}
	}
	return out
}
