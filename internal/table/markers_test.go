package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		table Table
		want  []Marker
	}{
		{
			name:  "none",
			table: &CurrentTable{Rows: []CurrentRow{{Values: Values{"a": {"": "12"}}}}},
			want:  []Marker{},
		},
		{
			name: "vocabulary order and case folding",
			table: &CurrentTable{Rows: []CurrentRow{
				{Values: Values{"a": {"": "na"}}},
				{Values: Values{"b": {"x": " n/d "}, "c": {"": "Ns"}}},
			}},
			want: []Marker{MarkerNotAvailable, MarkerNotSpecified, MarkerNotApplicable},
		},
		{
			name: "sub indicator values scanned",
			table: &LegacyTable{Rows: []LegacyRow{{
				Values:        Values{"a": {"": "1"}},
				SubIndicators: []SubIndicator{{Name: "s", Values: Values{"a": {"": "NS"}}}},
			}}},
			want: []Marker{MarkerNotSpecified},
		},
		{
			name:  "unknown codes ignored",
			table: &CurrentTable{Rows: []CurrentRow{{Values: Values{"a": {"": "ND"}, "b": {"": "X"}}}}},
			want:  []Marker{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DetectMarkers(tt.table))
		})
	}
}

func TestDetectMarkers_DoesNotMutate(t *testing.T) {
	t.Parallel()

	tbl := &CurrentTable{Rows: []CurrentRow{{Values: Values{"a": {"": "na"}}}}}
	require.Equal(t, []Marker{MarkerNotApplicable}, DetectMarkers(tbl))
	assert.Equal(t, "na", tbl.Rows[0].Values["a"][""])
}

func TestMarker_LegendLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "N/D : Non disponible", MarkerNotAvailable.LegendLine())
	assert.Equal(t, "NS : Non spécifié", MarkerNotSpecified.LegendLine())
	assert.Equal(t, "NA : Non applicable", MarkerNotApplicable.LegendLine())
}
