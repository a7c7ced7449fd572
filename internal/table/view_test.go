package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Legacy(t *testing.T) {
	t.Parallel()

	tbl, err := Decode([]byte(legacyPayload))
	require.NoError(t, err)

	v := Build(tbl, DefaultOptions())

	assert.Equal(t, VariantLegacy, v.Variant)
	assert.True(t, v.ShowSubColumn)
	assert.False(t, v.SingleHeaderRow)
	require.Len(t, v.Order, 4)

	// Nord is a leaf row, Sud expands to one row per sub-indicator.
	require.Len(t, v.Rows, 3)
	nord := v.Rows[0]
	assert.Equal(t, "Nord", nord.Label)
	assert.Equal(t, 1, nord.LabelRowSpan)
	assert.True(t, nord.HasSubCell)
	assert.Empty(t, nord.SubLabel)

	wantNord := []CellView{
		{Raw: "1200", Text: "1 200"},
		{Raw: "", Text: "NA"},
		{Raw: "", Text: "NA", Projection: true},
		{Raw: "", Text: "NA"},
	}
	if diff := cmp.Diff(wantNord, nord.Cells); diff != "" {
		t.Errorf("Nord cells mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 2, v.Rows[1].LabelRowSpan)
	assert.Equal(t, "Urbain", v.Rows[1].SubLabel)
	assert.Equal(t, 0, v.Rows[2].LabelRowSpan)
	assert.Equal(t, "Rural", v.Rows[2].SubLabel)
	assert.Equal(t, "42", v.Rows[1].Cells[2].Text)
	assert.Equal(t, "ns", v.Rows[2].Cells[2].Text)

	assert.Equal(t, []LegendEntry{{Code: MarkerNotSpecified, Description: "Non spécifié"}}, v.Legend)
	assert.Equal(t, ProjectionLegend, v.ProjectionLegend)
	assert.Equal(t, []string{"Estimations"}, v.Notes)
}

func TestBuild_Current(t *testing.T) {
	t.Parallel()

	tbl := &CurrentTable{
		base: base{
			meta:  Meta{Title: "PIB", Source: "Comptes nationaux", RowLabel: "Branche"},
			order: []ColumnOrderEntry{{Principal: "2022"}, {Principal: "2023"}},
		},
		Rows: []CurrentRow{
			{Indicator: "Total", Depth: 0, Values: Values{"2022": {"": "15000"}}},
			{Indicator: "Industrie", Depth: 1, Section: true, Values: Values{"": {"2023": "N/D"}}},
			{Indicator: "Mines", Depth: 2, Values: Values{"2022": {"": "12,5%"}}},
		},
	}

	v := Build(tbl, DefaultOptions())

	assert.True(t, v.SingleHeaderRow)
	assert.False(t, v.ShowSubColumn)
	assert.Empty(t, v.ProjectionLegend)

	want := []RowView{
		{
			Label: "Total", LabelRowSpan: 1, Indent: 10, Emphasis: true, Background: BackgroundTop,
			Cells: []CellView{{Raw: "15000", Text: "15 000"}, {Raw: "", Text: "NA"}},
		},
		{
			Label: "Industrie", LabelRowSpan: 1, Depth: 1, Indent: 28, Emphasis: true, Background: BackgroundSection,
			Cells: []CellView{{Raw: "", Text: "NA"}, {Raw: "N/D", Text: "N/D"}},
		},
		{
			Label: "Mines", LabelRowSpan: 1, Depth: 2, Indent: 46, Background: BackgroundPlain,
			Cells: []CellView{{Raw: "12,5%", Text: "12,5%"}, {Raw: "", Text: "NA"}},
		},
	}
	if diff := cmp.Diff(want, v.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []LegendEntry{{Code: MarkerNotAvailable, Description: "Non disponible"}}, v.Legend)
}

func TestBuild_Rectangular(t *testing.T) {
	t.Parallel()

	tbl := &LegacyTable{
		base: base{groups: ColumnGroups{
			{Principal: "A", Subs: []string{"x", "y"}},
			{Principal: "B"},
		}},
		Rows: []LegacyRow{
			{Indicator: "r1"},
			{Indicator: "r2", SubIndicators: []SubIndicator{{Name: "s1"}, {Name: "s2"}, {Name: "s3"}}},
		},
	}

	v := Build(tbl, Options{Layout: DefaultLayoutConfig()})
	require.Len(t, v.Rows, 4)
	for _, r := range v.Rows {
		assert.Len(t, r.Cells, len(v.Order))
		for _, c := range r.Cells {
			assert.Equal(t, "NA", c.Text)
		}
	}
}

func TestBuild_HeaderProjectionFlags(t *testing.T) {
	t.Parallel()

	tbl := &CurrentTable{base: base{
		meta:   Meta{Source: "Projections démographiques"},
		groups: ColumnGroups{{Principal: "2023"}, {Principal: "2040"}},
	}}
	v := Build(tbl, DefaultOptions())

	top := v.Header.Rows[0]
	require.Len(t, top, 3)
	assert.False(t, top[1].Projection)
	assert.True(t, top[2].Projection)
}
