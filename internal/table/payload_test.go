package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyPayload = `{
  "format": "ancien",
  "has_sous_indicateurs": true,
  "meta": {"titre": "Population par région", "source": "Projections INS 2024"},
  "colonnes_groupées": {"2023": ["Hommes", "Femmes"], "2030": [""], "2023": ["Total"]},
  "data": [
    {"indicateur": "Nord", "valeurs": {"2023": {"Hommes": "1200", "Femmes": null}}},
    {"indicateur": "Sud", "valeurs": {}, "sous_indicateurs": [
      {"nom": "Urbain", "valeurs": {"2030": {"": 42}}},
      {"nom": "Rural", "valeurs": {"": {"2030": "ns"}}}
    ]}
  ],
  "notes": ["Estimations"]
}`

func TestDecode_Legacy(t *testing.T) {
	t.Parallel()

	tbl, err := Decode([]byte(legacyPayload))
	require.NoError(t, err)

	legacy, ok := tbl.(*LegacyTable)
	require.True(t, ok)
	assert.Equal(t, VariantLegacy, legacy.Variant())
	assert.Equal(t, "Population par région", legacy.Meta().Title)
	assert.Equal(t, DefaultRowLabel, legacy.Meta().RowLabel)
	assert.Equal(t, []string{"Estimations"}, legacy.Notes())
	assert.Equal(t, 2, legacy.RowCount())
	assert.True(t, legacy.HasAnySubIndicators())

	// Duplicate principal keys survive decoding in order.
	require.Len(t, legacy.Groups(), 3)
	assert.Equal(t, "2023", legacy.Groups()[0].Principal)
	assert.Equal(t, "2030", legacy.Groups()[1].Principal)
	assert.Equal(t, []string{"Total"}, legacy.Groups()[2].Subs)

	// JSON null cells are dropped; numbers keep their literal text.
	_, present := legacy.Rows[0].Values["2023"]["Femmes"]
	assert.False(t, present)
	assert.Equal(t, "42", legacy.Rows[1].SubIndicators[0].Values["2030"][""])
}

func TestDecode_Current(t *testing.T) {
	t.Parallel()

	payload := `{
	  "meta": {"titre": "T", "source": "S", "etiquette_ligne": "Branche"},
	  "colonnes_order": [{"principal": "2020", "sous": "Q1"}, {"principal": "2020", "sous": "Q2"}],
	  "data": [
	    {"indicateur": "Total", "niveau": 0, "valeurs": {}},
	    {"indicateur": "Industrie", "niveau": 2, "is_section": true, "valeurs": {}},
	    {"indicateur": "Bad depth", "niveau": -3, "valeurs": {}},
	    {"indicateur": "No depth", "valeurs": null}
	  ]
	}`

	tbl, err := Decode([]byte(payload))
	require.NoError(t, err)

	current, ok := tbl.(*CurrentTable)
	require.True(t, ok)
	assert.Equal(t, VariantCurrent, current.Variant())
	assert.Equal(t, "Branche", current.Meta().RowLabel)
	assert.False(t, current.HasAnySubIndicators())
	require.Len(t, current.Rows, 4)
	assert.Equal(t, 0, current.Rows[0].Depth)
	assert.Equal(t, 2, current.Rows[1].Depth)
	assert.True(t, current.Rows[1].Section)
	assert.Equal(t, 0, current.Rows[2].Depth)
	assert.Equal(t, 0, current.Rows[3].Depth)
	assert.Nil(t, current.Rows[3].Values)
}

func TestDecode_VariantSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    Variant
	}{
		{name: "explicit ancien", payload: `{"format":"ancien","data":[]}`, want: VariantLegacy},
		{name: "ancien any case", payload: `{"format":"ANCIEN","data":[]}`, want: VariantLegacy},
		{name: "sub indicators flag", payload: `{"format":"nouveau","has_sous_indicateurs":true}`, want: VariantLegacy},
		{name: "nouveau", payload: `{"format":"nouveau"}`, want: VariantCurrent},
		{name: "absent", payload: `{}`, want: VariantCurrent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tbl, err := Decode([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, tbl.Variant())
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `<html>`},
		{name: "groups not object", payload: `{"colonnes_groupées": ["a"]}`},
		{name: "subs not list", payload: `{"colonnes_groupées": {"a": "b"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestColumnGroups_MarshalKeepsOrder(t *testing.T) {
	t.Parallel()

	groups := ColumnGroups{
		{Principal: "b", Subs: []string{"x"}},
		{Principal: "a"},
		{Principal: "b", Subs: []string{"y"}},
	}
	data, err := groups.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":["x"],"a":[],"b":["y"]}`, string(data))
}

func TestValues_ScalarPrincipalSkipped(t *testing.T) {
	t.Parallel()

	var v Values
	require.NoError(t, v.UnmarshalJSON([]byte(`{"a": "oops", "b": {"": true, "c": [1]}}`)))
	_, hasA := v["a"]
	assert.False(t, hasA)
	assert.Equal(t, map[string]string{"": "true"}, v["b"])
}

func TestDecode_NonObjectValuesRenderAsNA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values string
	}{
		{name: "array", values: `[]`},
		{name: "string", values: `"oops"`},
		{name: "number", values: `12`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			payload := `{"colonnes_groupées": {"2020": [""], "2021": [""]}, "data": [
			  {"indicateur": "a", "valeurs": ` + tt.values + `},
			  {"indicateur": "b", "valeurs": {"2020": {"": "5"}}}
			]}`
			tbl, err := Decode([]byte(payload))
			require.NoError(t, err)

			v := Build(tbl, DefaultOptions())
			require.Len(t, v.Rows, 2)
			require.Len(t, v.Rows[0].Cells, 2)
			for _, c := range v.Rows[0].Cells {
				assert.Equal(t, "NA", c.Text)
			}
			assert.Equal(t, "5", v.Rows[1].Cells[0].Text)
		})
	}
}
