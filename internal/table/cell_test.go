package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	values := Values{
		"2020": {"H": "10", "": "fallback"},
		"2021": {"H": ""},
		"":     {"2022": "flat", "2020": "flat-2020"},
	}

	tests := []struct {
		name  string
		entry ColumnOrderEntry
		want  string
	}{
		{name: "exact", entry: ColumnOrderEntry{Principal: "2020", Sub: "H"}, want: "10"},
		{name: "principal with empty sub", entry: ColumnOrderEntry{Principal: "2020", Sub: "F"}, want: "fallback"},
		{name: "present empty string stops", entry: ColumnOrderEntry{Principal: "2021", Sub: "H"}, want: ""},
		{name: "flat tier", entry: ColumnOrderEntry{Principal: "2022", Sub: "X"}, want: "flat"},
		{name: "missing principal in sub map falls to flat", entry: ColumnOrderEntry{Principal: "2021", Sub: "F"}, want: ""},
		{name: "nothing", entry: ColumnOrderEntry{Principal: "1999"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Resolve(values, tt.entry))
		})
	}

	assert.Equal(t, "", Resolve(nil, ColumnOrderEntry{Principal: "a"}))
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: "NA"},
		{raw: "   ", want: "NA"},
		{raw: "1234567", want: "1 234 567"},
		{raw: "1234.5", want: "1 234.5"},
		{raw: "-9876,543", want: "-9 876,543"},
		{raw: "+1000", want: "+1 000"},
		{raw: "999", want: "999"},
		{raw: "0", want: "0"},
		{raw: "12 345", want: "12 345"},
		{raw: " 1000000 ", want: "1 000 000"},
		{raw: "12.5%", want: "12.5%"},
		{raw: "1 000 %", want: "1 000 %"},
		{raw: "N/D", want: "N/D"},
		{raw: "1.2.3", want: "1.2.3"},
		{raw: "1e6", want: "1e6"},
		{raw: ".5", want: ".5"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatCell(tt.raw))
		})
	}
}

func TestFormatCell_Idempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"1234567", "-12345.678", "42", "NS", "3,5%", ""} {
		once := FormatCell(raw)
		assert.Equal(t, once, FormatCell(once), raw)
	}
}
