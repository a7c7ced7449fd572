package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPayload indicates that a table payload could not be decoded.
var ErrMalformedPayload = errors.New("malformed table payload")

// DefaultRowLabel is the leading header label used when the payload does not
// name its row dimension.
const DefaultRowLabel = "Indicateur"

// Variant identifies the backend table shape.
type Variant string

const (
	// VariantLegacy is the "ancien" shape with nested sub-indicators.
	VariantLegacy Variant = "legacy"

	// VariantCurrent is the "nouveau" shape with depth-based rows.
	VariantCurrent Variant = "current"
)

// formatLegacy is the wire value of the payload "format" field for legacy
// tables.
const formatLegacy = "ancien"

// ColumnGroup maps a principal column label to its ordered sub-column labels.
type ColumnGroup struct {
	Principal string
	Subs      []string
}

// ColumnGroups is the ordered list of column groups exactly as received.
// Repeated principal labels are kept as separate groups.
type ColumnGroups []ColumnGroup

// UnmarshalJSON decodes a JSON object while keeping key order and duplicate
// keys, which a Go map would lose.
func (g *ColumnGroups) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*g = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("column groups: expected object, got %v", tok)
	}

	out := make(ColumnGroups, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("column groups: unexpected key %v", keyTok)
		}

		var subs []string
		if err := dec.Decode(&subs); err != nil {
			return fmt.Errorf("column groups: %q: %w", key, err)
		}
		out = append(out, ColumnGroup{Principal: key, Subs: subs})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*g = out
	return nil
}

// MarshalJSON encodes the groups as a JSON object in their stored order.
func (g ColumnGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, group := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(group.Principal)
		if err != nil {
			return nil, err
		}
		subs := group.Subs
		if subs == nil {
			subs = []string{}
		}
		val, err := json.Marshal(subs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ColumnOrderEntry is one (principal, sub) position on the column axis.
type ColumnOrderEntry struct {
	Principal string `json:"principal"`
	Sub       string `json:"sous"`
}

// Values is the two-level cell lookup: principal label, then sub label, then
// the raw cell string.
type Values map[string]map[string]string

// UnmarshalJSON accepts string, number and boolean cells. JSON null cells are
// dropped so that resolution falls through to the next lookup tier. Lookups
// that are not objects decode as empty.
func (v *Values) UnmarshalJSON(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		// A non-object lookup is an empty row, not a broken table.
		*v = nil
		return nil
	}
	if outer == nil {
		*v = nil
		return nil
	}

	out := make(Values, len(outer))
	for principal, rawInner := range outer {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(rawInner, &inner); err != nil {
			// A scalar where an object is expected carries no addressable cell.
			continue
		}
		if inner == nil {
			continue
		}
		cells := make(map[string]string, len(inner))
		for sub, rawCell := range inner {
			if s, ok := cellText(rawCell); ok {
				cells[sub] = s
			}
		}
		out[principal] = cells
	}

	*v = out
	return nil
}

// cellText converts a raw JSON cell to its display source text.
func cellText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		return "", false
	default:
		// Numbers and booleans keep their literal spelling.
		return string(trimmed), true
	}
}

// SubIndicator is a nested legacy row under a parent indicator.
type SubIndicator struct {
	Name   string `json:"nom"`
	Values Values `json:"valeurs"`
}

// Meta describes a table.
type Meta struct {
	Title    string `json:"titre"`
	Source   string `json:"source"`
	RowLabel string `json:"etiquette_ligne"`
}

// Table is a decoded payload. It is implemented by *LegacyTable and
// *CurrentTable only.
type Table interface {
	// Variant reports the table shape.
	Variant() Variant

	// Meta returns the title, source and row label.
	Meta() Meta

	// Groups returns the column groups in received order.
	Groups() ColumnGroups

	// ColumnOrder returns the canonical flattened column axis.
	ColumnOrder() []ColumnOrderEntry

	// Notes returns the footnotes.
	Notes() []string

	// HasAnySubIndicators reports whether any row nests sub-indicators.
	HasAnySubIndicators() bool

	// RowCount returns the number of top-level rows.
	RowCount() int

	eachValues(fn func(Values))
}

// base holds the fields shared by both table shapes.
type base struct {
	meta   Meta
	groups ColumnGroups
	order  []ColumnOrderEntry
	notes  []string
}

func (b *base) Meta() Meta { return b.meta }

func (b *base) Groups() ColumnGroups { return b.groups }

func (b *base) Notes() []string { return b.notes }

// ColumnOrder returns the explicit order when present, else derives it.
func (b *base) ColumnOrder() []ColumnOrderEntry {
	if len(b.order) > 0 {
		out := make([]ColumnOrderEntry, len(b.order))
		copy(out, b.order)
		return out
	}
	return BuildOrderFromGroups(b.groups)
}

// LegacyRow is a row of a legacy table.
type LegacyRow struct {
	Indicator     string
	Values        Values
	SubIndicators []SubIndicator
}

// LegacyTable is the "ancien" table shape.
type LegacyTable struct {
	base
	Rows []LegacyRow
}

// Variant implements Table.
func (t *LegacyTable) Variant() Variant { return VariantLegacy }

// RowCount implements Table.
func (t *LegacyTable) RowCount() int { return len(t.Rows) }

// HasAnySubIndicators implements Table.
func (t *LegacyTable) HasAnySubIndicators() bool {
	for i := range t.Rows {
		if len(t.Rows[i].SubIndicators) > 0 {
			return true
		}
	}
	return false
}

func (t *LegacyTable) eachValues(fn func(Values)) {
	for i := range t.Rows {
		fn(t.Rows[i].Values)
		for _, sub := range t.Rows[i].SubIndicators {
			fn(sub.Values)
		}
	}
}

// CurrentRow is a row of a current table.
type CurrentRow struct {
	Indicator string
	Depth     int
	Section   bool
	Values    Values
}

// CurrentTable is the "nouveau" table shape.
type CurrentTable struct {
	base
	Rows []CurrentRow
}

// Variant implements Table.
func (t *CurrentTable) Variant() Variant { return VariantCurrent }

// RowCount implements Table.
func (t *CurrentTable) RowCount() int { return len(t.Rows) }

// HasAnySubIndicators implements Table. Current tables never nest rows.
func (t *CurrentTable) HasAnySubIndicators() bool { return false }

func (t *CurrentTable) eachValues(fn func(Values)) {
	for i := range t.Rows {
		fn(t.Rows[i].Values)
	}
}

// wirePayload mirrors the JSON document served by the structure endpoints.
type wirePayload struct {
	Groups  ColumnGroups       `json:"colonnes_groupées"`
	Order   []ColumnOrderEntry `json:"colonnes_order"`
	Data    []wireRow          `json:"data"`
	HasSubs bool               `json:"has_sous_indicateurs"`
	Meta    *Meta              `json:"meta"`
	Format  string             `json:"format"`
	Notes   []string           `json:"notes"`
}

type wireRow struct {
	Indicator string         `json:"indicateur"`
	Depth     *int           `json:"niveau"`
	Values    Values         `json:"valeurs"`
	Subs      []SubIndicator `json:"sous_indicateurs"`
	Section   bool           `json:"is_section"`
}

// Decode parses a structure payload into its table shape.
func Decode(data []byte) (Table, error) {
	var wire wirePayload
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return fromWire(&wire), nil
}

func fromWire(w *wirePayload) Table {
	b := base{
		groups: w.Groups,
		order:  w.Order,
		notes:  w.Notes,
		meta:   Meta{RowLabel: DefaultRowLabel},
	}
	if w.Meta != nil {
		b.meta = *w.Meta
		if strings.TrimSpace(b.meta.RowLabel) == "" {
			b.meta.RowLabel = DefaultRowLabel
		}
	}

	if strings.EqualFold(w.Format, formatLegacy) || w.HasSubs {
		rows := make([]LegacyRow, 0, len(w.Data))
		for _, r := range w.Data {
			rows = append(rows, LegacyRow{
				Indicator:     r.Indicator,
				Values:        r.Values,
				SubIndicators: r.Subs,
			})
		}
		return &LegacyTable{base: b, Rows: rows}
	}

	rows := make([]CurrentRow, 0, len(w.Data))
	for _, r := range w.Data {
		depth := 0
		if r.Depth != nil && *r.Depth > 0 {
			depth = *r.Depth
		}
		rows = append(rows, CurrentRow{
			Indicator: r.Indicator,
			Depth:     depth,
			Section:   r.Section,
			Values:    r.Values,
		})
	}
	return &CurrentTable{base: b, Rows: rows}
}
