package table

import (
	"regexp"
	"strings"
	"unicode"
)

// numericCell matches an optionally signed integer with an optional decimal
// part using a comma or period separator.
var numericCell = regexp.MustCompile(`^([+-]?)(\d+)([.,]\d+)?$`)

// Resolve returns the raw value of a cell. Lookup tiers, in order: the exact
// (principal, sub) pair, the principal with an empty sub, then the empty
// principal keyed by the principal label. It returns "" when nothing matches.
func Resolve(values Values, entry ColumnOrderEntry) string {
	if values == nil {
		return ""
	}
	if subs, ok := values[entry.Principal]; ok {
		if s, ok := subs[entry.Sub]; ok {
			return s
		}
		if s, ok := subs[""]; ok {
			return s
		}
	}
	if flat, ok := values[""]; ok {
		if s, ok := flat[entry.Principal]; ok {
			return s
		}
	}
	return ""
}

// FormatCell turns a raw cell into its display string.
//
// Blank input renders as the NA marker. Percentages and anything that is not
// a plain number are returned unchanged. Numbers get a space every three
// integer digits; the sign and decimal suffix are kept verbatim.
func FormatCell(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return string(MarkerNotApplicable)
	}
	if strings.Contains(s, "%") {
		return raw
	}

	m := numericCell.FindStringSubmatch(stripSpaces(s))
	if m == nil {
		return raw
	}
	return m[1] + groupThousands(m[2]) + m[3]
}

// FormatResolved resolves and formats a cell in one step.
func FormatResolved(values Values, entry ColumnOrderEntry) string {
	return FormatCell(Resolve(values, entry))
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// groupThousands inserts a space every three digits from the right.
func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	b.Grow(n + n/3)
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
