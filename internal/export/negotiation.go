package export

import (
	"sort"
	"strconv"
	"strings"
)

// contentTypes maps the media types clients may ask for to formats.
var contentTypes = map[string]Format{
	MimeCSV:  FormatCSV,
	MimeXLSX: FormatXLSX,
	MimePDF:  FormatPDF,
	MimeHTML: FormatHTML,
}

// Negotiate picks the export format. An explicit format name wins;
// otherwise the best match of the Accept header is used, falling back to
// def.
func Negotiate(explicit, accept string, def Format) (Format, error) {
	if strings.TrimSpace(explicit) != "" {
		return ParseFormat(explicit)
	}
	if accept == "" {
		return def, nil
	}

	ranges := parseAccept(accept)
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].quality > ranges[j].quality })
	for _, mr := range ranges {
		if mr.quality <= 0 {
			continue
		}
		if f, ok := contentTypes[mr.mediaType]; ok {
			return f, nil
		}
		if mr.mediaType == "*/*" {
			return def, nil
		}
	}
	return def, nil
}

type mediaRange struct {
	mediaType string
	quality   float64
}

// parseAccept splits an Accept header such as
// "application/pdf, text/csv;q=0.5".
func parseAccept(header string) []mediaRange {
	parts := strings.Split(header, ",")
	out := make([]mediaRange, 0, len(parts))
	for _, part := range parts {
		segments := strings.Split(strings.TrimSpace(part), ";")
		mt := strings.ToLower(strings.TrimSpace(segments[0]))
		if mt == "" {
			continue
		}
		mr := mediaRange{mediaType: mt, quality: 1}
		for _, param := range segments[1:] {
			if q, ok := strings.CutPrefix(strings.TrimSpace(param), "q="); ok {
				if v, err := strconv.ParseFloat(q, 64); err == nil {
					mr.quality = v
				}
			}
		}
		out = append(out, mr)
	}
	return out
}
