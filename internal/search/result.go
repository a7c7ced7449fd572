package search

import (
	"strconv"

	"github.com/vyrodovalexey/statportal/internal/upstream"
)

const (
	// DefaultMinQueryLength is the shortest query sent upstream.
	DefaultMinQueryLength = 2

	// DefaultPreviewSize is the number of results shown before "see all".
	DefaultPreviewSize = 5
)

// noLink is the target of results of an unknown kind.
const noLink = "#"

// Item is a search hit with its portal link.
type Item struct {
	Type   string `json:"type"`
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
	Link   string `json:"link"`
}

// Result is the outcome of one query.
type Result struct {
	Query string `json:"query"`
	Items []Item `json:"items"`
	Total int    `json:"total"`

	// Truncated is set when Items holds only the preview.
	Truncated bool `json:"truncated"`

	Err error `json:"-"`

	token uint64
}

// Link returns the portal route of a search hit.
func Link(r upstream.SearchResult) string {
	id := strconv.Itoa(r.ID)
	switch r.Type {
	case upstream.KindTable:
		return "/tableaux/" + id
	case upstream.KindCategory:
		return "/categories/" + id
	case upstream.KindTheme:
		return "/themes/" + id
	default:
		return noLink
	}
}

// Summarize builds a Result. When all is false and previewSize is positive
// only the first previewSize hits are kept; Total always counts every hit.
func Summarize(query string, hits []upstream.SearchResult, previewSize int, all bool) Result {
	res := Result{Query: query, Total: len(hits), Items: []Item{}}

	n := len(hits)
	if !all && previewSize > 0 && n > previewSize {
		n = previewSize
		res.Truncated = true
	}
	for _, h := range hits[:n] {
		res.Items = append(res.Items, Item{
			Type:   h.Type,
			ID:     h.ID,
			Name:   h.Name,
			Source: h.Source,
			Link:   Link(h),
		})
	}
	return res
}
