package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vyrodovalexey/statportal/internal/upstream"
)

func TestLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want string
	}{
		{kind: upstream.KindTable, want: "/tableaux/12"},
		{kind: upstream.KindCategory, want: "/categories/12"},
		{kind: upstream.KindTheme, want: "/themes/12"},
		{kind: "Source", want: "#"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Link(upstream.SearchResult{Type: tt.kind, ID: 12}))
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	hits := hitsFor("q", 6)
	hits[0].Source = "RGPH"

	preview := Summarize("q", hits, 5, false)
	assert.Equal(t, 6, preview.Total)
	assert.Len(t, preview.Items, 5)
	assert.True(t, preview.Truncated)
	assert.Equal(t, Item{Type: upstream.KindTable, ID: 1, Name: "q", Source: "RGPH", Link: "/tableaux/1"}, preview.Items[0])

	all := Summarize("q", hits, 5, true)
	assert.Len(t, all.Items, 6)
	assert.False(t, all.Truncated)

	empty := Summarize("q", nil, 5, false)
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.Total)
}
