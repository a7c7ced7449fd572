// Package search implements the global search: result links, preview
// truncation and a debounced latest-wins Searcher for interactive input.
package search
