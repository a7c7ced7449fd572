// Package analysis turns the flat analysis cells and per-region map values
// served upstream into chart series and choropleth classes.
package analysis
