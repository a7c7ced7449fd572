// Package catalog assembles the browsing pages of the portal: categories,
// their themes, the tables of a theme and the sources, each sorted by id
// and optionally filtered by a case-insensitive query.
package catalog
