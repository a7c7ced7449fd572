// Package server exposes the portal over HTTP: catalog browsing, rendered
// tables and their exports, search, analysis, sessions and workbook import.
//
// Requests pass through request-id, tracing, access-log, metrics, recovery,
// rate-limit and body-limit middleware before reaching a handler. Handlers
// forward the caller's session tokens to the statistics API through the
// request context.
package server
