// Package upstream is the client of the statistics REST API.
//
// A single Client is shared by every portal session. The tokens of the
// session on whose behalf a call is made travel in the context (see
// WithCredentials). When the API rejects an expired access token the client
// refreshes it once, stores the new token in the session and replays the
// request; if that fails the session is cleared and ErrSessionExpired is
// returned so that callers can send the user back to the login page.
//
// Calls go through a sony/gobreaker circuit breaker, are traced with
// OpenTelemetry and are counted in the statportal_upstream_* metrics.
package upstream
