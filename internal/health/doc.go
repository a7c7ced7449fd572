// Package health serves the liveness and readiness probes.
//
// Liveness (/healthz) reports that the process is up. Readiness (/readyz)
// runs every registered dependency check, the upstream statistics API and
// the Redis stores among them, and answers 503 when a critical one fails.
package health
