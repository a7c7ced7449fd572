// Package session keeps the portal sessions: the token pair and the user
// returned by login, keyed by an opaque session id carried in a cookie.
//
// Stores are in-memory or Redis backed. A Handle binds a store to one
// session id and implements upstream.Credentials, so the API client can
// read and renew tokens of the session it acts for.
package session
