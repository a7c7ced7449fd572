package upstream

import (
	"context"
	"sync"
)

// Credentials holds the tokens of one portal session.
type Credentials interface {
	// Tokens returns the current access and refresh tokens. Either may be
	// empty.
	Tokens(ctx context.Context) (access, refresh string)

	// SetAccess stores a renewed access token.
	SetAccess(ctx context.Context, access string) error

	// Clear forgets every token and the user.
	Clear(ctx context.Context) error
}

type credentialsKey struct{}

// WithCredentials attaches the session tokens used by calls made with ctx.
func WithCredentials(ctx context.Context, c Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, c)
}

// CredentialsFromContext returns the attached credentials, or nil.
func CredentialsFromContext(ctx context.Context) Credentials {
	c, _ := ctx.Value(credentialsKey{}).(Credentials)
	return c
}

// StaticCredentials is an in-process Credentials used by the CLI.
type StaticCredentials struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewStaticCredentials returns credentials holding the given tokens.
func NewStaticCredentials(access, refresh string) *StaticCredentials {
	return &StaticCredentials{access: access, refresh: refresh}
}

// Tokens implements Credentials.
func (s *StaticCredentials) Tokens(context.Context) (access, refresh string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.refresh
}

// SetAccess implements Credentials.
func (s *StaticCredentials) SetAccess(_ context.Context, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	return nil
}

// Clear implements Credentials.
func (s *StaticCredentials) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access, s.refresh = "", ""
	return nil
}
