package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vyrodovalexey/statportal/internal/upstream"
)

// Handle is one session bound to its store.
type Handle struct {
	store Store
	id    string
	now   func() time.Time
}

var _ upstream.Credentials = (*Handle)(nil)

// NewHandle binds id to store.
func NewHandle(store Store, id string) *Handle {
	return &Handle{store: store, id: id, now: time.Now}
}

// ID returns the session id.
func (h *Handle) ID() string { return h.id }

// State returns the stored state, or ErrNotFound.
func (h *Handle) State(ctx context.Context) (*State, error) {
	return h.store.Get(ctx, h.id)
}

// Tokens implements upstream.Credentials. A missing session has no tokens.
func (h *Handle) Tokens(ctx context.Context) (access, refresh string) {
	state, err := h.store.Get(ctx, h.id)
	if err != nil {
		return "", ""
	}
	return state.Access, state.Refresh
}

// SetAccess implements upstream.Credentials.
func (h *Handle) SetAccess(ctx context.Context, access string) error {
	state, err := h.store.Get(ctx, h.id)
	if err != nil {
		return err
	}
	state.Access = access
	return h.store.Set(ctx, h.id, state)
}

// Clear implements upstream.Credentials.
func (h *Handle) Clear(ctx context.Context) error {
	return h.store.Delete(ctx, h.id)
}

// Login replaces whatever the session held with a fresh login.
func (h *Handle) Login(ctx context.Context, resp *upstream.LoginResponse) error {
	if resp == nil {
		return errors.New("nil login response")
	}
	if err := h.Clear(ctx); err != nil {
		return fmt.Errorf("clearing previous session: %w", err)
	}
	user := resp.User
	return h.store.Set(ctx, h.id, &State{
		Access:    resp.Access,
		Refresh:   resp.Refresh,
		User:      &user,
		CreatedAt: h.now(),
	})
}

// User returns the logged-in user, or nil.
func (h *Handle) User(ctx context.Context) *upstream.User {
	state, err := h.store.Get(ctx, h.id)
	if err != nil {
		return nil
	}
	return state.User
}

// Info describes a session to the browser.
type Info struct {
	Authenticated   bool           `json:"authenticated"`
	User            *upstream.User `json:"user,omitempty"`
	CanImport       bool           `json:"can_import"`
	AccessExpiresAt *time.Time     `json:"access_expires_at,omitempty"`
}

// Info summarizes the session. Expiry is informational and read from the
// access token without verifying it.
func (h *Handle) Info(ctx context.Context) Info {
	state, err := h.store.Get(ctx, h.id)
	if err != nil || !state.Authenticated() {
		return Info{}
	}
	info := Info{
		Authenticated: true,
		User:          state.User,
		CanImport:     state.User.CanImport(),
	}
	if exp, ok := AccessExpiry(state.Access); ok {
		info.AccessExpiresAt = &exp
	}
	return info
}
