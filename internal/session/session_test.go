package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/retry"
	"github.com/vyrodovalexey/statportal/internal/upstream"
)

func fastRetry() *retry.Config {
	return &retry.Config{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func newRedisTestStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := New(config.SessionConfig{
		Type:  config.StoreRedis,
		TTL:   config.Duration(time.Hour),
		Redis: config.RedisConfig{Address: mr.Addr(), KeyPrefix: "s:"},
	}, WithLogger(observability.NopLogger()), WithRetryConfig(fastRetry()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	tok := jwt.New()
	require.NoError(t, tok.Set(jwt.SubjectKey, "4"))
	if !exp.IsZero() {
		require.NoError(t, tok.Set(jwt.ExpirationKey, exp))
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte("upstream-secret")))
	require.NoError(t, err)
	return string(signed)
}

func TestStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore(time.Hour) },
		"redis": func(t *testing.T) Store {
			s, _ := newRedisTestStore(t)
			return s
		},
	}

	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store := mk(t)
			ctx := context.Background()

			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			in := &State{
				Access:  "a",
				Refresh: "r",
				User:    &upstream.User{ID: 4, Email: "chef@example.org", IsChef: true, Category: &upstream.UserCategory{ID: 2, Name: "Démographie"}},
			}
			require.NoError(t, store.Set(ctx, "id", in))

			got, err := store.Get(ctx, "id")
			require.NoError(t, err)
			assert.Equal(t, "a", got.Access)
			assert.Equal(t, "r", got.Refresh)
			require.NotNil(t, got.User)
			assert.Equal(t, "chef@example.org", got.User.Email)
			assert.Equal(t, 2, got.User.CategoryID())
			assert.True(t, got.Authenticated())

			require.NoError(t, store.Delete(ctx, "id"))
			_, err = store.Get(ctx, "id")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "id", &State{Access: "a"}))
	now = now.Add(2 * time.Minute)

	_, err := store.Get(ctx, "id")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "id", &State{User: &upstream.User{Email: "a@b"}}))

	got, err := store.Get(ctx, "id")
	require.NoError(t, err)
	got.User.Email = "changed"

	again, err := store.Get(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, "a@b", again.User.Email)
}

func TestRedisStore_TTLAndCorruption(t *testing.T) {
	t.Parallel()

	store, mr := newRedisTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "id", &State{Access: "a"}))
	assert.Equal(t, time.Hour, mr.TTL("s:id"))

	require.NoError(t, mr.Set("s:bad", "{not json"))
	_, err := store.Get(ctx, "bad")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("s:bad"))

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, "id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(config.SessionConfig{Type: "cookie"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(config.SessionConfig{Type: config.StoreRedis})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	s, err := New(config.SessionConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}

func TestHandle_LoginClearsPreviousState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	h := NewHandle(store, NewID())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, h.ID(), &State{
		Access:  "old",
		Refresh: "old-refresh",
		User:    &upstream.User{Email: "previous@example.org", IsSuperuser: true},
	}))

	require.NoError(t, h.Login(ctx, &upstream.LoginResponse{
		Access:  "a",
		Refresh: "r",
		User:    upstream.User{ID: 9, Email: "agent@example.org"},
	}))

	state, err := h.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", state.Access)
	assert.Equal(t, "agent@example.org", state.User.Email)
	assert.False(t, state.User.IsSuperuser)
	assert.False(t, state.CreatedAt.IsZero())

	assert.Error(t, h.Login(ctx, nil))
}

func TestHandle_Credentials(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	h := NewHandle(store, "id")
	ctx := context.Background()

	access, refresh := h.Tokens(ctx)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
	assert.ErrorIs(t, h.SetAccess(ctx, "x"), ErrNotFound)
	assert.Nil(t, h.User(ctx))

	require.NoError(t, h.Login(ctx, &upstream.LoginResponse{Access: "a", Refresh: "r", User: upstream.User{IsChef: true}}))
	require.NoError(t, h.SetAccess(ctx, "b"))
	access, refresh = h.Tokens(ctx)
	assert.Equal(t, "b", access)
	assert.Equal(t, "r", refresh)
	assert.True(t, h.User(ctx).CanImport())

	require.NoError(t, h.Clear(ctx))
	access, _ = h.Tokens(ctx)
	assert.Empty(t, access)
}

func TestHandle_Info(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	h := NewHandle(store, "id")
	ctx := context.Background()

	assert.Equal(t, Info{}, h.Info(ctx))

	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	require.NoError(t, h.Login(ctx, &upstream.LoginResponse{
		Access: signedToken(t, exp),
		User:   upstream.User{IsSuperuser: true},
	}))

	info := h.Info(ctx)
	assert.True(t, info.Authenticated)
	assert.True(t, info.CanImport)
	require.NotNil(t, info.AccessExpiresAt)
	assert.True(t, exp.Equal(*info.AccessExpiresAt))
}

func TestAccessExpiry(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour).Truncate(time.Second)

	tests := []struct {
		name   string
		token  string
		wantOK bool
		want   time.Time
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "no exp", token: signedToken(t, time.Time{})},
		{name: "expired token still reports exp", token: signedToken(t, past), wantOK: true, want: past},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := AccessExpiry(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got))
			}
		})
	}
}
