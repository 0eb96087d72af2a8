package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestAppSessionLifecycle(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewAppSessionStore(rdb, time.Hour)
	ctx := context.Background()

	id, err := store.Create(ctx, "u1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	as, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "u1", as.UserID)
	assert.Equal(t, as.IssuedAt+3600, as.ExpiresAt)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, store.Delete(ctx, id), "deleting twice is harmless")

	id, err = store.Create(ctx, "u1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRevokeAllForUser(t *testing.T) {
	_, rdb := newRedis(t)
	store := NewAppSessionStore(rdb, time.Hour)
	ctx := context.Background()

	a, err := store.Create(ctx, "u1")
	require.NoError(t, err)
	b, err := store.Create(ctx, "u1")
	require.NoError(t, err)
	other, err := store.Create(ctx, "u2")
	require.NoError(t, err)

	n, err := store.RevokeAllForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, id := range []string{a, b} {
		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNoSession)
	}
	_, err = store.Get(ctx, other)
	assert.NoError(t, err)
}

func TestCeremonyIsSingleUse(t *testing.T) {
	_, rdb := newRedis(t)
	store := NewCeremonyStore(rdb, time.Minute)
	ctx := context.Background()

	sd := &webauthn.SessionData{Challenge: "abc", UserID: []byte("u1")}
	require.NoError(t, store.SaveLogin(ctx, "sid-1", sd))

	got, err := store.TakeLogin(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Challenge)

	_, err = store.TakeLogin(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.SaveRegistration(ctx, "u1", sd))
	_, err = store.TakeRegistration(ctx, "u2")
	assert.ErrorIs(t, err, ErrNoSession)
	got, err = store.TakeRegistration(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []byte("u1"), got.UserID)
}
