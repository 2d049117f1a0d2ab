package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBlacklist(t *testing.T) (*miniredis.Miniredis, *RedisTokenBlacklist) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisTokenBlacklist(client)
}

func TestRedisTokenBlacklist_Revoke(t *testing.T) {
	mr, bl := newRedisBlacklist(t)
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists("crm:token:blacklist:jti:jti-1"))

	revoked, err = bl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenBlacklist_RevokeUser(t *testing.T) {
	_, bl := newRedisBlacklist(t)
	ctx := context.Background()
	issued := time.Now().Add(-time.Hour)

	revoked, err := bl.IsUserRevoked(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))

	revoked, err = bl.IsUserRevoked(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsUserRevoked(ctx, "user-1", time.Now().Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, revoked, "tokens issued after revocation stay valid")
}

func TestRedisTokenBlacklist_Unavailable(t *testing.T) {
	mr, bl := newRedisBlacklist(t)
	mr.Close()

	_, err := bl.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	bl.nowFunc = func() time.Time { return now }

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))
	revoked, _ := bl.IsRevoked(ctx, "jti-1")
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = bl.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)
	assert.NotContains(t, bl.jtis, "jti-1")

	require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))
	revoked, _ = bl.IsUserRevoked(ctx, "user-1", now.Add(-time.Minute))
	assert.True(t, revoked)
	revoked, _ = bl.IsUserRevoked(ctx, "user-1", now.Add(time.Minute))
	assert.False(t, revoked)
	revoked, _ = bl.IsUserRevoked(ctx, "user-2", now)
	assert.False(t, revoked)
}
