package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*VoteCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVoteCache(client, time.Minute), srv
}

func TestVoteCache_MarkAndLookup(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()

	voted, err := cache.HasVoted(ctx, "p1", "a@x.io")
	require.NoError(t, err)
	assert.False(t, voted)

	require.NoError(t, cache.MarkVoted(ctx, "p1", "a@x.io"))

	voted, err = cache.HasVoted(ctx, "p1", "a@x.io")
	require.NoError(t, err)
	assert.True(t, voted)

	voted, err = cache.HasVoted(ctx, "p2", "a@x.io")
	require.NoError(t, err)
	assert.False(t, voted, "membership is per product")

	assert.Equal(t, time.Minute, srv.TTL("votes:p1"))
}

func TestVoteCache_Expiry(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.MarkVoted(ctx, "p1", "a@x.io"))
	srv.FastForward(2 * time.Minute)

	voted, err := cache.HasVoted(ctx, "p1", "a@x.io")
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestVoteCache_Forget(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.MarkVoted(ctx, "p1", "a@x.io"))
	require.NoError(t, cache.Forget(ctx, "p1"))
	assert.False(t, srv.Exists("votes:p1"))
}

func TestVoteCache_IDCaseInsensitive(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()
	upper, lower := "64B7F0C2A1B2C3D4E5F60718", "64b7f0c2a1b2c3d4e5f60718"

	require.NoError(t, cache.MarkVoted(ctx, upper, "a@x.io"))

	voted, err := cache.HasVoted(ctx, lower, "a@x.io")
	require.NoError(t, err)
	assert.True(t, voted)

	require.NoError(t, cache.Forget(ctx, lower))
	assert.False(t, srv.Exists("votes:"+lower))
	assert.False(t, srv.Exists("votes:"+upper))

	voted, err = cache.HasVoted(ctx, upper, "a@x.io")
	require.NoError(t, err)
	assert.False(t, voted, "a deleted product must not keep voters under another id spelling")
}

func TestVoteCache_ServerDown(t *testing.T) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewVoteCache(client, time.Minute)
	srv.Close()

	_, err = cache.HasVoted(context.Background(), "p1", "a@x.io")
	assert.Error(t, err)
}

func TestVoteCache_Disabled(t *testing.T) {
	cache := NewVoteCache(nil, 0)
	ctx := context.Background()

	require.NoError(t, cache.MarkVoted(ctx, "p1", "a@x.io"))
	voted, err := cache.HasVoted(ctx, "p1", "a@x.io")
	require.NoError(t, err)
	assert.False(t, voted)
	assert.NoError(t, cache.Forget(ctx, "p1"))
}

func TestConnect(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = Connect(context.Background(), Config{})
	assert.Error(t, err)
}
