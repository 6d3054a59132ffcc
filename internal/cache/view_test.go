package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type view struct {
	Name string `json:"name"`
}

func TestViewCache_Disabled(t *testing.T) {
	ctx := context.Background()
	c := NewViewCache[view](nil, "user", time.Minute)

	assert.False(t, c.Enabled())
	c.Set(ctx, "1", &view{Name: "a"})
	c.Delete(ctx, "1")
	_, ok := c.Get(ctx, "1")
	assert.False(t, ok)

	var nilCache *ViewCache[view]
	assert.False(t, nilCache.Enabled())
}

func TestViewCache_Key(t *testing.T) {
	c := NewViewCache[view](nil, "user", time.Minute)
	assert.Equal(t, "user:42", c.Key("42"))
}

// An unreachable Redis degrades to misses instead of errors.
func TestViewCache_UnreachableRedis(t *testing.T) {
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewViewCache[view](rdb, "user", time.Minute)
	require.True(t, c.Enabled())

	c.Set(ctx, "1", &view{Name: "a"})
	_, ok := c.Get(ctx, "1")
	assert.False(t, ok)
	c.Delete(ctx, "1")
}

func TestNewClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := NewClient(ctx, "127.0.0.1:1", "")
	require.Error(t, err)
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestViewCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniredis(t)
	c := NewViewCache[view](rdb, "user", time.Minute)

	_, ok := c.Get(ctx, "1")
	assert.False(t, ok)

	c.Set(ctx, "1", &view{Name: "a"})
	require.True(t, mr.Exists("user:1"))
	assert.Equal(t, time.Minute, mr.TTL("user:1"))

	got, ok := c.Get(ctx, "1")
	require.True(t, ok)
	assert.Equal(t, "a", got.Name)

	c.Set(ctx, "2", &view{Name: "b"})
	c.Delete(ctx, "1", "2")
	assert.False(t, mr.Exists("user:1"))
	assert.False(t, mr.Exists("user:2"))
	_, ok = c.Get(ctx, "1")
	assert.False(t, ok)
}

func TestViewCache_Expires(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniredis(t)
	c := NewViewCache[view](rdb, "user", time.Minute)

	c.Set(ctx, "1", &view{Name: "a"})
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "1")
	assert.False(t, ok)
}

func TestViewCache_UndecodableValueIsMiss(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniredis(t)
	c := NewViewCache[view](rdb, "user", time.Minute)

	require.NoError(t, mr.Set("user:1", "not json"))
	_, ok := c.Get(ctx, "1")
	assert.False(t, ok)
}
