package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	c := NewRedisCache(NewRedisClient("localhost:0", "", 0), "cozycup")
	assert.Equal(t, "cozycup:menu:all", c.GenerateKey("menu", "all"))
	assert.Equal(t, "cozycup:menu:all", NewNoop("cozycup").GenerateKey("menu", "all"))
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	c := NewNoop("cozycup")

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)
	assert.NoError(t, c.DeletePrefix(ctx, "cozycup:menu:"))
}

func TestRedisCache_Integration(t *testing.T) {
	client := NewRedisClient("localhost:6379", "", 15)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer client.Close()

	c := NewRedisCache(client, "cozycup_test")
	key := c.GenerateKey("menu", "all")

	require.NoError(t, c.Set(ctx, key, `[{"id":1}]`, time.Minute))
	val, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, val)

	require.NoError(t, c.DeletePrefix(ctx, "cozycup_test:menu:"))
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
