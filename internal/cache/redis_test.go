package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisCacheWithClient(rdb, "test:token", time.Minute), mr
}

func TestRedisCache_TokenRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	token, err := c.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, c.SaveToken(ctx, "tkn1"))
	stored, err := mr.Get("test:token")
	require.NoError(t, err)
	assert.Equal(t, "tkn1", stored)
	assert.Zero(t, mr.TTL("test:token"))

	token, err = c.LoadToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tkn1", token)

	require.NoError(t, c.DeleteToken(ctx))
	require.NoError(t, c.DeleteToken(ctx))
	assert.False(t, mr.Exists("test:token"))
}

func TestRedisCache_TokenStoreUnavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.LoadToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestRedisCache_Packages(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	pkgs, err := c.GetPackages(ctx)
	require.NoError(t, err)
	assert.Nil(t, pkgs)

	want := []domain.CoursePackage{{ID: "corso_completo", Name: "Corso Completo", Price: 7999, Currency: "EUR"}}
	require.NoError(t, c.SetPackages(ctx, want))
	assert.Equal(t, time.Minute, mr.TTL(packagesKey()))

	got, err := c.GetPackages(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)
	got, err = c.GetPackages(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
