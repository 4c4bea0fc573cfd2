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

func newTestRepo(t *testing.T) (*TokenRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenRepository(client, time.Minute), mr
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)

	_, err := repo.GetToken(ctx, "u1")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, repo.SaveToken(ctx, "u1", "tok-1"))
	require.NoError(t, repo.SaveToken(ctx, "u1", "tok-2"))
	got, err := repo.GetToken(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got)

	mr.FastForward(50 * time.Second)
	require.NoError(t, repo.ExtendToken(ctx, "u1"))
	mr.FastForward(50 * time.Second)
	got, err = repo.GetToken(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got)

	require.NoError(t, repo.DeleteToken(ctx, "u1"))
	_, err = repo.GetToken(ctx, "u1")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenExpires(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)

	require.NoError(t, repo.SaveToken(ctx, "u1", "tok"))
	mr.FastForward(2 * time.Minute)
	_, err := repo.GetToken(ctx, "u1")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err := NewClient(context.Background(), Config{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	// 服务关闭后 Ping 失败
	mr.Close()
	_, err = NewClient(context.Background(), Config{Addr: addr})
	assert.Error(t, err)
}
