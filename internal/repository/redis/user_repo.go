package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mycoseed/internal/repository"
)

var (
	ErrTokenNotFound    = fmt.Errorf("login token: %w", repository.ErrNotFound)
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const (
	UserTokenPrefix = "login:user:token"
	DefaultTokenTTL = 30 * time.Minute
)

// TokenRepository 每个用户只保留一个有效 access token，新登录会顶掉旧会话
type TokenRepository struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewTokenRepository(client *redis.Client, ttl time.Duration) *TokenRepository {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenRepository{Client: client, TTL: ttl}
}

func (r *TokenRepository) key(userID string) string {
	return fmt.Sprintf("%s:%s", UserTokenPrefix, userID)
}

func (r *TokenRepository) SaveToken(ctx context.Context, userID, token string) error {
	if err := r.Client.Set(ctx, r.key(userID), token, r.TTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *TokenRepository) GetToken(ctx context.Context, userID string) (string, error) {
	token, err := r.Client.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return token, nil
}

// ExtendToken 滑动续期
func (r *TokenRepository) ExtendToken(ctx context.Context, userID string) error {
	if err := r.Client.Expire(ctx, r.key(userID), r.TTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *TokenRepository) DeleteToken(ctx context.Context, userID string) error {
	if err := r.Client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
