package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/coursedesk/config"
	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache persists the session's credential token under a fixed key and
// caches the package catalog.
type RedisCache struct {
	client      *redis.Client
	tokenKey    string
	packagesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		cfg.TokenKey,
		cfg.PackagesCacheTTL(),
	)
}

func NewRedisCacheWithClient(client *redis.Client, tokenKey string, packagesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      client,
		tokenKey:    tokenKey,
		packagesTTL: packagesTTL,
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// LoadToken returns the persisted token, or "" when none is stored.
func (c *RedisCache) LoadToken(ctx context.Context) (string, error) {
	token, err := c.client.Get(ctx, c.tokenKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return token, nil
}

// SaveToken stores the token without expiry; it lives until logout or
// server-side rejection.
func (c *RedisCache) SaveToken(ctx context.Context, token string) error {
	if err := c.client.Set(ctx, c.tokenKey, token, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (c *RedisCache) DeleteToken(ctx context.Context) error {
	if err := c.client.Del(ctx, c.tokenKey).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (c *RedisCache) GetPackages(ctx context.Context) ([]domain.CoursePackage, error) {
	data, err := c.client.Get(ctx, packagesKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var pkgs []domain.CoursePackage
	if err := json.Unmarshal(data, &pkgs); err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (c *RedisCache) SetPackages(ctx context.Context, pkgs []domain.CoursePackage) error {
	payload, err := json.Marshal(pkgs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, packagesKey(), payload, c.packagesTTL).Err()
}

func packagesKey() string {
	return "cache:packages"
}
