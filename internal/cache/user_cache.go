package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dom/contacts-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "user:"

// UserCache holds short-lived user snapshots keyed by email. Entries expire
// on their own clock; the user store stays the source of truth.
type UserCache interface {
	Get(ctx context.Context, email string) (*domain.User, bool, error)
	Set(ctx context.Context, email string, user *domain.User) error
	Delete(ctx context.Context, email string) error
	Close() error
}

// GetOrLoad is the single resolution entry point used by session handling:
// cache hit wins, otherwise loader is called and its result cached. A loader
// error passes through untouched so not-found semantics are the loader's.
func GetOrLoad(ctx context.Context, c UserCache, email string, loader func(context.Context, string) (*domain.User, error)) (*domain.User, error) {
	user, ok, err := c.Get(ctx, email)
	if err == nil && ok {
		return user, nil
	}

	user, err = loader(ctx, email)
	if err != nil {
		return nil, err
	}

	_ = c.Set(ctx, email, user)
	return user, nil
}

type redisUserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisUserCache creates a client from a URL (redis://:pass@host:6379/0)
// and pings it so a bad address fails at startup, not on first request.
func NewRedisUserCache(redisURL string, ttl time.Duration) (UserCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisUserCache{rdb: rdb, ttl: ttl}, nil
}

func (c *redisUserCache) Get(ctx context.Context, email string) (*domain.User, bool, error) {
	raw, err := c.rdb.Get(ctx, keyPrefix+email).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

func (c *redisUserCache) Set(ctx context.Context, email string, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+email, raw, c.ttl).Err()
}

func (c *redisUserCache) Delete(ctx context.Context, email string) error {
	return c.rdb.Del(ctx, keyPrefix+email).Err()
}

func (c *redisUserCache) Close() error { return c.rdb.Close() }
