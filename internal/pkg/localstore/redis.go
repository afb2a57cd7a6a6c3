package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/homestay/homestay-client/internal/pkg/metrics"
)

const DefaultTTL = 30 * 24 * time.Hour

// NewRedisClient creates a Redis client from a redis:// URL and verifies it.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("redis url is empty")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opt.PoolSize = 4
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, err
	}

	log.Debug().Msg("Connected to Redis")
	return client, nil
}

// RedisStore keeps JSON documents in Redis with a sliding TTL.
type RedisStore struct {
	c      *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(c *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{c: c, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	v, err := r.c.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		metrics.ObserveStore("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	metrics.ObserveStore("redis", "hit")
	if err := json.Unmarshal(v, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, v any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	metrics.ObserveStore("redis", "set")
	return r.c.Set(ctx, r.prefix+key, b, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	metrics.ObserveStore("redis", "del")
	return r.c.Del(ctx, r.prefix+key).Err()
}
