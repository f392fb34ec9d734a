package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wallet-flow-backend/internal/utils"
)

// RedisConfig holds connection parameters for the redis-backed cache
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	MaxRetries int
	KeyPrefix  string
}

// Redis implements Cache on top of go-redis string keys
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis connects to redis and pings it. A failed ping is a CONFIG error
// so startup can fall back to the in-memory cache.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	r := &Redis{
		rdb: redis.NewClient(&redis.Options{
			Addr:       cfg.Addr,
			Password:   cfg.Password,
			DB:         cfg.DB,
			PoolSize:   cfg.PoolSize,
			MaxRetries: cfg.MaxRetries,
		}),
		prefix: cfg.KeyPrefix,
	}

	if err := r.Ping(ctx); err != nil {
		_ = r.Close()
		return nil, utils.WrapError(err, utils.ErrorTypeConfig, "REDIS_UNAVAILABLE", "redis ping failed", "cache").
			WithContext("addr", cfg.Addr)
	}

	utils.CacheLogger.Info("Connected to redis at %s (db %d)", cfg.Addr, cfg.DB)
	return r, nil
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Get returns ErrMiss when the key does not exist
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return data, nil
}

// Set stores value with the given ttl; ttl <= 0 means no expiry
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.rdb.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Ping checks the redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Close closes the redis connection pool
func (r *Redis) Close() error {
	return r.rdb.Close()
}

var _ Cache = (*Redis)(nil)
