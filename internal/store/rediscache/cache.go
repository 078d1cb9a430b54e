// Package cache is the Cache Adapter: a typed Redis-backed KV store with
// TTL, pattern-based invalidation, and set membership, the way
// internal/clients/redis wraps go-redis for the rest of the backend.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/resonate/resonate-backend/internal/platform/apierr"
	"github.com/resonate/resonate-backend/internal/platform/logger"
)

// Cache is the narrow interface the core depends on (spec §6 Cache).
type Cache interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// ScanDelete removes every key matching pattern (e.g. "user:123:*") using
	// a non-blocking cursor scan, and returns the count removed.
	ScanDelete(ctx context.Context, pattern string) (int, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SIsMember(ctx context.Context, key, member string) (bool, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	Ping(ctx context.Context) error
}

type redisCache struct {
	log *logger.Logger
	rdb *goredis.Client
}

// New connects to Redis using REDIS_ADDR (required) and optional
// REDIS_PASSWORD / REDIS_DB.
func New(log *logger.Logger) (Cache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	password := os.Getenv("REDIS_PASSWORD")
	db := 0
	if v := strings.TrimSpace(os.Getenv("REDIS_DB")); v != "" {
		fmt.Sscanf(v, "%d", &db)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCache{log: log.With("service", "RedisCache"), rdb: rdb}, nil
}

func (c *redisCache) Get(ctx context.Context, key string, out any) (bool, error) {
	const op = "cache.get"
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, apierr.Classify(op, err)
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, apierr.Upstream(op, "decode cached value failed", err)
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	const op = "cache.set"
	raw, err := json.Marshal(value)
	if err != nil {
		return apierr.Upstream(op, "encode value failed", err)
	}
	// ttl == 0 means no expiry, matching go-redis's convention for SET.
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return apierr.Classify(op, err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return apierr.Classify("cache.delete", err)
	}
	return nil
}

func (c *redisCache) ScanDelete(ctx context.Context, pattern string) (int, error) {
	const op = "cache.scan_delete"
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return removed, apierr.Classify(op, err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return removed, apierr.Classify(op, err)
			}
			removed += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return removed, nil
}

func (c *redisCache) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	anyMembers := make([]any, len(members))
	for i, m := range members {
		anyMembers[i] = m
	}
	if err := c.rdb.SAdd(ctx, key, anyMembers...).Err(); err != nil {
		return apierr.Classify("cache.sadd", err)
	}
	return nil
}

func (c *redisCache) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := c.rdb.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, apierr.Classify("cache.sismember", err)
	}
	return ok, nil
}

func (c *redisCache) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := c.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, apierr.Classify("cache.smembers", err)
	}
	return members, nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return apierr.Classify("cache.ping", err)
	}
	return nil
}

// Key builds a resonate:{entity}:{id}:{dataType} cache key per spec §6.
func Key(entity, id, dataType string) string {
	return fmt.Sprintf("resonate:%s:%s:%s", entity, id, dataType)
}

const (
	TTLProfile = 24 * time.Hour
	TTLFeed    = 3 * time.Minute
	TTLScore   = 1 * time.Hour
	TTLNone    = time.Duration(0)
)
