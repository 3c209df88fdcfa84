package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aide-systems/aide-core/internal/monitoring"
)

// RedisStore implements Store against a single Redis node
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, db int, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		monitoring.RecordCacheOperation("get", "miss")
		return nil, ErrNotFound
	}
	if err != nil {
		monitoring.RecordCacheOperation("get", "error")
		return nil, err
	}
	monitoring.RecordCacheOperation("get", "hit")
	return b, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encode(key, value)
	if err != nil {
		monitoring.RecordCacheOperation("set", "error")
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		monitoring.RecordCacheOperation("set", "error")
		return err
	}
	monitoring.RecordCacheOperation("set", "success")
	return nil
}

func (r *RedisStore) Push(ctx context.Context, listKey string, value interface{}) error {
	data, err := encode(listKey, value)
	if err != nil {
		monitoring.RecordCacheOperation("push", "error")
		return err
	}
	if err := r.client.LPush(ctx, listKey, data).Err(); err != nil {
		monitoring.RecordCacheOperation("push", "error")
		return err
	}
	monitoring.RecordCacheOperation("push", "success")
	return nil
}

func (r *RedisStore) Length(ctx context.Context, listKey string) (int64, error) {
	n, err := r.client.LLen(ctx, listKey).Result()
	if err != nil {
		monitoring.RecordCacheOperation("length", "error")
		return 0, err
	}
	return n, nil
}

func (r *RedisStore) Trim(ctx context.Context, listKey string, maxLen int64) error {
	if maxLen < 1 {
		return r.client.Del(ctx, listKey).Err()
	}
	if err := r.client.LTrim(ctx, listKey, 0, maxLen-1).Err(); err != nil {
		monitoring.RecordCacheOperation("trim", "error")
		return err
	}
	return nil
}

func (r *RedisStore) Range(ctx context.Context, listKey string, start, stop int64) ([][]byte, error) {
	vals, err := r.client.LRange(ctx, listKey, start, stop).Result()
	if err != nil {
		monitoring.RecordCacheOperation("range", "error")
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

// HealthCheck pings the Redis node.
func (r *RedisStore) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
