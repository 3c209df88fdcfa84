package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/aide-systems/aide-core/internal/monitoring"
	"github.com/aide-systems/aide-core/pkg/logger"
)

// FailoverStore serves every operation from the primary and falls back to the
// secondary store whenever the primary fails. Primary errors are logged and
// counted, never returned. There is no read-your-writes guarantee across a
// transition between the two.
type FailoverStore struct {
	primary   Store
	fallback  Store
	logger    logger.Logger
	available atomic.Bool
}

func NewFailoverStore(primary, fallback Store, log logger.Logger) *FailoverStore {
	f := &FailoverStore{primary: primary, fallback: fallback, logger: log}
	f.available.Store(true)
	monitoring.SetCachePrimaryAvailable(true)
	return f
}

// Available reports whether the last primary operation succeeded
func (f *FailoverStore) Available() bool {
	return f.available.Load()
}

func (f *FailoverStore) primaryFailed(op, key string, err error) {
	if f.available.Swap(false) {
		monitoring.SetCachePrimaryAvailable(false)
	}
	monitoring.RecordCacheOperation(op, "fallback")
	f.logger.Warn("Redis operation failed; serving from in-memory fallback", "operation", op, "key", key, "error", err)
}

func (f *FailoverStore) primaryOK() {
	if !f.available.Swap(true) {
		monitoring.SetCachePrimaryAvailable(true)
		f.logger.Info("Redis operations recovered")
	}
}

func (f *FailoverStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := f.primary.Get(ctx, key)
	if err == nil || errors.Is(err, ErrNotFound) {
		f.primaryOK()
		return b, err
	}
	f.primaryFailed("get", key, err)
	return f.fallback.Get(ctx, key)
}

func (f *FailoverStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := f.primary.Set(ctx, key, value, ttl); err != nil {
		f.primaryFailed("set", key, err)
		return f.fallback.Set(ctx, key, value, ttl)
	}
	f.primaryOK()
	return nil
}

func (f *FailoverStore) Push(ctx context.Context, listKey string, value interface{}) error {
	if err := f.primary.Push(ctx, listKey, value); err != nil {
		f.primaryFailed("push", listKey, err)
		return f.fallback.Push(ctx, listKey, value)
	}
	f.primaryOK()
	return nil
}

func (f *FailoverStore) Length(ctx context.Context, listKey string) (int64, error) {
	n, err := f.primary.Length(ctx, listKey)
	if err != nil {
		f.primaryFailed("length", listKey, err)
		return f.fallback.Length(ctx, listKey)
	}
	f.primaryOK()
	return n, nil
}

func (f *FailoverStore) Trim(ctx context.Context, listKey string, maxLen int64) error {
	if err := f.primary.Trim(ctx, listKey, maxLen); err != nil {
		f.primaryFailed("trim", listKey, err)
		return f.fallback.Trim(ctx, listKey, maxLen)
	}
	f.primaryOK()
	return nil
}

func (f *FailoverStore) Range(ctx context.Context, listKey string, start, stop int64) ([][]byte, error) {
	vals, err := f.primary.Range(ctx, listKey, start, stop)
	if err != nil {
		f.primaryFailed("range", listKey, err)
		return f.fallback.Range(ctx, listKey, start, stop)
	}
	f.primaryOK()
	return vals, nil
}

// HealthCheck reports the state of the primary
func (f *FailoverStore) HealthCheck(ctx context.Context) error {
	if err := f.primary.HealthCheck(ctx); err != nil {
		if f.available.Swap(false) {
			monitoring.SetCachePrimaryAvailable(false)
		}
		return err
	}
	f.primaryOK()
	return nil
}

// Close closes the primary store
func (f *FailoverStore) Close() error {
	return Close(f.primary)
}
