package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired
var ErrNotFound = errors.New("cache: key not found")

// Store is the key/value and list store shared by the relay. A ttl of zero
// means the value never expires. Lists are ordered newest first.
type Store interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Push(ctx context.Context, listKey string, value interface{}) error
	Length(ctx context.Context, listKey string) (int64, error)
	Trim(ctx context.Context, listKey string, maxLen int64) error
	Range(ctx context.Context, listKey string, start, stop int64) ([][]byte, error)
	HealthCheck(ctx context.Context) error
}

// availability is implemented by stores that can tell whether their primary
// backend is currently reachable
type availability interface {
	Available() bool
}

// IsAvailable reports whether the store is currently backed by Redis
func IsAvailable(s Store) bool {
	if a, ok := s.(availability); ok {
		return a.Available()
	}
	return false
}

func encode(key string, value interface{}) ([]byte, error) {
	switch x := value.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case json.RawMessage:
		return x, nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %s: %w", key, err)
		}
		return b, nil
	}
}

// Close releases the connections held by s, if any
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
