package cache

import (
	"context"
	"sync"
	"time"

	"github.com/aide-systems/aide-core/pkg/logger"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is the process-local fallback used when Redis is unavailable.
// Expired keys are dropped lazily on read. Data is lost on restart and is
// never shared across replicas.
type MemoryStore struct {
	mu    sync.RWMutex
	kv    map[string]memoryEntry
	lists map[string][][]byte
	now   func() time.Time
}

func NewMemoryStore(log logger.Logger) *MemoryStore {
	log.Debug("In-memory cache store initialised")
	return &MemoryStore{
		kv:    make(map[string]memoryEntry),
		lists: make(map[string][][]byte),
		now:   time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.kv[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		if cur, ok := m.kv[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.kv, key)
		}
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return e.data, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encode(key, value)
	if err != nil {
		return err
	}
	e := memoryEntry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.kv[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Push(ctx context.Context, listKey string, value interface{}) error {
	data, err := encode(listKey, value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.lists[listKey]
	l = append(l, nil)
	copy(l[1:], l)
	l[0] = data
	m.lists[listKey] = l
	return nil
}

func (m *MemoryStore) Length(ctx context.Context, listKey string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.lists[listKey])), nil
}

func (m *MemoryStore) Trim(ctx context.Context, listKey string, maxLen int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.lists[listKey]
	if maxLen < 1 {
		delete(m.lists, listKey)
		return nil
	}
	if int64(len(l)) > maxLen {
		m.lists[listKey] = l[:maxLen:maxLen]
	}
	return nil
}

// Range follows Redis LRANGE semantics, including negative indexes
func (m *MemoryStore) Range(ctx context.Context, listKey string, start, stop int64) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l := m.lists[listKey]
	n := int64(len(l))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop {
		return [][]byte{}, nil
	}
	out := make([][]byte, stop-start+1)
	copy(out, l[start:stop+1])
	return out, nil
}

func (m *MemoryStore) HealthCheck(ctx context.Context) error {
	return nil
}
