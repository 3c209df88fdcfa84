package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aide-systems/aide-core/pkg/logger"
)

var errNotConnected = errors.New("cache: Redis not connected yet")

// AutoSwap starts on a fallback store and keeps dialling the real store in
// the background. Once dial succeeds it swaps the real store in and stops.
type AutoSwap struct {
	mu      sync.RWMutex
	current Store
	swapped bool
	logger  logger.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewAutoSwap(fallback Store, dial func() (Store, error), interval time.Duration, log logger.Logger) *AutoSwap {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	a := &AutoSwap{
		current: fallback,
		logger:  log,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	go func() {
		defer close(a.doneCh)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-a.stopCh:
				return
			case <-ticker.C:
				real, err := dial()
				if err != nil {
					a.logger.Debug("Redis connection attempt failed; will retry", "error", err)
					continue
				}
				a.mu.Lock()
				a.current = real
				a.swapped = true
				a.mu.Unlock()
				a.logger.Info("Redis connection established; switched from in-memory to Redis cache")
				return
			}
		}
	}()

	return a
}

// Stop stops the background connector and waits for it to exit
func (a *AutoSwap) Stop() {
	a.stopOnce.Do(func() { close(a.stopCh) })
	<-a.doneCh
}

func (a *AutoSwap) active() Store {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Swapped reports whether the real store has been swapped in
func (a *AutoSwap) Swapped() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.swapped
}

func (a *AutoSwap) Available() bool {
	a.mu.RLock()
	c, swapped := a.current, a.swapped
	a.mu.RUnlock()
	if !swapped {
		return false
	}
	if av, ok := c.(availability); ok {
		return av.Available()
	}
	return true
}

func (a *AutoSwap) Get(ctx context.Context, key string) ([]byte, error) {
	return a.active().Get(ctx, key)
}

func (a *AutoSwap) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return a.active().Set(ctx, key, value, ttl)
}

func (a *AutoSwap) Push(ctx context.Context, listKey string, value interface{}) error {
	return a.active().Push(ctx, listKey, value)
}

func (a *AutoSwap) Length(ctx context.Context, listKey string) (int64, error) {
	return a.active().Length(ctx, listKey)
}

func (a *AutoSwap) Trim(ctx context.Context, listKey string, maxLen int64) error {
	return a.active().Trim(ctx, listKey, maxLen)
}

func (a *AutoSwap) Range(ctx context.Context, listKey string, start, stop int64) ([][]byte, error) {
	return a.active().Range(ctx, listKey, start, stop)
}

func (a *AutoSwap) HealthCheck(ctx context.Context) error {
	if !a.Swapped() {
		return errNotConnected
	}
	return a.active().HealthCheck(ctx)
}

// Close stops the connector and closes whichever store is active
func (a *AutoSwap) Close() error {
	a.Stop()
	return Close(a.active())
}
