package cache

import (
	"github.com/aide-systems/aide-core/internal/config"
	"github.com/aide-systems/aide-core/pkg/logger"
)

// Open picks the cache for the process lifetime. A reachable Redis is wrapped
// in a failover store; otherwise the process starts in memory and upgrades to
// the failover store once Redis answers.
func Open(cfg config.CacheConfig, log logger.Logger) Store {
	dial := func() (Store, error) {
		rs, err := NewRedisStore(cfg.Addr, cfg.DB, cfg.Password)
		if err != nil {
			return nil, err
		}
		return NewFailoverStore(rs, NewMemoryStore(log), log), nil
	}

	s, err := dial()
	if err == nil {
		log.Info("Connected to Redis cache", "addr", cfg.Addr, "db", cfg.DB)
		return s
	}

	log.Warn("Redis unavailable at startup; using in-memory fallback and retrying in background", "addr", cfg.Addr, "error", err)
	return NewAutoSwap(NewMemoryStore(log), dial, cfg.ReconnectInterval, log)
}
