package manager

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/pkg/config"
	"github.com/lk2023060901/creatorsim/pkg/database/redis"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// LockConfig 玩家锁配置
type LockConfig struct {
	// Distributed 多实例部署时额外持有 Redis 锁
	Distributed   bool          `mapstructure:"distributed"`
	TTL           time.Duration `mapstructure:"ttl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// DefaultLockConfig 默认配置
func DefaultLockConfig() *LockConfig {
	return &LockConfig{
		TTL:           10 * time.Second,
		RetryInterval: 20 * time.Millisecond,
		MaxRetries:    250,
	}
}

// ErrLockTimeout 等待玩家锁超时
var ErrLockTimeout = errors.New("player lock timeout")

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// PlayerLocker 按玩家串行化写操作
// 进程内为引用计数的分key互斥锁，开启 Distributed 时再叠加 Redis 锁
type PlayerLocker struct {
	cfg    *LockConfig
	redis  *redis.Client
	logger logger.Logger

	mu      sync.Mutex
	entries map[string]*lockEntry
}

// NewPlayerLocker 创建玩家锁，rdb 仅在 Distributed 时需要
func NewPlayerLocker(cfg *LockConfig, rdb *redis.Client, l logger.Logger) (*PlayerLocker, error) {
	merged, err := config.MergeConfig(DefaultLockConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "merge lock config")
	}
	if merged.Distributed && rdb == nil {
		return nil, errors.New("distributed player lock requires redis")
	}
	return &PlayerLocker{
		cfg:     merged,
		redis:   rdb,
		logger:  l.Named("manager.locker"),
		entries: make(map[string]*lockEntry),
	}, nil
}

func (m *PlayerLocker) acquire(playerID string) *lockEntry {
	m.mu.Lock()
	e, ok := m.entries[playerID]
	if !ok {
		e = &lockEntry{}
		m.entries[playerID] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
	return e
}

func (m *PlayerLocker) release(playerID string, e *lockEntry) {
	e.mu.Unlock()

	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, playerID)
	}
	m.mu.Unlock()
}

// WithLock 持有玩家锁执行 fn
func (m *PlayerLocker) WithLock(ctx context.Context, playerID string, fn func() error) error {
	e := m.acquire(playerID)
	defer m.release(playerID, e)

	if !m.cfg.Distributed {
		return fn()
	}

	key := m.redis.Key("lock", "player", playerID)
	err := m.redis.WithLock(ctx, key, m.cfg.TTL, m.cfg.RetryInterval, m.cfg.MaxRetries, fn)
	if errors.Is(err, redis.ErrLockFailed) {
		m.logger.WarnContext(ctx, "failed to acquire distributed player lock", "player_id", playerID)
		return errors.Mark(errors.Wrapf(err, "lock player %s", playerID), ErrLockTimeout)
	}
	return err
}

// Held 当前被持有或等待中的玩家数
func (m *PlayerLocker) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
