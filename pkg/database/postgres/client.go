package postgres

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Client PostgreSQL 客户端（主库 + 可选只读从库）
type Client struct {
	primary  *pgxpool.Pool
	replicas []*pgxpool.Pool
	cfg      *Config

	replicaIndex atomic.Uint64
}

// PoolStats 连接池统计
type PoolStats struct {
	AcquireCount  int64
	AcquiredConns int32
	IdleConns     int32
	MaxConns      int32
	TotalConns    int32
}

// New 创建 PostgreSQL 客户端
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	newCfg, err := MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge config")
	}
	if err := validateConfig(newCfg); err != nil {
		return nil, err
	}

	primary, err := createPool(newCfg, primaryConnString(newCfg))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create primary pool")
	}

	c := &Client{primary: primary, cfg: newCfg}
	for i := range newCfg.Replicas {
		pool, err := createPool(newCfg, buildConnString(newCfg, &newCfg.Replicas[i]))
		if err != nil {
			c.Close()
			return nil, errors.Wrapf(err, "failed to create replica pool %d", i)
		}
		c.replicas = append(c.replicas, pool)
	}
	return c, nil
}

// Primary 读写连接池
func (c *Client) Primary() Querier {
	return c.primary
}

// Replica 只读连接池，轮询选择，无从库时退回主库
func (c *Client) Replica() Querier {
	if len(c.replicas) == 0 {
		return c.primary
	}
	idx := c.replicaIndex.Add(1)
	return c.replicas[idx%uint64(len(c.replicas))]
}

// QueryTimeout 单条查询超时
func (c *Client) QueryTimeout() time.Duration {
	return c.cfg.QueryTimeout
}

// Close 关闭全部连接池
func (c *Client) Close() error {
	if c.primary != nil {
		c.primary.Close()
	}
	for _, r := range c.replicas {
		r.Close()
	}
	return nil
}

// Ping 检查主库连接
func (c *Client) Ping(ctx context.Context) error {
	if err := c.primary.Ping(ctx); err != nil {
		return errors.Wrap(err, "primary ping failed")
	}
	return nil
}

// Stats 主库连接池状态
func (c *Client) Stats() PoolStats {
	s := c.primary.Stat()
	return PoolStats{
		AcquireCount:  s.AcquireCount(),
		AcquiredConns: s.AcquiredConns(),
		IdleConns:     s.IdleConns(),
		MaxConns:      s.MaxConns(),
		TotalConns:    s.TotalConns(),
	}
}

func validateConfig(cfg *Config) error {
	if cfg.DSN == "" {
		if err := validateDBConfig(cfg.Primary); err != nil {
			return errors.Wrap(err, "invalid primary config")
		}
	}
	for i := range cfg.Replicas {
		if err := validateDBConfig(&cfg.Replicas[i]); err != nil {
			return errors.Wrapf(err, "invalid replica %d config", i)
		}
	}
	switch {
	case cfg.Pool.MaxConns <= 0:
		return errors.Wrap(ErrInvalidConfig, "max_conns must be positive")
	case cfg.Pool.MinConns < 0:
		return errors.Wrap(ErrInvalidConfig, "min_conns must be non-negative")
	case cfg.Pool.MinConns > cfg.Pool.MaxConns:
		return errors.Wrap(ErrInvalidConfig, "min_conns cannot be greater than max_conns")
	}
	return nil
}

func validateDBConfig(cfg *DBConfig) error {
	switch {
	case cfg == nil:
		return errors.Wrap(ErrInvalidConfig, "db config is nil")
	case cfg.Host == "":
		return errors.Wrap(ErrInvalidConfig, "host is empty")
	case cfg.Port <= 0 || cfg.Port > 65535:
		return errors.Wrapf(ErrInvalidConfig, "invalid port %d", cfg.Port)
	case cfg.User == "":
		return errors.Wrap(ErrInvalidConfig, "user is empty")
	case cfg.DBName == "":
		return errors.Wrap(ErrInvalidConfig, "db_name is empty")
	}
	return nil
}

func createPool(cfg *Config, connString string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse pool config")
	}
	poolConfig.MaxConns = cfg.Pool.MaxConns
	poolConfig.MinConns = cfg.Pool.MinConns
	poolConfig.MaxConnLifetime = cfg.Pool.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Pool.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.Pool.HealthCheckPeriod

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return pool, nil
}

func primaryConnString(cfg *Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return buildConnString(cfg, cfg.Primary)
}

func buildConnString(cfg *Config, db *DBConfig) string {
	sslMode := db.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		db.Host, db.Port, db.User, db.Password, db.DBName, sslMode,
		int(cfg.ConnectTimeout.Seconds()),
	)
}
