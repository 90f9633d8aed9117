package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"github.com/lk2023060901/creatorsim/app/game/internal/dao"
	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/app/game/internal/repository"
	"github.com/lk2023060901/creatorsim/pkg/cache/lru"
	"github.com/lk2023060901/creatorsim/pkg/config"
	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/scheduler"
)

// RankingRefreshJob 定时刷新任务名
const RankingRefreshJob = "ranking.refresh"

// RankingConfig 排行榜配置
type RankingConfig struct {
	// RefreshSpec cron 表达式，空表示不定时刷新
	RefreshSpec string `mapstructure:"refresh_spec"`
	// TopNMax topN 上限
	TopNMax int `mapstructure:"top_n_max" validate:"omitempty,min=1"`
	// SnapshotTTL 进程内快照有效期
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
}

// DefaultRankingConfig 默认配置
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		RefreshSpec: "@every 30s",
		TopNMax:     engine.MaxTopN,
		SnapshotTTL: 30 * time.Second,
	}
}

var rankingMetrics = []model.RankingMetric{model.MetricSubscribers, model.MetricChannelPower}

// RankingService 排行榜，按快照排序
// 读取顺序：进程内 LRU -> Redis -> 数据库重建
type RankingService struct {
	cfg     *RankingConfig
	repo    repository.Repository
	cache   *dao.CacheDAO
	local   *lru.LRU[model.RankingMetric, *model.RankingSnapshot]
	group   singleflight.Group
	clock   Clock
	metrics *metrics.GameMetrics
	logger  logger.Logger
}

// NewRankingService 创建排行榜服务，cache 为空时不使用 Redis
func NewRankingService(
	cfg *RankingConfig,
	repo repository.Repository,
	cache *dao.CacheDAO,
	m *metrics.GameMetrics,
	l logger.Logger,
) (*RankingService, error) {
	merged, err := config.MergeConfig(DefaultRankingConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "merge ranking config")
	}
	return &RankingService{
		cfg:   merged,
		repo:  repo,
		cache: cache,
		local: lru.New[model.RankingMetric, *model.RankingSnapshot](&lru.Config{
			MaxSize:    len(rankingMetrics),
			DefaultTTL: merged.SnapshotTTL,
		}),
		clock:   time.Now,
		metrics: m,
		logger:  l.Named("service.ranking"),
	}, nil
}

// Get 按指标查询排行并定位请求者
func (s *RankingService) Get(ctx context.Context, metricName, requester string, topN int) (*model.RankingResult, error) {
	metric, ok := model.ParseRankingMetric(metricName)
	if !ok {
		return nil, gameerr.Validation("unknown ranking metric %q", metricName)
	}
	if topN == 0 {
		topN = min(engine.DefaultTopN, s.cfg.TopNMax)
	}
	if topN < 1 || topN > s.cfg.TopNMax {
		return nil, gameerr.Validation("topN must be between 1 and %d, got %d", s.cfg.TopNMax, topN)
	}

	snap, err := s.snapshot(ctx, metric)
	if err != nil {
		return nil, err
	}
	return engine.Rank(snap, requester, topN, s.cfg.TopNMax)
}

func (s *RankingService) snapshot(ctx context.Context, metric model.RankingMetric) (*model.RankingSnapshot, error) {
	if snap, ok := s.local.Get(metric); ok {
		return snap, nil
	}

	// 并发未命中只重建一次
	v, err, _ := s.group.Do(string(metric), func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		if s.cache != nil {
			snap, err := s.cache.GetRanking(ctx, metric)
			if err != nil {
				s.logger.WarnContext(ctx, "failed to get ranking from cache", "metric", metric, "error", err)
			} else if snap != nil {
				s.local.Set(metric, snap)
				return snap, nil
			}
		}
		return s.Rebuild(ctx, metric)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.RankingSnapshot), nil
}

// Rebuild 从数据库重建快照并写入两级缓存
func (s *RankingService) Rebuild(ctx context.Context, metric model.RankingMetric) (*model.RankingSnapshot, error) {
	start := time.Now()
	rows, err := s.repo.ListRankingRows(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "rebuild %s ranking", metric)
	}
	snap := engine.BuildSnapshot(metric, rows, s.clock().UTC())

	s.local.Set(metric, snap)
	if s.cache != nil {
		if err := s.cache.SetRanking(ctx, snap); err != nil {
			s.logger.WarnContext(ctx, "failed to set ranking cache", "metric", metric, "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordRankingRebuild(string(metric), time.Since(start))
	}
	return snap, nil
}

// RefreshAll 重建全部指标
func (s *RankingService) RefreshAll(ctx context.Context) error {
	for _, m := range rankingMetrics {
		if _, err := s.Rebuild(ctx, m); err != nil {
			return err
		}
	}
	s.logger.DebugContext(ctx, "ranking snapshots refreshed")
	return nil
}

// RegisterJobs 注册定时刷新
func (s *RankingService) RegisterJobs(sched *scheduler.Scheduler) error {
	if s.cfg.RefreshSpec == "" {
		return nil
	}
	_, err := sched.AddFunc(RankingRefreshJob, s.cfg.RefreshSpec, func() error {
		return s.RefreshAll(context.Background())
	}, scheduler.WithMaxRetries(2))
	return err
}

// Close 释放进程内缓存
func (s *RankingService) Close() error {
	return s.local.Close()
}
