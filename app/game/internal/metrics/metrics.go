package metrics

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lk2023060901/creatorsim/pkg/config"
	"github.com/lk2023060901/creatorsim/pkg/metrics/sliding"
	"github.com/lk2023060901/creatorsim/pkg/metrics/system"
)

// Config 指标配置
type Config struct {
	// SystemCollectInterval 进程资源采集间隔
	SystemCollectInterval time.Duration `mapstructure:"system_collect_interval"`
	// SlidingWindow 后台看板使用的操作统计窗口
	SlidingWindow sliding.WindowConfig `mapstructure:"sliding_window"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		SystemCollectInterval: 5 * time.Second,
		SlidingWindow:         *sliding.DefaultWindowConfig(),
	}
}

// GameMetrics 玩法服务指标
type GameMetrics struct {
	// 玩法操作
	OperationTotal    *prometheus.CounterVec   // 操作总数（按操作、结果）
	OperationDuration *prometheus.HistogramVec // 操作耗时
	RejectionTotal    *prometheus.CounterVec   // 玩法拒绝（按操作、错误类别）

	// 经济
	GachaDrawTotal     *prometheus.CounterVec // 抽卡次数（按稀有度、支付方式）
	ContentUploadTotal *prometheus.CounterVec // 上传次数（按类型）
	RewardGoldTotal    prometheus.Counter     // 上传产出的金币
	PlayersCreated     prometheus.Counter     // 新建玩家数

	// 存储
	DBQueryTotal    *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	CacheHitTotal   *prometheus.CounterVec
	CacheMissTotal  *prometheus.CounterVec

	// 排行榜
	RankingRebuildTotal    *prometheus.CounterVec
	RankingRebuildDuration prometheus.Histogram

	system *system.Collector
	window *sliding.Window
}

// New 创建指标并注册到 registerer
func New(cfg *Config, namespace string, registerer prometheus.Registerer) (*GameMetrics, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "merge metrics config")
	}

	window, err := sliding.NewWindow(&newCfg.SlidingWindow)
	if err != nil {
		return nil, err
	}
	sys, err := system.New()
	if err != nil {
		return nil, err
	}
	if err := sys.Start(newCfg.SystemCollectInterval); err != nil {
		return nil, err
	}

	m := &GameMetrics{
		OperationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "玩法操作总数",
		}, []string{"operation", "result"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "玩法操作耗时（秒），含加锁与事务",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"operation"}),

		RejectionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_rejections_total",
			Help:      "被规则拒绝的玩法操作",
		}, []string{"operation", "kind"}),

		GachaDrawTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gacha_draws_total",
			Help:      "抽卡次数",
		}, []string{"rarity", "paid_with"}),
		ContentUploadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_uploads_total",
			Help:      "内容上传次数",
		}, []string{"genre"}),
		RewardGoldTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_gold_total",
			Help:      "内容上传产出的金币",
		}),
		PlayersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_created_total",
			Help:      "新建玩家数",
		}),

		DBQueryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "数据库查询总数",
		}, []string{"operation", "result"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "数据库查询延迟（秒）",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		CacheHitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "缓存命中总数",
		}, []string{"cache_type"}),
		CacheMissTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "缓存未命中总数",
		}, []string{"cache_type"}),

		RankingRebuildTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_rebuilds_total",
			Help:      "排行榜快照重建次数",
		}, []string{"metric"}),
		RankingRebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_rebuild_duration_seconds",
			Help:      "排行榜快照重建耗时（秒）",
			Buckets:   prometheus.DefBuckets,
		}),

		system: sys,
		window: window,
	}

	if registerer != nil {
		if err := m.register(registerer, namespace); err != nil {
			sys.Stop()
			return nil, err
		}
	}
	return m, nil
}

func (m *GameMetrics) register(r prometheus.Registerer, namespace string) error {
	collectors := []prometheus.Collector{
		m.OperationTotal, m.OperationDuration, m.RejectionTotal,
		m.GachaDrawTotal, m.ContentUploadTotal, m.RewardGoldTotal, m.PlayersCreated,
		m.DBQueryTotal, m.DBQueryDuration, m.CacheHitTotal, m.CacheMissTotal,
		m.RankingRebuildTotal, m.RankingRebuildDuration,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "进程 CPU 占用",
		}, func() float64 { return m.system.GetStats().CPUPercent }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_goroutines",
			Help:      "协程数",
		}, func() float64 { return float64(m.system.GetStats().Goroutines) }),
	}
	for _, c := range collectors {
		if err := r.Register(c); err != nil {
			return errors.Wrap(err, "register game metrics")
		}
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

// RecordOperation 记录一次玩法操作
// 玩法拒绝（余额不足等）由调用方按 success 计入
func (m *GameMetrics) RecordOperation(op string, err error, elapsed time.Duration) {
	m.OperationTotal.WithLabelValues(op, result(err)).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	m.window.Record(elapsed, err == nil)
}

// RecordRejection 记录一次玩法拒绝
func (m *GameMetrics) RecordRejection(op, kind string) {
	m.RejectionTotal.WithLabelValues(op, kind).Inc()
}

// RecordDraw 记录单抽
func (m *GameMetrics) RecordDraw(rarity, paidWith string) {
	m.GachaDrawTotal.WithLabelValues(rarity, paidWith).Inc()
}

// RecordUpload 记录上传收益
func (m *GameMetrics) RecordUpload(genre string, gold int64) {
	m.ContentUploadTotal.WithLabelValues(genre).Inc()
	m.RewardGoldTotal.Add(float64(gold))
}

// RecordDBQuery 记录数据库查询
func (m *GameMetrics) RecordDBQuery(operation string, err error, elapsed time.Duration) {
	m.DBQueryTotal.WithLabelValues(operation, result(err)).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordCacheHit 记录缓存命中
func (m *GameMetrics) RecordCacheHit(cacheType string) {
	m.CacheHitTotal.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (m *GameMetrics) RecordCacheMiss(cacheType string) {
	m.CacheMissTotal.WithLabelValues(cacheType).Inc()
}

// RecordRankingRebuild 记录排行榜重建
func (m *GameMetrics) RecordRankingRebuild(metric string, elapsed time.Duration) {
	m.RankingRebuildTotal.WithLabelValues(metric).Inc()
	m.RankingRebuildDuration.Observe(elapsed.Seconds())
}

// Stats 后台看板的运行统计
type Stats struct {
	Operations sliding.Stats `json:"operations"`
	Process    system.Stats  `json:"process"`
}

// GetStats 最近窗口的操作统计与进程资源
func (m *GameMetrics) GetStats() Stats {
	return Stats{
		Operations: m.window.Snapshot(),
		Process:    m.system.GetStats(),
	}
}

// Close 停止进程资源采集
func (m *GameMetrics) Close() error {
	return m.system.Close()
}
