package main

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/app/game/internal/dao"
	"github.com/lk2023060901/creatorsim/app/game/internal/event"
	"github.com/lk2023060901/creatorsim/app/game/internal/handler"
	"github.com/lk2023060901/creatorsim/app/game/internal/manager"
	"github.com/lk2023060901/creatorsim/app/game/internal/masterdata"
	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/repository"
	"github.com/lk2023060901/creatorsim/app/game/internal/rng"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/app"
	"github.com/lk2023060901/creatorsim/pkg/database/postgres"
	"github.com/lk2023060901/creatorsim/pkg/database/redis"
	"github.com/lk2023060901/creatorsim/pkg/idgen"
	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/mq/kafka"
	"github.com/lk2023060901/creatorsim/pkg/otel"
	"github.com/lk2023060901/creatorsim/pkg/prometheus"
	"github.com/lk2023060901/creatorsim/pkg/scheduler"
	"github.com/lk2023060901/creatorsim/pkg/security"
	"github.com/lk2023060901/creatorsim/pkg/sentry"
	"github.com/lk2023060901/creatorsim/pkg/serializer"
	"github.com/lk2023060901/creatorsim/pkg/web"
	webmetrics "github.com/lk2023060901/creatorsim/pkg/web/metrics"
	"github.com/lk2023060901/creatorsim/pkg/web/middleware"
	"github.com/lk2023060901/creatorsim/pkg/web/validator"
)

// provideLoggerRegistry 创建具名日志（audit 等）
func provideLoggerRegistry(cfg *Config, l logger.Logger) (*app.LoggerRegistry, error) {
	return app.NewLoggerRegistry(l, cfg.Loggers)
}

// provideAppOptions 提供应用选项
func provideAppOptions(cfg *Config, registry *app.LoggerRegistry, l logger.Logger) []app.Option {
	return []app.Option{
		app.WithName(app.AppName),
		app.WithInstanceID(cfg.InstanceID),
		app.WithLogger(l),
		app.WithLoggerRegistry(registry),
	}
}

// providePostgres memory 驱动下返回 nil
func providePostgres(cfg *Config, l logger.Logger) (*postgres.Client, func(), error) {
	if cfg.Storage.Driver == repository.DriverMemory {
		l.Warn("storage driver is memory, data will not survive restarts")
		return nil, func() {}, nil
	}
	client, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect postgres")
	}
	return client, func() { _ = client.Close() }, nil
}

// provideRedis 未启用时返回 nil
func provideRedis(cfg *Config) (*redis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Redis.Config)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect redis")
	}
	return client, func() { _ = client.Close() }, nil
}

// providePrometheus 提供 Prometheus 客户端
func providePrometheus(cfg *Config, l logger.Logger) (*prometheus.Client, error) {
	return prometheus.New(&cfg.Prometheus, l)
}

// provideGameMetrics 创建玩法指标并注册到 Prometheus
func provideGameMetrics(cfg *Config, promClient *prometheus.Client) (*metrics.GameMetrics, error) {
	return metrics.New(&cfg.Metrics, promClient.Namespace(), promClient.Registerer())
}

// provideCacheDAO Redis 未启用时不使用缓存
func provideCacheDAO(cfg *Config, rdb *redis.Client, l logger.Logger, m *metrics.GameMetrics) (*dao.CacheDAO, error) {
	if rdb == nil {
		return nil, nil
	}
	codec, err := serializer.NewCodec(&cfg.Redis.Codec)
	if err != nil {
		return nil, errors.Wrap(err, "create cache codec")
	}
	return dao.NewCacheDAO(rdb, codec, l, m), nil
}

// provideRepository 按驱动选择存储实现，postgres 启动时执行建表
func provideRepository(
	cfg *Config,
	db *postgres.Client,
	cache *dao.CacheDAO,
	m *metrics.GameMetrics,
	l logger.Logger,
) (repository.Repository, error) {
	if db == nil {
		return repository.NewMemoryRepository(l), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), db.QueryTimeout())
	defer cancel()
	if err := repository.Migrate(ctx, db); err != nil {
		return nil, errors.Wrap(err, "migrate schema")
	}

	return repository.NewPostgresRepository(db, repository.DAOs{
		Players:    dao.NewPlayerDAO(l, m),
		Characters: dao.NewCharacterDAO(l, m),
		Equipment:  dao.NewEquipmentDAO(l, m),
		Content:    dao.NewContentDAO(l, m),
		Gacha:      dao.NewGachaDAO(l, m),
		Cache:      cache,
	}, l), nil
}

// provideMasterDataStore 加载主数据，校验失败时拒绝启动
func provideMasterDataStore(cfg *Config, l logger.Logger) (*masterdata.Store, error) {
	return masterdata.NewStore(&cfg.MasterData, l)
}

// providePlayerLocker 提供玩家锁
func providePlayerLocker(cfg *Config, rdb *redis.Client, l logger.Logger) (*manager.PlayerLocker, error) {
	return manager.NewPlayerLocker(&cfg.Game.Lock, rdb, l)
}

// provideRandFactory 提供随机源工厂
func provideRandFactory(cfg *Config, l logger.Logger) rng.Factory {
	if cfg.Game.RNGSeed != 0 {
		l.Warn("rng seed is fixed, outcomes are reproducible", "seed", cfg.Game.RNGSeed)
	}
	return rng.NewFactory(cfg.Game.RNGSeed)
}

// provideIDGenerator 提供抽卡记录 ID 生成器
func provideIDGenerator(cfg *Config) (idgen.Generator, error) {
	return idgen.NewSonyflake(cfg.Game.IDGen)
}

// provideTracing 未启用时提供 noop tracer
func provideTracing(cfg *Config) (*otel.Provider, error) {
	tc := cfg.Tracing
	if tc.ServiceName == "" {
		tc.ServiceName = app.AppName
	}
	return otel.New(&tc)
}

// provideSentry 未启用时返回 nil，上报均为空操作
func provideSentry(cfg *Config) (*sentry.Client, error) {
	if !cfg.Sentry.Enabled {
		return nil, nil
	}
	return sentry.New(&cfg.Sentry)
}

// provideEventPublisher 未启用时丢弃事件
func provideEventPublisher(cfg *Config, l logger.Logger) (event.Publisher, func(), error) {
	if !cfg.Events.Enabled {
		return event.Noop{}, func() {}, nil
	}
	format := cfg.Events.Format
	if format == "" {
		format = serializer.FormatJSON
	}
	s, err := serializer.New(format)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create event serializer")
	}
	producer, err := kafka.NewProducer(&cfg.Events.Kafka, l)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create event producer")
	}
	l.Info("economy events enabled", "topic", producer.Topic(), "format", s.Format())
	return event.NewKafkaPublisher(producer, s), func() { _ = producer.Close() }, nil
}

// provideExecutor 提供玩家操作执行器
func provideExecutor(
	repo repository.Repository,
	locker *manager.PlayerLocker,
	store *masterdata.Store,
	rand rng.Factory,
	m *metrics.GameMetrics,
	tracing *otel.Provider,
	publisher event.Publisher,
	registry *app.LoggerRegistry,
	l logger.Logger,
) *service.Executor {
	return service.NewExecutor(repo, locker, store, rand, m, l,
		service.WithTracer(tracing.Tracer("game.service")),
		service.WithPublisher(publisher),
		service.WithAuditLogger(registry.Get("audit")),
	)
}

// provideRankingService 提供排行榜服务
func provideRankingService(
	cfg *Config,
	repo repository.Repository,
	cache *dao.CacheDAO,
	m *metrics.GameMetrics,
	l logger.Logger,
) (*service.RankingService, error) {
	return service.NewRankingService(&cfg.Ranking, repo, cache, m, l)
}

// provideJWTConfig 提供 JWT 配置
func provideJWTConfig(cfg *Config) *security.JWTConfig {
	return &cfg.Auth
}

// provideRateLimiter 提供接口限流器
func provideRateLimiter(cfg *Config, l logger.Logger) *middleware.RateLimiter {
	return middleware.NewRateLimiter(&cfg.RateLimit, l.Named("web.ratelimit"))
}

// provideWebServer 创建 HTTP 服务并挂载路由
func provideWebServer(
	cfg *Config,
	handlers *handler.Handlers,
	jm *security.JWTManager,
	rl *middleware.RateLimiter,
	promClient *prometheus.Client,
	tracing *otel.Provider,
	reporter *sentry.Client,
	registry *app.LoggerRegistry,
	l logger.Logger,
) *web.Server {
	validator.Init()
	var serverOpts []web.ServerOption
	if registry.Configured("access") {
		serverOpts = append(serverOpts, web.WithAccessLogger(registry.Get("access")))
	}
	srv := web.NewServer(&cfg.Web, l, serverOpts...)

	opts := handler.Options{
		JWT:         jm,
		RateLimiter: rl,
		HTTPMetrics: webmetrics.NewHTTPMetrics(promClient.Namespace(), promClient.Registerer()),
		Sentry:      reporter,
	}
	if tracing.Enabled() {
		opts.Tracer = tracing.Tracer("game.http")
	}
	// 独立指标端口关闭时由业务端口暴露 /metrics
	if !cfg.Prometheus.HTTPServer.Enabled {
		opts.MetricsHandler = promClient.Handler()
	}
	handlers.Register(srv.Router(), opts)
	return srv
}

// provideScheduler 创建调度器并注册排行榜刷新任务
func provideScheduler(cfg *Config, ranking *service.RankingService, l logger.Logger) (*scheduler.Scheduler, error) {
	sched, err := scheduler.New(&cfg.Scheduler, scheduler.WithLogger(l.Named("scheduler")))
	if err != nil {
		return nil, err
	}
	if err := ranking.RegisterJobs(sched); err != nil {
		return nil, err
	}
	return sched, nil
}

// provideAppComponents 提供应用组件
func provideAppComponents(
	webServer *web.Server,
	promClient *prometheus.Client,
	sched *scheduler.Scheduler,
	store *masterdata.Store,
	rl *middleware.RateLimiter,
	ranking *service.RankingService,
	gameMetrics *metrics.GameMetrics,
	tracing *otel.Provider,
	reporter *sentry.Client,
) app.AppComponents {
	return app.AppComponents{
		Servers: []app.Server{
			store, // 主数据热更新监听
			sched,
			promClient,
			webServer,
		},
		Closers: []app.Closer{
			app.MapCloser(rl),
			app.MapCloser(ranking),
			app.MapCloser(gameMetrics),
			app.MapCloser(tracing),
			app.MapCloser(reporter),
		},
	}
}
