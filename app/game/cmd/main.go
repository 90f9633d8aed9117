package main

import (
	"context"

	"github.com/lk2023060901/creatorsim/app/game/internal/manager"
	"github.com/lk2023060901/creatorsim/app/game/internal/masterdata"
	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/repository"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/app"
	"github.com/lk2023060901/creatorsim/pkg/config"
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
	"github.com/lk2023060901/creatorsim/pkg/web/middleware"
)

// RedisConfig Redis 配置，未启用时玩家缓存、排行榜缓存与分布式锁均关闭
type RedisConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	redis.Config `mapstructure:",squash"`

	// Codec 缓存载荷格式与压缩
	Codec serializer.Config `mapstructure:"codec"`
}

// GameConfig 玩法运行参数
type GameConfig struct {
	// RNGSeed 非 0 时抽卡与上传结算可复现，仅用于压测与回放
	RNGSeed uint64             `mapstructure:"rng_seed"`
	Lock    manager.LockConfig `mapstructure:"lock"`
	IDGen   idgen.Config       `mapstructure:"idgen"`
}

// EventsConfig 经济事件投递，未启用时事件被丢弃
type EventsConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Format  serializer.Format `mapstructure:"format" validate:"omitempty,oneof=json msgpack"`
	Kafka   kafka.Config      `mapstructure:"kafka"`
}

// Config 定义 Game 服务的完整配置结构
type Config struct {
	// InstanceID 为空时随机生成
	InstanceID string                    `mapstructure:"instance_id"`
	Log        logger.Config             `mapstructure:"log"`
	Loggers    map[string]*logger.Config `mapstructure:"loggers"`

	// HTTP 服务
	Web web.Config `mapstructure:"web"`

	// JWT 认证
	Auth security.JWTConfig `mapstructure:"auth"`

	// 存储后端
	Storage repository.Config `mapstructure:"storage"`

	// Database 配置
	Database postgres.Config `mapstructure:"database"`

	// Redis 配置
	Redis RedisConfig `mapstructure:"redis"`

	// 主数据
	MasterData masterdata.Config `mapstructure:"masterdata"`

	Game GameConfig `mapstructure:"game"`

	// 排行榜快照
	Ranking service.RankingConfig `mapstructure:"ranking"`

	// 定时任务
	Scheduler scheduler.Config `mapstructure:"scheduler"`

	// 接口限流
	RateLimit middleware.RateLimitConfig `mapstructure:"rate_limit"`

	// Prometheus 配置
	Prometheus prometheus.Config `mapstructure:"prometheus"`

	// 指标配置
	Metrics metrics.Config `mapstructure:"metrics"`

	// 链路追踪
	Tracing otel.Config `mapstructure:"tracing"`

	// 错误上报
	Sentry sentry.Config `mapstructure:"sentry"`

	Events EventsConfig `mapstructure:"events"`
}

func main() {
	var cfg Config

	// 1. 加载并校验配置
	mgr, err := app.LoadConfig(&cfg)
	if err != nil {
		panic(err)
	}
	if err := config.NewValidator().Validate(&cfg); err != nil {
		panic(err)
	}

	// 2. 初始化主日志，log.level 修改后无需重启
	l, err := logger.New(&cfg.Log)
	if err != nil {
		panic(err)
	}
	if err := mgr.OnChange("log.level", func() { applyLogLevel(mgr, l) }); err != nil {
		l.Warn("config watch disabled", "error", err)
	}

	// 3. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(&cfg, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		return
	}
	defer cleanup()

	// 4. 运行服务
	if err := application.Run(context.Background()); err != nil {
		l.Error("application exited with error", "error", err)
	}
}

// applyLogLevel 配置文件中的 log.level 变化后调整主日志级别
func applyLogLevel(mgr config.Manager, l *logger.BaseLogger) {
	level := logger.Level(mgr.GetString("log.level"))
	if err := l.SetLevel(level); err != nil {
		l.Warn("ignore invalid log level", "level", level, "error", err)
		return
	}
	l.Info("log level changed", "level", level)
}
