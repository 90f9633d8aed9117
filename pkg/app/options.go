package app

import (
	"time"

	"github.com/google/uuid"

	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// Options 进程选项
type Options struct {
	// ID 实例标识，多实例部署时区分日志来源
	ID          string
	Name        string
	StopTimeout time.Duration
	Logger      logger.Logger
	// Loggers 具名日志表，为空时由主日志派生
	Loggers     *LoggerRegistry
}

// Option 定义配置函数
type Option func(*Options)

// DefaultOptions 默认选项，实例标识随机生成
func DefaultOptions() Options {
	return Options{
		ID:          uuid.NewString(),
		Name:        AppName,
		StopTimeout: 30 * time.Second,
		Logger:      logger.Default(),
	}
}

// WithLoggerRegistry 使用外部创建的具名日志表
func WithLoggerRegistry(r *LoggerRegistry) Option {
	return func(o *Options) { o.Loggers = r }
}

// WithInstanceID 指定实例标识
func WithInstanceID(id string) Option {
	return func(o *Options) {
		if id != "" {
			o.ID = id
		}
	}
}

// WithLogger 设置应用日志器
func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithName 设置应用名称
func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

// WithStopTimeout 设置优雅停止超时时间
func WithStopTimeout(t time.Duration) Option {
	return func(o *Options) { o.StopTimeout = t }
}
