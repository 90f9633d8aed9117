package scheduler

import (
	"time"

	"github.com/cockroachdb/errors"
)

// BackoffStrategy 重试退避策略
type BackoffStrategy string

const (
	BackoffFixed       BackoffStrategy = "fixed"
	BackoffExponential BackoffStrategy = "exponential"
)

// JobOptions 单个任务的重试参数
type JobOptions struct {
	MaxRetries        int             `mapstructure:"max_retries"`
	BackoffStrategy   BackoffStrategy `mapstructure:"backoff_strategy"`
	InitialBackoff    time.Duration   `mapstructure:"initial_backoff"`
	MaxBackoff        time.Duration   `mapstructure:"max_backoff"`
	BackoffMultiplier float64         `mapstructure:"backoff_multiplier"`
}

// Config 调度器配置
type Config struct {
	// Timezone 例如 Asia/Shanghai，默认 UTC
	Timezone string `mapstructure:"timezone"`
	// WithSeconds 表达式是否包含秒字段
	WithSeconds bool `mapstructure:"with_seconds"`
	// SkipIfStillRunning 上次执行未结束时跳过本次
	SkipIfStillRunning bool `mapstructure:"skip_if_still_running"`
	// DefaultJobOptions 未显式指定时的重试参数
	DefaultJobOptions JobOptions `mapstructure:"default_job_options"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Timezone:           "UTC",
		SkipIfStillRunning: true,
		DefaultJobOptions: JobOptions{
			MaxRetries:        0,
			BackoffStrategy:   BackoffExponential,
			InitialBackoff:    100 * time.Millisecond,
			MaxBackoff:        5 * time.Second,
			BackoffMultiplier: 2,
		},
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.DefaultJobOptions.MaxRetries < 0 {
		return errors.Wrap(ErrInvalidConfig, "max_retries must be >= 0")
	}
	switch c.DefaultJobOptions.BackoffStrategy {
	case BackoffFixed, BackoffExponential:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown backoff strategy %q", c.DefaultJobOptions.BackoffStrategy)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "timezone %q: %v", c.Timezone, err)
	}
	return nil
}

// JobOption 任务选项
type JobOption func(*JobOptions)

// WithMaxRetries 最大重试次数
func WithMaxRetries(n int) JobOption {
	return func(o *JobOptions) { o.MaxRetries = n }
}

// WithNoRetry 失败不重试
func WithNoRetry() JobOption {
	return func(o *JobOptions) { o.MaxRetries = 0 }
}

// WithBackoffStrategy 退避策略
func WithBackoffStrategy(s BackoffStrategy) JobOption {
	return func(o *JobOptions) { o.BackoffStrategy = s }
}

// WithInitialBackoff 首次重试等待
func WithInitialBackoff(d time.Duration) JobOption {
	return func(o *JobOptions) { o.InitialBackoff = d }
}
