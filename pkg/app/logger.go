package app

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// LoggerRegistry 具名日志表
// 配置里声明的名字（如 audit）拥有独立输出，其余名字退回主日志的子 Logger
type LoggerRegistry struct {
	base    logger.Logger
	mu      sync.RWMutex
	loggers map[string]logger.Logger
}

// NewLoggerRegistry 按配置创建全部具名 Logger，任一配置无效则整体失败
func NewLoggerRegistry(base logger.Logger, configs map[string]*logger.Config) (*LoggerRegistry, error) {
	if base == nil {
		base = logger.NewNoop()
	}
	r := &LoggerRegistry{
		base:    base,
		loggers: make(map[string]logger.Logger, len(configs)),
	}
	for name, cfg := range configs {
		if cfg == nil {
			continue
		}
		l, err := logger.New(cfg)
		if err != nil {
			r.Sync()
			return nil, errors.Wrapf(err, "create logger %q", name)
		}
		r.loggers[name] = l.Named(name)
	}
	return r, nil
}

// Register 覆盖具名 Logger
func (r *LoggerRegistry) Register(name string, l logger.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[name] = l
}

// Get 获取具名 Logger，从不返回 nil
func (r *LoggerRegistry) Get(name string) logger.Logger {
	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	if ok {
		return l
	}
	return r.base.Named(name)
}

// Configured 是否为该名字配置了独立输出
func (r *LoggerRegistry) Configured(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loggers[name]
	return ok
}

// Names 已注册的名字，按字母序
func (r *LoggerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sync 刷新所有具名 Logger
func (r *LoggerRegistry) Sync() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.loggers {
		_ = l.Sync()
	}
}
