package app

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/lk2023060901/creatorsim/pkg/logger"
)

var ErrAppAlreadyRunning = errors.New("application is already running")

// Application 进程级应用接口
type Application interface {
	Run(ctx context.Context) error
	Shutdown() error
	Logger(name string) logger.Logger
	AppLogger() logger.Logger
}

// Server 需要随应用启停的服务（HTTP、定时任务等），Start 不得阻塞
type Server interface {
	Start() error
	Stop(ctx context.Context) error
}

// Closer 资源清理接口（Redis、DB、指标等）
type Closer interface {
	Close() error
}

// BaseApp Application 的基础实现
type BaseApp struct {
	opts     Options
	logger   logger.Logger
	registry *LoggerRegistry
	servers  []Server
	closers  []Closer

	mu      sync.RWMutex
	stop    context.CancelFunc
	started atomic.Bool
	closed  atomic.Bool
}

// NewBaseApp 创建 BaseApp
func NewBaseApp(opts ...Option) *BaseApp {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	registry := o.Loggers
	if registry == nil {
		registry, _ = NewLoggerRegistry(o.Logger, nil)
	}
	return &BaseApp{
		opts:     o,
		logger:   o.Logger.Named(o.Name),
		registry: registry,
		stop:     func() {},
	}
}

// AppLogger 应用主日志对象
func (a *BaseApp) AppLogger() logger.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.logger
}

// Logger 获取具名 Logger，未注册时退回主日志的子 Logger
func (a *BaseApp) Logger(name string) logger.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.registry.Get(name)
}

// Run 启动全部 Server 并阻塞到收到信号或 ctx 结束
func (a *BaseApp) Run(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAppAlreadyRunning
	}

	info := GetInfo()
	fmt.Println(info.String())
	a.logger.Info("application starting",
		"name", info.AppName,
		"version", info.Version,
		"commit", info.GitCommit,
		"go_version", info.GoVersion,
		"id", a.opts.ID,
		"loggers", a.registry.Names(),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	a.mu.Lock()
	a.stop = stop
	a.mu.Unlock()
	defer stop()

	for _, srv := range a.servers {
		if err := srv.Start(); err != nil {
			a.logger.Error("failed to start server", "error", err)
			_ = a.Shutdown()
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("shutting down", "cause", context.Cause(ctx))
	return a.Shutdown()
}

// Shutdown 并发停止 Server，再逆序关闭 Closer
func (a *BaseApp) Shutdown() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.opts.StopTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range a.servers {
		g.Go(func() error {
			return srv.Stop(gctx)
		})
	}
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			a.logger.Error("failed to stop server", "error", err)
		} else {
			a.logger.Info("all servers stopped")
		}
	case <-time.After(a.opts.StopTimeout):
		a.logger.Warn("shutdown timeout, forcing exit")
	}

	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close component", "error", err)
			errs = errors.CombineErrors(errs, err)
		}
	}

	a.registry.Sync()
	a.logger.Info("application exited")
	_ = a.logger.Sync()
	return errs
}

// AppendServer 添加服务
func (a *BaseApp) AppendServer(srv ...Server) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.servers = append(a.servers, srv...)
}

// AppendCloser 添加资源清理组件
func (a *BaseApp) AppendCloser(closer ...Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, closer...)
}
