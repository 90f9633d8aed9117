package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	"github.com/lk2023060901/creatorsim/pkg/config"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// JobInfo 任务运行信息
type JobInfo struct {
	ID        cron.EntryID
	Name      string
	Spec      string
	NextRun   time.Time
	PrevRun   time.Time
	RunCount  int64
	FailCount int64
}

type job struct {
	id        cron.EntryID
	name      string
	spec      string
	fn        func() error
	opts      JobOptions
	runCount  atomic.Int64
	failCount atomic.Int64
}

// Scheduler 基于 robfig/cron 的定时任务调度器
type Scheduler struct {
	cfg    *Config
	cron   *cron.Cron
	logger logger.Logger

	mu   sync.RWMutex
	jobs map[string]*job
}

// Option 调度器选项
type Option func(*Scheduler)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New 创建调度器
func New(cfg *Config, opts ...Option) (*Scheduler, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	loc, _ := time.LoadLocation(merged.Timezone)

	s := &Scheduler{
		cfg:    merged,
		logger: logger.Default(),
		jobs:   make(map[string]*job),
	}
	for _, opt := range opts {
		opt(s)
	}

	cl := cronLogger{l: s.logger}
	wrappers := []cron.JobWrapper{cron.Recover(cl)}
	if merged.SkipIfStillRunning {
		wrappers = append(wrappers, cron.SkipIfStillRunning(cl))
	}
	cronOpts := []cron.Option{
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(wrappers...),
	}
	if merged.WithSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}
	s.cron = cron.New(cronOpts...)
	return s, nil
}

// AddFunc 注册任务，name 全局唯一
func (s *Scheduler) AddFunc(name, spec string, fn func() error, opts ...JobOption) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return 0, errors.Wrapf(ErrDuplicateJob, "name=%s", name)
	}

	j := &job{name: name, spec: spec, fn: fn, opts: s.cfg.DefaultJobOptions}
	for _, opt := range opts {
		opt(&j.opts)
	}

	id, err := s.cron.AddFunc(spec, func() { s.execute(context.Background(), j) })
	if err != nil {
		return 0, errors.Wrapf(err, "add job %s", name)
	}
	j.id = id
	s.jobs[name] = j
	return id, nil
}

// RunNow 立即同步执行一次任务（含重试）
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return errors.Wrapf(ErrJobNotFound, "name=%s", name)
	}
	return s.execute(ctx, j)
}

func (s *Scheduler) execute(ctx context.Context, j *job) error {
	j.runCount.Add(1)
	start := time.Now()
	backoff := j.opts.InitialBackoff

	var err error
	for attempt := 0; ; attempt++ {
		if err = j.fn(); err == nil {
			s.logger.Debug("job finished", "job", j.name, "attempt", attempt+1, "elapsed", time.Since(start).String())
			return nil
		}
		if attempt >= j.opts.MaxRetries {
			break
		}
		s.logger.Warn("job failed, retrying", "job", j.name, "attempt", attempt+1, "backoff", backoff.String(), "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = s.nextBackoff(j.opts, backoff)
	}

	j.failCount.Add(1)
	s.logger.Error("job failed", "job", j.name, "retries", j.opts.MaxRetries, "error", err)
	return err
}

func (s *Scheduler) nextBackoff(o JobOptions, cur time.Duration) time.Duration {
	if o.BackoffStrategy != BackoffExponential {
		return cur
	}
	next := time.Duration(float64(cur) * o.BackoffMultiplier)
	if o.MaxBackoff > 0 && next > o.MaxBackoff {
		next = o.MaxBackoff
	}
	return next
}

// ListJobs 所有任务
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		entry := s.cron.Entry(j.id)
		infos = append(infos, JobInfo{
			ID:        j.id,
			Name:      j.name,
			Spec:      j.spec,
			NextRun:   entry.Next,
			PrevRun:   entry.Prev,
			RunCount:  j.runCount.Load(),
			FailCount: j.failCount.Load(),
		})
	}
	return infos
}

// Start 启动调度（非阻塞）
func (s *Scheduler) Start() error {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "scheduler stop")
	}
}

// cronLogger 适配 cron.Logger
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
