// Package service 玩法用例：按玩家加锁、开启原子单元、调用引擎、保存增量
package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	"github.com/lk2023060901/creatorsim/app/game/internal/event"
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/manager"
	"github.com/lk2023060901/creatorsim/app/game/internal/masterdata"
	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/app/game/internal/repository"
	"github.com/lk2023060901/creatorsim/app/game/internal/rng"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// Clock 当前时间，测试中替换为固定时钟
type Clock func() time.Time

// Executor 玩家写操作的公共执行流程
type Executor struct {
	repo    repository.Repository
	locker  *manager.PlayerLocker
	store   *masterdata.Store
	rand    rng.Factory
	metrics *metrics.GameMetrics
	clock   Clock
	newID   func() string
	tracer  trace.Tracer
	events  event.Publisher
	audit   logger.Logger
	logger  logger.Logger
}

// ExecutorOption Executor 选项
type ExecutorOption func(*Executor)

// WithClock 替换时钟
func WithClock(c Clock) ExecutorOption {
	return func(e *Executor) {
		e.clock = c
	}
}

// WithIDGenerator 替换实例、任务 id 生成
func WithIDGenerator(fn func() string) ExecutorOption {
	return func(e *Executor) {
		e.newID = fn
	}
}

// WithTracer 每个写操作一个 span
func WithTracer(t trace.Tracer) ExecutorOption {
	return func(e *Executor) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithPublisher 提交成功后的事件出口
func WithPublisher(p event.Publisher) ExecutorOption {
	return func(e *Executor) {
		if p != nil {
			e.events = p
		}
	}
}

// WithAuditLogger 每次提交成功写一条审计日志
func WithAuditLogger(l logger.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.audit = l
		}
	}
}

// NewExecutor 创建执行器，metrics 可为空
func NewExecutor(
	repo repository.Repository,
	locker *manager.PlayerLocker,
	store *masterdata.Store,
	rand rng.Factory,
	m *metrics.GameMetrics,
	l logger.Logger,
	opts ...ExecutorOption,
) *Executor {
	e := &Executor{
		repo:    repo,
		locker:  locker,
		store:   store,
		rand:    rand,
		metrics: m,
		clock:   time.Now,
		newID:   uuid.NewString,
		tracer:  noop.NewTracerProvider().Tracer("service"),
		events:  event.Noop{},
		audit:   logger.NewNoop(),
		logger:  l.Named("service.executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table 当前主数据
func (e *Executor) Table() *masterdata.Table {
	return e.store.Current()
}

// Now 当前时间（UTC）
func (e *Executor) Now() time.Time {
	return e.clock().UTC()
}

// Run 持有玩家锁，在一个原子单元内执行 fn
// 请求取消不会打断已经开始的写操作
func (e *Executor) Run(ctx context.Context, op, playerID string,
	fn func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error) error {
	ctx = context.WithoutCancel(ctx)
	ctx, span := e.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("player.id", playerID)))
	defer span.End()
	start := time.Now()

	err := e.locker.WithLock(ctx, playerID, func() error {
		return e.repo.Atomic(ctx, playerID, func(ctx context.Context, uow repository.UnitOfWork) error {
			env := &engine.Env{
				Table: e.store.Current(),
				Rand:  e.rand.New(),
				Now:   e.Now(),
				NewID: e.newID,
			}
			return fn(ctx, uow, env)
		})
	})

	// 玩法拒绝属于正常结果，不计为失败
	ge, rejected := gameerr.As(err)
	if rejected {
		span.SetAttributes(attribute.String("game.rejected", ge.Kind.String()))
	} else if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
	if e.metrics != nil {
		failure := err
		if rejected {
			failure = nil
		}
		e.metrics.RecordOperation(op, failure, time.Since(start))
		if rejected {
			e.metrics.RecordRejection(op, ge.Kind.String())
		}
	}
	switch {
	case err == nil:
		e.audit.InfoContext(ctx, "committed",
			"op", op,
			"player_id", playerID,
			"elapsed", time.Since(start),
		)
	case !rejected:
		e.logger.ErrorContext(ctx, "operation failed",
			"op", op,
			"player_id", playerID,
			"error", err,
		)
	}
	return err
}

// Publish 广播已提交的变更，失败只记录日志
func (e *Executor) Publish(ctx context.Context, typ event.Type, playerID string, data any) {
	evt := event.Event{
		ID:         e.newID(),
		Type:       typ,
		PlayerID:   playerID,
		OccurredAt: e.Now(),
		Data:       data,
	}
	if err := e.events.Publish(context.WithoutCancel(ctx), evt); err != nil {
		e.logger.WarnContext(ctx, "publish event failed",
			"type", typ,
			"player_id", playerID,
			"error", err,
		)
	}
}

// defaultName 新玩家的默认昵称
func defaultName(playerID string) string {
	short := playerID
	if len(short) > 8 {
		short = short[:8]
	}
	return "creator-" + short
}

// ensurePlayer 加载玩家，不存在时按初始配置创建
func ensurePlayer(ctx context.Context, uow repository.UnitOfWork, env *engine.Env, playerID string, m *metrics.GameMetrics) (*model.Player, error) {
	p, err := uow.LoadPlayer(ctx)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	start := env.Table.PlayerStart
	name := defaultName(playerID)
	p = &model.Player{
		ID:          playerID,
		Name:        name,
		ChannelName: name + " channel",
		Gold:        start.Gold,
		Gems:        start.Gems,
		Tickets:     start.Tickets,
		ExpChips:    start.ExpChips,
		StudioLevel: 1,
		CreatedAt:   env.Now,
		UpdatedAt:   env.Now,
	}
	if err := uow.CreatePlayer(ctx, p); err != nil {
		return nil, err
	}
	if m != nil {
		m.PlayersCreated.Inc()
	}
	// 重新加载以持有行锁
	return uow.LoadPlayer(ctx)
}

// savePlayer 写回玩家并刷新更新时间
func savePlayer(ctx context.Context, uow repository.UnitOfWork, env *engine.Env, p *model.Player) error {
	p.UpdatedAt = env.Now
	return uow.SavePlayer(ctx, p)
}

// lookupCharacters 为引擎提供按 id 查找的回调，首个存储错误记录在返回的指针中
func lookupCharacters(ctx context.Context, uow repository.UnitOfWork) (func(id string) *model.CharacterInstance, map[string]*model.CharacterInstance, *error) {
	var lookupErr error
	loaded := make(map[string]*model.CharacterInstance)
	lookup := func(id string) *model.CharacterInstance {
		if c, ok := loaded[id]; ok {
			return c
		}
		c, err := uow.GetCharacter(ctx, id)
		if err != nil {
			if lookupErr == nil {
				lookupErr = err
			}
			return nil
		}
		if c != nil {
			loaded[id] = c
		}
		return c
	}
	return lookup, loaded, &lookupErr
}
