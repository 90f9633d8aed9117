package service

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/app/game/internal/dao"
	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	"github.com/lk2023060901/creatorsim/app/game/internal/event"
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/app/game/internal/repository"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// Dashboard 后台总览
type Dashboard struct {
	repository.Stats
	MasterDataVersion int            `json:"masterDataVersion"`
	Runtime           *metrics.Stats `json:"runtime,omitempty"`
}

// GrantRequest 发放货币
type GrantRequest struct {
	Gold     int64  `json:"gold"`
	Gems     int64  `json:"gems"`
	Tickets  int64  `json:"tickets"`
	ExpChips int64  `json:"expChips"`
	Reason   string `json:"reason"`
}

func (r GrantRequest) amounts() map[model.Resource]int64 {
	return map[model.Resource]int64{
		model.ResourceGold:     r.Gold,
		model.ResourceGems:     r.Gems,
		model.ResourceTickets:  r.Tickets,
		model.ResourceExpChips: r.ExpChips,
	}
}

// AdminService 运营后台
type AdminService struct {
	exec    *Executor
	repo    repository.Repository
	metrics *metrics.GameMetrics
	logger  logger.Logger
}

// NewAdminService 创建后台服务
func NewAdminService(exec *Executor, repo repository.Repository, m *metrics.GameMetrics, l logger.Logger) *AdminService {
	return &AdminService{
		exec:    exec,
		repo:    repo,
		metrics: m,
		logger:  l.Named("service.admin"),
	}
}

// Dashboard 全服统计与进程状态
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Stats: *stats, MasterDataVersion: s.exec.Table().Version}
	if s.metrics != nil {
		rt := s.metrics.GetStats()
		d.Runtime = &rt
	}
	return d, nil
}

// Player 查看玩家档案
func (s *AdminService) Player(ctx context.Context, playerID string) (*model.Player, error) {
	p, err := s.repo.GetPlayer(ctx, playerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, gameerr.NotFound("player %s not found", playerID)
	}
	return p, err
}

// Grant 向已存在的玩家发放货币
func (s *AdminService) Grant(ctx context.Context, playerID string, req GrantRequest) (*model.Balances, error) {
	amounts := req.amounts()
	var total int64
	for _, r := range model.AllResources {
		v := amounts[r]
		if v < 0 {
			return nil, gameerr.Validation("%s must be >= 0, got %d", r, v)
		}
		total += v
	}
	if total == 0 {
		return nil, gameerr.Validation("nothing to grant")
	}

	var out model.Balances
	err := s.exec.Run(ctx, "admin.grant", playerID, func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error {
		p, err := uow.LoadPlayer(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return gameerr.NotFound("player %s not found", playerID)
		}
		if err != nil {
			return err
		}
		for _, r := range model.AllResources {
			if err := engine.Credit(p, r, amounts[r]); err != nil {
				return err
			}
		}
		if err := savePlayer(ctx, uow, env, p); err != nil {
			return err
		}
		out = model.BalancesOf(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "resources granted",
		"player_id", playerID,
		"gold", req.Gold,
		"gems", req.Gems,
		"tickets", req.Tickets,
		"exp_chips", req.ExpChips,
		"reason", req.Reason,
	)
	s.exec.Publish(ctx, event.TypeAdminGrant, playerID, req)
	return &out, nil
}

// GachaStats 全服按稀有度的抽卡次数
func (s *AdminService) GachaStats(ctx context.Context) ([]*dao.RarityCount, error) {
	return s.repo.GachaStats(ctx)
}
