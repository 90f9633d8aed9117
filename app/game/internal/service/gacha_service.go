package service

import (
	"context"

	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	"github.com/lk2023060901/creatorsim/app/game/internal/event"
	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/repository"
	"github.com/lk2023060901/creatorsim/pkg/idgen"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// DrawResponse 抽卡结果
type DrawResponse struct {
	Results          []engine.DrawResult `json:"results"`
	RemainingTickets int64               `json:"remainingTickets"`
	RemainingGems    int64               `json:"remainingGems"`
}

// GachaService 抽卡服务
type GachaService struct {
	exec    *Executor
	ids     idgen.Generator
	metrics *metrics.GameMetrics
	logger  logger.Logger
}

// NewGachaService 创建抽卡服务
func NewGachaService(exec *Executor, ids idgen.Generator, m *metrics.GameMetrics, l logger.Logger) *GachaService {
	return &GachaService{
		exec:    exec,
		ids:     ids,
		metrics: m,
		logger:  l.Named("service.gacha"),
	}
}

// Draw 抽卡主逻辑
func (s *GachaService) Draw(ctx context.Context, playerID string, count int, useTicket bool) (*DrawResponse, error) {
	var outcome *engine.DrawOutcome
	err := s.exec.Run(ctx, "gacha.draw", playerID, func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error {
		// 1. 加载玩家与已持有定义
		p, err := ensurePlayer(ctx, uow, env, playerID, s.metrics)
		if err != nil {
			return err
		}
		owned, err := uow.ListCharacters(ctx)
		if err != nil {
			return err
		}
		ownedDefs := make(map[string]struct{}, len(owned))
		for _, c := range owned {
			ownedDefs[c.DefinitionID] = struct{}{}
		}

		// 2. 扣费并铸造
		out, err := engine.Draw(env, p, ownedDefs, count, useTicket)
		if err != nil {
			return err
		}
		for _, rec := range out.Records {
			if rec.ID, err = idgen.NextString(s.ids); err != nil {
				return err
			}
		}

		// 3. 保存增量
		if err := savePlayer(ctx, uow, env, p); err != nil {
			return err
		}
		if err := uow.InsertCharacters(ctx, out.Instances); err != nil {
			return err
		}
		if err := uow.InsertGachaRecords(ctx, out.Records); err != nil {
			return err
		}
		outcome = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		for _, rec := range outcome.Records {
			s.metrics.RecordDraw(string(rec.Rarity), string(rec.PaidWith))
		}
	}
	s.logger.InfoContext(ctx, "gacha draw",
		"player_id", playerID,
		"count", count,
		"use_ticket", useTicket,
	)
	s.exec.Publish(ctx, event.TypeGachaDraw, playerID, outcome.Records)
	return &DrawResponse{
		Results:          outcome.Results,
		RemainingTickets: outcome.RemainingTickets,
		RemainingGems:    outcome.RemainingGems,
	}, nil
}
