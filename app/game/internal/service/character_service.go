package service

import (
	"context"

	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	"github.com/lk2023060901/creatorsim/app/game/internal/event"
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/repository"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// CharacterService 角色养成
type CharacterService struct {
	exec    *Executor
	metrics *metrics.GameMetrics
	logger  logger.Logger
}

// NewCharacterService 创建角色服务
func NewCharacterService(exec *Executor, m *metrics.GameMetrics, l logger.Logger) *CharacterService {
	return &CharacterService{
		exec:    exec,
		metrics: m,
		logger:  l.Named("service.character"),
	}
}

// LevelUp 消耗经验芯片升级
func (s *CharacterService) LevelUp(ctx context.Context, playerID, instanceID string, chips int64) (*engine.LevelUpResult, error) {
	var res *engine.LevelUpResult
	err := s.exec.Run(ctx, "character.levelup", playerID, func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error {
		p, err := ensurePlayer(ctx, uow, env, playerID, s.metrics)
		if err != nil {
			return err
		}
		inst, err := uow.GetCharacter(ctx, instanceID)
		if err != nil {
			return err
		}
		if inst == nil {
			return gameerr.NotFound("character %s not found", instanceID)
		}

		r, err := engine.LevelUp(env.Table, p, inst, chips)
		if err != nil {
			return err
		}
		if err := savePlayer(ctx, uow, env, p); err != nil {
			return err
		}
		if err := uow.UpdateCharacter(ctx, inst); err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.exec.Publish(ctx, event.TypeCharacterLevelUp, playerID, map[string]any{
		"instanceId": instanceID,
		"chipsUsed":  chips,
		"result":     res,
	})
	return res, nil
}

// Breakthrough 消耗同定义实例突破，素材被删除
func (s *CharacterService) Breakthrough(ctx context.Context, playerID, targetID, sacrificeID string) (*engine.BreakthroughResult, error) {
	var res *engine.BreakthroughResult
	err := s.exec.Run(ctx, "character.breakthrough", playerID, func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error {
		if _, err := ensurePlayer(ctx, uow, env, playerID, s.metrics); err != nil {
			return err
		}

		lookup, loaded, lookupErr := lookupCharacters(ctx, uow)
		r, err := engine.Breakthrough(env.Table, targetID, sacrificeID, lookup)
		if *lookupErr != nil {
			return *lookupErr
		}
		if err != nil {
			return err
		}

		if err := uow.UpdateCharacter(ctx, loaded[targetID]); err != nil {
			return err
		}
		if err := uow.DeleteCharacter(ctx, sacrificeID); err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "character breakthrough",
		"player_id", playerID,
		"instance_id", targetID,
		"sacrifice_id", sacrificeID,
		"breakthrough", res.NewBreakthrough,
	)
	s.exec.Publish(ctx, event.TypeCharacterBreakthrough, playerID, map[string]any{
		"instanceId":  targetID,
		"sacrificeId": sacrificeID,
		"result":      res,
	})
	return res, nil
}
