package service

import (
	"context"

	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	"github.com/lk2023060901/creatorsim/app/game/internal/event"
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/app/game/internal/repository"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// EquipmentService 装备升级
type EquipmentService struct {
	exec    *Executor
	metrics *metrics.GameMetrics
	logger  logger.Logger
}

// NewEquipmentService 创建装备服务
func NewEquipmentService(exec *Executor, m *metrics.GameMetrics, l logger.Logger) *EquipmentService {
	return &EquipmentService{
		exec:    exec,
		metrics: m,
		logger:  l.Named("service.equipment"),
	}
}

// loadSlots 读取并补齐四个槽位
func loadSlots(ctx context.Context, uow repository.UnitOfWork, playerID string) ([]*model.EquipmentSlot, error) {
	existing, err := uow.ListEquipment(ctx)
	if err != nil {
		return nil, err
	}
	all, created := engine.EnsureSlots(playerID, existing)
	if err := uow.UpsertEquipment(ctx, created...); err != nil {
		return nil, err
	}
	return all, nil
}

// List 装备列表，首次访问时创建 1 级槽位
func (s *EquipmentService) List(ctx context.Context, playerID string) ([]engine.SlotView, error) {
	var views []engine.SlotView
	err := s.exec.Run(ctx, "equipment.list", playerID, func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error {
		if _, err := ensurePlayer(ctx, uow, env, playerID, s.metrics); err != nil {
			return err
		}
		slots, err := loadSlots(ctx, uow, playerID)
		if err != nil {
			return err
		}
		views = engine.DescribeSlots(env.Table, slots)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// Upgrade 升级指定槽位
func (s *EquipmentService) Upgrade(ctx context.Context, playerID, slotType string) (*engine.UpgradeResult, error) {
	st, ok := model.ParseSlotType(slotType)
	if !ok {
		return nil, gameerr.Validation("unknown equipment type %q", slotType)
	}

	var res *engine.UpgradeResult
	err := s.exec.Run(ctx, "equipment.upgrade", playerID, func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error {
		p, err := ensurePlayer(ctx, uow, env, playerID, s.metrics)
		if err != nil {
			return err
		}
		slots, err := loadSlots(ctx, uow, playerID)
		if err != nil {
			return err
		}
		var slot *model.EquipmentSlot
		for _, sl := range slots {
			if sl.Type == st {
				slot = sl
			}
		}

		r, err := engine.UpgradeEquipment(env.Table, p, slot)
		if err != nil {
			return err
		}
		if err := savePlayer(ctx, uow, env, p); err != nil {
			return err
		}
		if err := uow.UpsertEquipment(ctx, slot); err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.exec.Publish(ctx, event.TypeEquipmentUpgrade, playerID, map[string]any{
		"type":   st,
		"result": res,
	})
	return res, nil
}
