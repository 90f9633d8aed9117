package dao

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/pkg/database/postgres"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// EquipmentDAO 设备槽位数据访问对象
type EquipmentDAO struct {
	observer
	logger logger.Logger
}

// NewEquipmentDAO 创建设备 DAO
func NewEquipmentDAO(l logger.Logger, m *metrics.GameMetrics) *EquipmentDAO {
	return &EquipmentDAO{
		observer: observer{metrics: m},
		logger:   l.Named("dao.equipment"),
	}
}

// ListByPlayer 玩家已有的槽位
func (d *EquipmentDAO) ListByPlayer(ctx context.Context, q postgres.Querier, playerID string) (_ []*model.EquipmentSlot, err error) {
	start := time.Now()
	defer func() { d.observe("equipment.list", start, err) }()

	b := postgres.QueryBuilder.
		Select("player_id", "slot_type", "level").
		From(tableEquipment).
		Where(squirrel.Eq{"player_id": playerID})

	slots, err := postgres.Select[model.EquipmentSlot](ctx, q, b)
	if err != nil {
		return nil, errors.Wrapf(err, "list equipment of %s", playerID)
	}
	return slots, nil
}

// Upsert 插入或更新槽位等级
func (d *EquipmentDAO) Upsert(ctx context.Context, q postgres.Querier, slots ...*model.EquipmentSlot) (err error) {
	if len(slots) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { d.observe("equipment.upsert", start, err) }()

	b := postgres.QueryBuilder.
		Insert(tableEquipment).
		Columns("player_id", "slot_type", "level")
	for _, s := range slots {
		b = b.Values(s.PlayerID, s.Type, s.Level)
	}
	b = b.Suffix("ON CONFLICT (player_id, slot_type) DO UPDATE SET level = EXCLUDED.level")

	if _, err := postgres.Exec(ctx, q, b); err != nil {
		return errors.Wrap(err, "upsert equipment")
	}
	return nil
}
