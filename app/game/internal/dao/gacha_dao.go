package dao

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/pkg/database/postgres"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// RarityCount 按稀有度统计的抽卡次数
type RarityCount struct {
	Rarity model.Rarity `db:"rarity" json:"rarity"`
	Count  int64        `db:"count" json:"count"`
}

// GachaDAO 抽卡记录数据访问对象
type GachaDAO struct {
	observer
	logger logger.Logger
}

// NewGachaDAO 创建抽卡 DAO
func NewGachaDAO(l logger.Logger, m *metrics.GameMetrics) *GachaDAO {
	return &GachaDAO{
		observer: observer{metrics: m},
		logger:   l.Named("dao.gacha"),
	}
}

// InsertBatch 写入抽卡记录
func (d *GachaDAO) InsertBatch(ctx context.Context, q postgres.Querier, records []*model.GachaRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { d.observe("gacha.insert", start, err) }()

	b := postgres.QueryBuilder.
		Insert(tableGachaRecords).
		Columns("id", "player_id", "instance_id", "definition_id", "rarity", "is_new", "paid_with", "created_at")
	for _, r := range records {
		b = b.Values(r.ID, r.PlayerID, r.InstanceID, r.DefinitionID, r.Rarity, r.IsNew, r.PaidWith, r.CreatedAt)
	}
	if _, err := postgres.Exec(ctx, q, b); err != nil {
		return errors.Wrapf(err, "insert %d gacha records", len(records))
	}
	return nil
}

// CountByRarity 全服按稀有度统计
func (d *GachaDAO) CountByRarity(ctx context.Context, q postgres.Querier) (_ []*RarityCount, err error) {
	start := time.Now()
	defer func() { d.observe("gacha.stats", start, err) }()

	b := postgres.QueryBuilder.
		Select("rarity", "COUNT(*) AS count").
		From(tableGachaRecords).
		GroupBy("rarity")

	list, err := postgres.Select[RarityCount](ctx, q, b)
	if err != nil {
		return nil, errors.Wrap(err, "count gacha by rarity")
	}
	return list, nil
}
