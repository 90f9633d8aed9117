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

var characterColumns = []string{
	"instance_id", "player_id", "definition_id",
	"level", "experience", "breakthrough", "acquired_at",
}

// CharacterDAO 角色实例数据访问对象
type CharacterDAO struct {
	observer
	logger logger.Logger
}

// NewCharacterDAO 创建角色实例 DAO
func NewCharacterDAO(l logger.Logger, m *metrics.GameMetrics) *CharacterDAO {
	return &CharacterDAO{
		observer: observer{metrics: m},
		logger:   l.Named("dao.character"),
	}
}

// ListByPlayer 玩家拥有的全部实例，按获得时间排序
func (d *CharacterDAO) ListByPlayer(ctx context.Context, q postgres.Querier, playerID string) (_ []*model.CharacterInstance, err error) {
	start := time.Now()
	defer func() { d.observe("character.list", start, err) }()

	b := postgres.QueryBuilder.
		Select(characterColumns...).
		From(tableCharacters).
		Where(squirrel.Eq{"player_id": playerID}).
		OrderBy("acquired_at", "instance_id")

	list, err := postgres.Select[model.CharacterInstance](ctx, q, b)
	if err != nil {
		return nil, errors.Wrapf(err, "list characters of %s", playerID)
	}
	return list, nil
}

// Get 查询玩家拥有的实例，不属于该玩家时返回 nil
func (d *CharacterDAO) Get(ctx context.Context, q postgres.Querier, playerID, instanceID string) (_ *model.CharacterInstance, err error) {
	start := time.Now()
	defer func() { d.observe("character.get", start, err) }()

	b := postgres.QueryBuilder.
		Select(characterColumns...).
		From(tableCharacters).
		Where(squirrel.Eq{"player_id": playerID, "instance_id": instanceID})

	inst, err := postgres.Get[model.CharacterInstance](ctx, q, b)
	if errors.Is(err, postgres.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get character %s", instanceID)
	}
	return inst, nil
}

// InsertBatch 批量插入
func (d *CharacterDAO) InsertBatch(ctx context.Context, q postgres.Querier, list []*model.CharacterInstance) (err error) {
	if len(list) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { d.observe("character.insert", start, err) }()

	b := postgres.QueryBuilder.Insert(tableCharacters).Columns(characterColumns...)
	for _, c := range list {
		b = b.Values(c.InstanceID, c.PlayerID, c.DefinitionID, c.Level, c.Experience, c.Breakthrough, c.AcquiredAt)
	}
	if _, err := postgres.Exec(ctx, q, b); err != nil {
		return errors.Wrapf(err, "insert %d characters", len(list))
	}
	return nil
}

// Update 保存等级、经验、突破
func (d *CharacterDAO) Update(ctx context.Context, q postgres.Querier, c *model.CharacterInstance) (err error) {
	start := time.Now()
	defer func() { d.observe("character.update", start, err) }()

	b := postgres.QueryBuilder.
		Update(tableCharacters).
		Set("level", c.Level).
		Set("experience", c.Experience).
		Set("breakthrough", c.Breakthrough).
		Where(squirrel.Eq{"instance_id": c.InstanceID, "player_id": c.PlayerID})

	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		return errors.Wrapf(err, "update character %s", c.InstanceID)
	}
	if n == 0 {
		return errors.Wrapf(postgres.ErrNoRows, "update character %s", c.InstanceID)
	}
	return nil
}

// Delete 删除实例
func (d *CharacterDAO) Delete(ctx context.Context, q postgres.Querier, playerID, instanceID string) (err error) {
	start := time.Now()
	defer func() { d.observe("character.delete", start, err) }()

	b := postgres.QueryBuilder.
		Delete(tableCharacters).
		Where(squirrel.Eq{"instance_id": instanceID, "player_id": playerID})

	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		return errors.Wrapf(err, "delete character %s", instanceID)
	}
	if n == 0 {
		return errors.Wrapf(postgres.ErrNoRows, "delete character %s", instanceID)
	}
	return nil
}

// Count 实例总数
func (d *CharacterDAO) Count(ctx context.Context, q postgres.Querier) (int64, error) {
	return count(ctx, q, postgres.QueryBuilder.Select("COUNT(*)").From(tableCharacters))
}
