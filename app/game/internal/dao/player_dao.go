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

var playerColumns = []string{
	"id", "name", "channel_name",
	"gold", "gems", "tickets", "exp_chips",
	"subscribers", "total_views", "channel_power", "studio_level",
	"created_at", "updated_at",
}

// PlayerDAO 玩家数据访问对象
type PlayerDAO struct {
	observer
	logger logger.Logger
}

// NewPlayerDAO 创建玩家 DAO
func NewPlayerDAO(l logger.Logger, m *metrics.GameMetrics) *PlayerDAO {
	return &PlayerDAO{
		observer: observer{metrics: m},
		logger:   l.Named("dao.player"),
	}
}

// Get 按 ID 查询玩家，forUpdate 时加行锁，不存在返回 postgres.ErrNoRows
func (d *PlayerDAO) Get(ctx context.Context, q postgres.Querier, id string, forUpdate bool) (_ *model.Player, err error) {
	start := time.Now()
	defer func() { d.observe("player.get", start, err) }()

	b := postgres.QueryBuilder.
		Select(playerColumns...).
		From(tablePlayers).
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}

	p, err := postgres.Get[model.Player](ctx, q, b)
	if err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "get player %s", id)
	}
	return p, nil
}

// Create 插入新玩家，已存在时不做任何修改
// 返回是否真正插入
func (d *PlayerDAO) Create(ctx context.Context, q postgres.Querier, p *model.Player) (_ bool, err error) {
	start := time.Now()
	defer func() { d.observe("player.create", start, err) }()

	b := postgres.QueryBuilder.
		Insert(tablePlayers).
		Columns(playerColumns...).
		Values(
			p.ID, p.Name, p.ChannelName,
			p.Gold, p.Gems, p.Tickets, p.ExpChips,
			p.Subscribers, p.TotalViews, p.ChannelPower, p.StudioLevel,
			p.CreatedAt, p.UpdatedAt,
		).
		Suffix("ON CONFLICT (id) DO NOTHING")

	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		return false, errors.Wrapf(err, "create player %s", p.ID)
	}
	if n > 0 {
		d.logger.InfoContext(ctx, "player created", "player_id", p.ID)
	}
	return n > 0, nil
}

// Update 保存余额与频道成长
func (d *PlayerDAO) Update(ctx context.Context, q postgres.Querier, p *model.Player) (err error) {
	start := time.Now()
	defer func() { d.observe("player.update", start, err) }()

	b := postgres.QueryBuilder.
		Update(tablePlayers).
		SetMap(map[string]any{
			"name":          p.Name,
			"channel_name":  p.ChannelName,
			"gold":          p.Gold,
			"gems":          p.Gems,
			"tickets":       p.Tickets,
			"exp_chips":     p.ExpChips,
			"subscribers":   p.Subscribers,
			"total_views":   p.TotalViews,
			"channel_power": p.ChannelPower,
			"studio_level":  p.StudioLevel,
			"updated_at":    p.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": p.ID})

	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		return errors.Wrapf(err, "update player %s", p.ID)
	}
	if n == 0 {
		return errors.Wrapf(postgres.ErrNoRows, "update player %s", p.ID)
	}
	return nil
}

// ListRankingRows 排行榜投影（全部玩家）
func (d *PlayerDAO) ListRankingRows(ctx context.Context, q postgres.Querier) (_ []*model.RankingRow, err error) {
	start := time.Now()
	defer func() { d.observe("player.ranking_rows", start, err) }()

	b := postgres.QueryBuilder.
		Select("id", "name", "channel_name", "subscribers", "channel_power").
		From(tablePlayers)

	rows, err := postgres.Select[model.RankingRow](ctx, q, b)
	if err != nil {
		return nil, errors.Wrap(err, "list ranking rows")
	}
	return rows, nil
}

// Count 玩家总数
func (d *PlayerDAO) Count(ctx context.Context, q postgres.Querier) (int64, error) {
	return count(ctx, q, postgres.QueryBuilder.Select("COUNT(*)").From(tablePlayers))
}

func count(ctx context.Context, q postgres.Querier, b squirrel.SelectBuilder) (int64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build sql")
	}
	var n int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count")
	}
	return n, nil
}
