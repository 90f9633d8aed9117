package repository

import (
	"context"
	_ "embed"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/app/game/internal/dao"
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/pkg/database/postgres"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// Migrate 建表（幂等）
func Migrate(ctx context.Context, db *postgres.Client) error {
	if _, err := db.Primary().Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}

// DAOs Postgres 仓储依赖的 DAO 集合
type DAOs struct {
	Players    *dao.PlayerDAO
	Characters *dao.CharacterDAO
	Equipment  *dao.EquipmentDAO
	Content    *dao.ContentDAO
	Gacha      *dao.GachaDAO
	// Cache 为空时不使用 Redis 缓存
	Cache *dao.CacheDAO
}

// postgresRepository 基于可串行化事务的仓储实现
type postgresRepository struct {
	db     *postgres.Client
	daos   DAOs
	logger logger.Logger
}

// NewPostgresRepository 创建 Postgres 仓储
func NewPostgresRepository(db *postgres.Client, daos DAOs, l logger.Logger) Repository {
	return &postgresRepository{
		db:     db,
		daos:   daos,
		logger: l.Named("repository.postgres"),
	}
}

// Atomic 在可串行化事务中执行 fn，冲突时由客户端整体重试
func (r *postgresRepository) Atomic(ctx context.Context, playerID string, fn func(ctx context.Context, uow UnitOfWork) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.db.QueryTimeout())
	defer cancel()

	err := r.db.WithTxOptions(ctx, postgres.TxOptions{IsoLevel: postgres.TxIsolationLevelSerializable},
		func(q postgres.Querier) error {
			return fn(ctx, &postgresUnit{daos: &r.daos, q: q, playerID: playerID})
		})
	if err != nil {
		return err
	}

	// 提交后失效玩家缓存，失败只记录
	if r.daos.Cache != nil {
		if err := r.daos.Cache.InvalidatePlayer(ctx, playerID); err != nil {
			r.logger.WarnContext(ctx, "failed to delete player cache after commit",
				"player_id", playerID,
				"error", err,
			)
		}
	}
	return nil
}

// GetPlayer 获取玩家（优先从缓存）
func (r *postgresRepository) GetPlayer(ctx context.Context, id string) (*model.Player, error) {
	// 1. 先尝试从缓存获取
	if r.daos.Cache != nil {
		p, err := r.daos.Cache.GetPlayer(ctx, id)
		if err != nil {
			r.logger.WarnContext(ctx, "failed to get player from cache, fallback to db",
				"player_id", id,
				"error", err,
			)
		} else if p != nil {
			return p, nil
		}
	}

	// 2. 缓存未命中，从主库加载
	p, err := r.daos.Players.Get(ctx, r.db.Primary(), id, false)
	if errors.Is(err, postgres.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// 3. 回写缓存，期间有提交则放弃
	if r.daos.Cache != nil {
		if _, err := r.daos.Cache.FillPlayer(ctx, p); err != nil {
			r.logger.WarnContext(ctx, "failed to set player cache",
				"player_id", id,
				"error", err,
			)
		}
	}
	return p, nil
}

func (r *postgresRepository) ListCharacters(ctx context.Context, playerID string) ([]*model.CharacterInstance, error) {
	return r.daos.Characters.ListByPlayer(ctx, r.db.Replica(), playerID)
}

func (r *postgresRepository) ListEquipment(ctx context.Context, playerID string) ([]*model.EquipmentSlot, error) {
	return r.daos.Equipment.ListByPlayer(ctx, r.db.Replica(), playerID)
}

func (r *postgresRepository) FindProducing(ctx context.Context, playerID string) (*model.ContentJob, error) {
	return r.daos.Content.FindByStatus(ctx, r.db.Primary(), playerID, model.ContentProducing)
}

func (r *postgresRepository) ListHistory(ctx context.Context, playerID string, page, pageSize int) (*model.ContentPage, error) {
	items, total, err := r.daos.Content.ListUploaded(ctx, r.db.Replica(), playerID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &model.ContentPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (r *postgresRepository) ListRankingRows(ctx context.Context) ([]*model.RankingRow, error) {
	return r.daos.Players.ListRankingRows(ctx, r.db.Replica())
}

func (r *postgresRepository) Stats(ctx context.Context) (*Stats, error) {
	q := r.db.Replica()
	var (
		s   Stats
		err error
	)
	if s.Players, err = r.daos.Players.Count(ctx, q); err != nil {
		return nil, errors.Wrap(err, "count players")
	}
	if s.Characters, err = r.daos.Characters.Count(ctx, q); err != nil {
		return nil, errors.Wrap(err, "count characters")
	}
	if s.UploadedContents, err = r.daos.Content.CountUploaded(ctx, q); err != nil {
		return nil, errors.Wrap(err, "count uploaded contents")
	}
	return &s, nil
}

func (r *postgresRepository) GachaStats(ctx context.Context) ([]*dao.RarityCount, error) {
	return r.daos.Gacha.CountByRarity(ctx, r.db.Replica())
}

// postgresUnit 绑定到单个事务与单个玩家
type postgresUnit struct {
	daos     *DAOs
	q        postgres.Querier
	playerID string
}

func (u *postgresUnit) LoadPlayer(ctx context.Context) (*model.Player, error) {
	p, err := u.daos.Players.Get(ctx, u.q, u.playerID, true)
	if errors.Is(err, postgres.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (u *postgresUnit) CreatePlayer(ctx context.Context, p *model.Player) error {
	_, err := u.daos.Players.Create(ctx, u.q, p)
	return err
}

func (u *postgresUnit) SavePlayer(ctx context.Context, p *model.Player) error {
	return u.daos.Players.Update(ctx, u.q, p)
}

func (u *postgresUnit) ListCharacters(ctx context.Context) ([]*model.CharacterInstance, error) {
	return u.daos.Characters.ListByPlayer(ctx, u.q, u.playerID)
}

func (u *postgresUnit) GetCharacter(ctx context.Context, instanceID string) (*model.CharacterInstance, error) {
	return u.daos.Characters.Get(ctx, u.q, u.playerID, instanceID)
}

func (u *postgresUnit) InsertCharacters(ctx context.Context, list []*model.CharacterInstance) error {
	return u.daos.Characters.InsertBatch(ctx, u.q, list)
}

func (u *postgresUnit) UpdateCharacter(ctx context.Context, c *model.CharacterInstance) error {
	return u.daos.Characters.Update(ctx, u.q, c)
}

func (u *postgresUnit) DeleteCharacter(ctx context.Context, instanceID string) error {
	return u.daos.Characters.Delete(ctx, u.q, u.playerID, instanceID)
}

func (u *postgresUnit) ListEquipment(ctx context.Context) ([]*model.EquipmentSlot, error) {
	return u.daos.Equipment.ListByPlayer(ctx, u.q, u.playerID)
}

func (u *postgresUnit) UpsertEquipment(ctx context.Context, slots ...*model.EquipmentSlot) error {
	return u.daos.Equipment.Upsert(ctx, u.q, slots...)
}

func (u *postgresUnit) GetContent(ctx context.Context, id string) (*model.ContentJob, error) {
	return u.daos.Content.Get(ctx, u.q, u.playerID, id)
}

func (u *postgresUnit) FindProducing(ctx context.Context) (*model.ContentJob, error) {
	return u.daos.Content.FindByStatus(ctx, u.q, u.playerID, model.ContentProducing)
}

func (u *postgresUnit) InsertContent(ctx context.Context, j *model.ContentJob) error {
	err := u.daos.Content.Insert(ctx, u.q, j)
	if postgres.IsUniqueViolation(err) {
		return gameerr.StateConflict("a content job is already in production")
	}
	return err
}

func (u *postgresUnit) UpdateContent(ctx context.Context, j *model.ContentJob) error {
	return u.daos.Content.Update(ctx, u.q, j)
}

func (u *postgresUnit) InsertGachaRecords(ctx context.Context, records []*model.GachaRecord) error {
	return u.daos.Gacha.InsertBatch(ctx, u.q, records)
}
