package repository

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/app/game/internal/dao"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
)

// ErrNotFound 玩家不存在
var ErrNotFound = errors.New("repository: not found")

// 存储驱动
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config 存储配置
type Config struct {
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=postgres memory"`
}

// UnitOfWork 单个玩家的原子工作单元
// 所有写入在 Atomic 返回 nil 时一起生效，返回错误时全部丢弃
type UnitOfWork interface {
	// ===== 玩家 =====
	// LoadPlayer 加载并锁定玩家，不存在返回 ErrNotFound
	LoadPlayer(ctx context.Context) (*model.Player, error)
	// CreatePlayer 创建玩家，已存在时不做修改
	CreatePlayer(ctx context.Context, p *model.Player) error
	SavePlayer(ctx context.Context, p *model.Player) error

	// ===== 角色实例 =====
	ListCharacters(ctx context.Context) ([]*model.CharacterInstance, error)
	// GetCharacter 不属于该玩家时返回 nil
	GetCharacter(ctx context.Context, instanceID string) (*model.CharacterInstance, error)
	InsertCharacters(ctx context.Context, list []*model.CharacterInstance) error
	UpdateCharacter(ctx context.Context, c *model.CharacterInstance) error
	DeleteCharacter(ctx context.Context, instanceID string) error

	// ===== 设备 =====
	ListEquipment(ctx context.Context) ([]*model.EquipmentSlot, error)
	UpsertEquipment(ctx context.Context, slots ...*model.EquipmentSlot) error

	// ===== 内容 =====
	// GetContent 不存在或不属于该玩家时返回 nil
	GetContent(ctx context.Context, id string) (*model.ContentJob, error)
	FindProducing(ctx context.Context) (*model.ContentJob, error)
	InsertContent(ctx context.Context, j *model.ContentJob) error
	UpdateContent(ctx context.Context, j *model.ContentJob) error

	// ===== 抽卡 =====
	InsertGachaRecords(ctx context.Context, records []*model.GachaRecord) error
}

// Stats 全服统计
type Stats struct {
	Players          int64 `json:"totalPlayers"`
	Characters       int64 `json:"totalCharacters"`
	UploadedContents int64 `json:"totalUploadedContents"`
}

// Repository 玩法数据仓储
type Repository interface {
	// Atomic 在一个原子单元内执行 fn
	Atomic(ctx context.Context, playerID string, fn func(ctx context.Context, uow UnitOfWork) error) error

	// 只读查询，不加锁
	GetPlayer(ctx context.Context, id string) (*model.Player, error)
	ListCharacters(ctx context.Context, playerID string) ([]*model.CharacterInstance, error)
	ListEquipment(ctx context.Context, playerID string) ([]*model.EquipmentSlot, error)
	FindProducing(ctx context.Context, playerID string) (*model.ContentJob, error)
	ListHistory(ctx context.Context, playerID string, page, pageSize int) (*model.ContentPage, error)
	ListRankingRows(ctx context.Context) ([]*model.RankingRow, error)
	Stats(ctx context.Context) (*Stats, error)
	GachaStats(ctx context.Context) ([]*dao.RarityCount, error)
}
