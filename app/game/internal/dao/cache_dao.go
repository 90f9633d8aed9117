package dao

import (
	"bytes"
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/pkg/database/redis"
	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/serializer"
)

const (
	playerCacheTTL  = 30 * time.Minute
	rankingCacheTTL = 10 * time.Minute
	// playerTombstoneTTL 失效标记的存活时间，需长于一次读库加回填的耗时
	playerTombstoneTTL = 5 * time.Second
)

// tombstone 失效标记，不是任何编码器的合法输出
var tombstone = []byte("\x00invalidated")

// CacheDAO Redis 缓存数据访问对象（玩家档案、排行榜快照）
type CacheDAO struct {
	redis   *redis.Client
	codec   *serializer.Codec
	logger  logger.Logger
	metrics *metrics.GameMetrics
}

// NewCacheDAO 创建缓存 DAO
func NewCacheDAO(rdb *redis.Client, codec *serializer.Codec, l logger.Logger, m *metrics.GameMetrics) *CacheDAO {
	return &CacheDAO{
		redis:   rdb,
		codec:   codec,
		logger:  l.Named("dao.cache"),
		metrics: m,
	}
}

func (d *CacheDAO) playerKey(id string) string {
	return d.redis.Key("cache", "player", id)
}

func (d *CacheDAO) rankingKey(metric model.RankingMetric) string {
	return d.redis.Key("cache", "ranking", string(metric))
}

// get 读取并解码，未命中返回 false；无法解码的旧数据视为未命中
func (d *CacheDAO) get(ctx context.Context, key, cacheType string, v any) (bool, error) {
	data, err := d.redis.Get(ctx, key)
	if errors.Is(err, redis.ErrNil) {
		d.recordMiss(cacheType)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if bytes.Equal(data, tombstone) {
		d.recordMiss(cacheType)
		return false, nil
	}
	if err := d.codec.Unmarshal(data, v); err != nil {
		d.logger.WarnContext(ctx, "discard undecodable cache entry", "key", key, "error", err)
		d.recordMiss(cacheType)
		return false, nil
	}
	d.recordHit(cacheType)
	return true, nil
}

func (d *CacheDAO) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := d.codec.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return d.redis.Set(ctx, key, data, ttl)
}

// GetPlayer 从缓存获取玩家，未命中返回 nil
func (d *CacheDAO) GetPlayer(ctx context.Context, id string) (*model.Player, error) {
	var p model.Player
	ok, err := d.get(ctx, d.playerKey(id), "player", &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// FillPlayer 读路径回填，键已存在（包括失效标记）时放弃写入
// 提交前读到的旧行因此无法覆盖提交后的失效
func (d *CacheDAO) FillPlayer(ctx context.Context, p *model.Player) (bool, error) {
	data, err := d.codec.Marshal(p)
	if err != nil {
		return false, errors.Wrapf(err, "encode player %s", p.ID)
	}
	return d.redis.SetNX(ctx, d.playerKey(p.ID), data, playerCacheTTL)
}

// InvalidatePlayer 提交后写入失效标记，标记过期前读路径只读库
func (d *CacheDAO) InvalidatePlayer(ctx context.Context, id string) error {
	if err := d.redis.Set(ctx, d.playerKey(id), tombstone, playerTombstoneTTL); err != nil {
		return err
	}
	d.logger.Debug("invalidated player cache", "player_id", id)
	return nil
}

// GetRanking 从缓存获取排行榜快照，未命中返回 nil
func (d *CacheDAO) GetRanking(ctx context.Context, metric model.RankingMetric) (*model.RankingSnapshot, error) {
	var snap model.RankingSnapshot
	ok, err := d.get(ctx, d.rankingKey(metric), "ranking", &snap)
	if err != nil || !ok {
		return nil, err
	}
	return &snap, nil
}

// SetRanking 写入排行榜快照
func (d *CacheDAO) SetRanking(ctx context.Context, snap *model.RankingSnapshot) error {
	return d.set(ctx, d.rankingKey(snap.Metric), snap, rankingCacheTTL)
}

func (d *CacheDAO) recordHit(cacheType string) {
	if d.metrics != nil {
		d.metrics.RecordCacheHit(cacheType)
	}
}

func (d *CacheDAO) recordMiss(cacheType string) {
	if d.metrics != nil {
		d.metrics.RecordCacheMiss(cacheType)
	}
}
