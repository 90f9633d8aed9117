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

var contentColumns = []string{
	"id", "player_id", "title", "genre", "character_ids",
	"score_filming", "score_editing", "score_planning", "score_design",
	"total_quality", "production_seconds", "status",
	"started_at", "completed_at", "uploaded_at",
	"views", "likes", "revenue", "new_subscribers",
}

// contentRow content_jobs 表行，四项评分展开为独立列
type contentRow struct {
	ID                string
	PlayerID          string
	Title             string
	Genre             string
	CharacterIDs      []string `db:"character_ids"`
	ScoreFilming      int64
	ScoreEditing      int64
	ScorePlanning     int64
	ScoreDesign       int64
	TotalQuality      int64
	ProductionSeconds int64
	Status            string
	StartedAt         time.Time
	CompletedAt       *time.Time
	UploadedAt        *time.Time
	Views             int64
	Likes             int64
	Revenue           int64
	NewSubscribers    int64
}

func (r *contentRow) toModel() *model.ContentJob {
	return &model.ContentJob{
		ID:           r.ID,
		PlayerID:     r.PlayerID,
		Title:        r.Title,
		Genre:        model.Genre(r.Genre),
		CharacterIDs: r.CharacterIDs,
		Scores: model.Stats{
			Filming:  r.ScoreFilming,
			Editing:  r.ScoreEditing,
			Planning: r.ScorePlanning,
			Design:   r.ScoreDesign,
		},
		TotalQuality:      r.TotalQuality,
		ProductionSeconds: r.ProductionSeconds,
		Status:            model.ContentStatus(r.Status),
		StartedAt:         r.StartedAt,
		CompletedAt:       r.CompletedAt,
		UploadedAt:        r.UploadedAt,
		Views:             r.Views,
		Likes:             r.Likes,
		Revenue:           r.Revenue,
		NewSubscribers:    r.NewSubscribers,
	}
}

func toModels(rows []*contentRow) []*model.ContentJob {
	out := make([]*model.ContentJob, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}

// ContentDAO 内容任务数据访问对象
type ContentDAO struct {
	observer
	logger logger.Logger
}

// NewContentDAO 创建内容 DAO
func NewContentDAO(l logger.Logger, m *metrics.GameMetrics) *ContentDAO {
	return &ContentDAO{
		observer: observer{metrics: m},
		logger:   l.Named("dao.content"),
	}
}

// Get 查询玩家的任务，不存在或不属于该玩家时返回 nil
func (d *ContentDAO) Get(ctx context.Context, q postgres.Querier, playerID, id string) (_ *model.ContentJob, err error) {
	start := time.Now()
	defer func() { d.observe("content.get", start, err) }()

	b := postgres.QueryBuilder.
		Select(contentColumns...).
		From(tableContent).
		Where(squirrel.Eq{"id": id, "player_id": playerID})

	row, err := postgres.Get[contentRow](ctx, q, b)
	if errors.Is(err, postgres.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get content %s", id)
	}
	return row.toModel(), nil
}

// FindByStatus 查询玩家处于指定状态的最近一个任务
func (d *ContentDAO) FindByStatus(ctx context.Context, q postgres.Querier, playerID string, status model.ContentStatus) (_ *model.ContentJob, err error) {
	start := time.Now()
	defer func() { d.observe("content.find", start, err) }()

	b := postgres.QueryBuilder.
		Select(contentColumns...).
		From(tableContent).
		Where(squirrel.Eq{"player_id": playerID, "status": string(status)}).
		OrderBy("started_at DESC").
		Limit(1)

	row, err := postgres.Get[contentRow](ctx, q, b)
	if errors.Is(err, postgres.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find %s content of %s", status, playerID)
	}
	return row.toModel(), nil
}

// Insert 写入新任务
func (d *ContentDAO) Insert(ctx context.Context, q postgres.Querier, j *model.ContentJob) (err error) {
	start := time.Now()
	defer func() { d.observe("content.insert", start, err) }()

	b := postgres.QueryBuilder.
		Insert(tableContent).
		Columns(contentColumns...).
		Values(
			j.ID, j.PlayerID, j.Title, string(j.Genre), j.CharacterIDs,
			j.Scores.Filming, j.Scores.Editing, j.Scores.Planning, j.Scores.Design,
			j.TotalQuality, j.ProductionSeconds, string(j.Status),
			j.StartedAt, j.CompletedAt, j.UploadedAt,
			j.Views, j.Likes, j.Revenue, j.NewSubscribers,
		)

	if _, err := postgres.Exec(ctx, q, b); err != nil {
		return errors.Wrapf(err, "insert content %s", j.ID)
	}
	return nil
}

// Update 保存状态流转与上传结果
func (d *ContentDAO) Update(ctx context.Context, q postgres.Querier, j *model.ContentJob) (err error) {
	start := time.Now()
	defer func() { d.observe("content.update", start, err) }()

	b := postgres.QueryBuilder.
		Update(tableContent).
		SetMap(map[string]any{
			"status":          string(j.Status),
			"completed_at":    j.CompletedAt,
			"uploaded_at":     j.UploadedAt,
			"views":           j.Views,
			"likes":           j.Likes,
			"revenue":         j.Revenue,
			"new_subscribers": j.NewSubscribers,
		}).
		Where(squirrel.Eq{"id": j.ID, "player_id": j.PlayerID})

	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		return errors.Wrapf(err, "update content %s", j.ID)
	}
	if n == 0 {
		return errors.Wrapf(postgres.ErrNoRows, "update content %s", j.ID)
	}
	return nil
}

// ListUploaded 上传历史分页，按上传时间倒序
func (d *ContentDAO) ListUploaded(ctx context.Context, q postgres.Querier, playerID string, page, pageSize int) (_ []*model.ContentJob, _ int64, err error) {
	start := time.Now()
	defer func() { d.observe("content.history", start, err) }()

	where := squirrel.Eq{"player_id": playerID, "status": string(model.ContentUploaded)}
	total, err := count(ctx, q, postgres.QueryBuilder.Select("COUNT(*)").From(tableContent).Where(where))
	if err != nil {
		return nil, 0, errors.Wrap(err, "count history")
	}

	b := postgres.QueryBuilder.
		Select(contentColumns...).
		From(tableContent).
		Where(where).
		OrderBy("uploaded_at DESC", "id").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize))

	rows, err := postgres.Select[contentRow](ctx, q, b)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "list history of %s", playerID)
	}
	return toModels(rows), total, nil
}

// CountUploaded 全服已上传内容数
func (d *ContentDAO) CountUploaded(ctx context.Context, q postgres.Querier) (int64, error) {
	return count(ctx, q, postgres.QueryBuilder.
		Select("COUNT(*)").
		From(tableContent).
		Where(squirrel.Eq{"status": string(model.ContentUploaded)}))
}
