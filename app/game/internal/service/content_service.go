package service

import (
	"context"
	"time"

	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	"github.com/lk2023060901/creatorsim/app/game/internal/event"
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/app/game/internal/repository"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// 上传历史分页
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ContentService 内容制作流水线
type ContentService struct {
	exec    *Executor
	repo    repository.Repository
	metrics *metrics.GameMetrics
	logger  logger.Logger
}

// NewContentService 创建内容服务
func NewContentService(exec *Executor, repo repository.Repository, m *metrics.GameMetrics, l logger.Logger) *ContentService {
	return &ContentService{
		exec:    exec,
		repo:    repo,
		metrics: m,
		logger:  l.Named("service.content"),
	}
}

// Start 开始制作
func (s *ContentService) Start(ctx context.Context, playerID string, req engine.StartRequest) (*engine.ProducingView, error) {
	var (
		job *model.ContentJob
		now time.Time
	)
	err := s.exec.Run(ctx, "content.start", playerID, func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error {
		if _, err := ensurePlayer(ctx, uow, env, playerID, s.metrics); err != nil {
			return err
		}
		producing, err := uow.FindProducing(ctx)
		if err != nil {
			return err
		}

		lookup, _, lookupErr := lookupCharacters(ctx, uow)
		j, err := engine.StartContent(env, playerID, req, producing, lookup)
		if *lookupErr != nil {
			return *lookupErr
		}
		if err != nil {
			return err
		}
		if err := uow.InsertContent(ctx, j); err != nil {
			return err
		}
		job, now = j, env.Now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "content started",
		"player_id", playerID,
		"content_id", job.ID,
		"genre", job.Genre,
		"quality", job.TotalQuality,
	)
	s.exec.Publish(ctx, event.TypeContentStarted, playerID, job)
	return engine.DescribeProducing(job, now), nil
}

// Producing 当前在制任务，没有时返回 nil
func (s *ContentService) Producing(ctx context.Context, playerID string) (*engine.ProducingView, error) {
	job, err := s.repo.FindProducing(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return engine.DescribeProducing(job, s.exec.Now()), nil
}

// Complete 到时后完成制作；未到时返回剩余秒数
func (s *ContentService) Complete(ctx context.Context, playerID, contentID string) (*model.ContentJob, error) {
	var job *model.ContentJob
	err := s.exec.Run(ctx, "content.complete", playerID, func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error {
		j, err := uow.GetContent(ctx, contentID)
		if err != nil {
			return err
		}
		if j == nil {
			return gameerr.NotFound("content %s not found", contentID)
		}
		if err := engine.CompleteContent(j, env.Now); err != nil {
			return err
		}
		if err := uow.UpdateContent(ctx, j); err != nil {
			return err
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.exec.Publish(ctx, event.TypeContentCompleted, playerID, map[string]any{"contentId": job.ID})
	return job, nil
}

// Upload 上传已完成内容并结算收益
func (s *ContentService) Upload(ctx context.Context, playerID, contentID string) (*engine.UploadResult, error) {
	var (
		res   *engine.UploadResult
		genre model.Genre
	)
	err := s.exec.Run(ctx, "content.upload", playerID, func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error {
		p, err := ensurePlayer(ctx, uow, env, playerID, s.metrics)
		if err != nil {
			return err
		}
		j, err := uow.GetContent(ctx, contentID)
		if err != nil {
			return err
		}
		if j == nil {
			return gameerr.NotFound("content %s not found", contentID)
		}

		r, err := engine.UploadContent(env, p, j)
		if err != nil {
			return err
		}
		if err := savePlayer(ctx, uow, env, p); err != nil {
			return err
		}
		if err := uow.UpdateContent(ctx, j); err != nil {
			return err
		}
		res, genre = r, j.Genre
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordUpload(string(genre), res.Revenue)
	}
	s.logger.InfoContext(ctx, "content uploaded",
		"player_id", playerID,
		"content_id", contentID,
		"views", res.Views,
		"revenue", res.Revenue,
		"new_subscribers", res.NewSubscribers,
	)
	s.exec.Publish(ctx, event.TypeContentUploaded, playerID, map[string]any{
		"contentId": contentID,
		"genre":     genre,
		"result":    res,
	})
	return res, nil
}

// History 上传历史
func (s *ContentService) History(ctx context.Context, playerID string, page, pageSize int) (*model.ContentPage, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		return nil, gameerr.Validation("page must be >= 1, got %d", page)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, gameerr.Validation("pageSize must be between 1 and %d, got %d", MaxPageSize, pageSize)
	}
	return s.repo.ListHistory(ctx, playerID, page, pageSize)
}
