package handler

import (
	"context"

	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	gamerouter "github.com/lk2023060901/creatorsim/app/game/internal/router"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// ContentHandler 内容制作与上传
type ContentHandler struct {
	logger     logger.Logger
	contentSvc *service.ContentService
}

func NewContentHandler(l logger.Logger, contentSvc *service.ContentService) *ContentHandler {
	return &ContentHandler{
		logger:     l.Named("handler.content"),
		contentSvc: contentSvc,
	}
}

func (h *ContentHandler) RegisterHandlers(pr *gamerouter.PlayerRouter) {
	g := pr.Group("/content")
	gamerouter.POST(g, "/start", h.HandleStart)
	gamerouter.GET(g, "/producing", h.HandleProducing)
	gamerouter.GET(g, "/history", h.HandleHistory)
	gamerouter.POST(g, "/:id/complete", h.HandleComplete)
	gamerouter.POST(g, "/:id/upload", h.HandleUpload)
}

// StartContentRequest 开始制作
type StartContentRequest struct {
	Title                string   `json:"title"`
	Genre                string   `json:"genre"`
	CharacterInstanceIDs []string `json:"characterInstanceIds"`
}

// ContentIDRequest 路径中的内容 ID
type ContentIDRequest struct {
	ID string `uri:"id" binding:"required"`
}

// HistoryRequest 分页参数，0 表示默认值
type HistoryRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

func (h *ContentHandler) HandleStart(ctx context.Context, playerID string, req *StartContentRequest) (*engine.ProducingView, error) {
	view, err := h.contentSvc.Start(ctx, playerID, engine.StartRequest{
		Title:        req.Title,
		Genre:        req.Genre,
		CharacterIDs: req.CharacterInstanceIDs,
	})
	if err != nil {
		return nil, err
	}
	h.logger.InfoContext(ctx, "content started", "content_id", view.ID, "genre", req.Genre)
	return view, nil
}

func (h *ContentHandler) HandleProducing(ctx context.Context, playerID string, _ *gamerouter.Empty) (*engine.ProducingView, error) {
	return h.contentSvc.Producing(ctx, playerID)
}

func (h *ContentHandler) HandleComplete(ctx context.Context, playerID string, req *ContentIDRequest) (*model.ContentJob, error) {
	return h.contentSvc.Complete(ctx, playerID, req.ID)
}

func (h *ContentHandler) HandleUpload(ctx context.Context, playerID string, req *ContentIDRequest) (*engine.UploadResult, error) {
	return h.contentSvc.Upload(ctx, playerID, req.ID)
}

func (h *ContentHandler) HandleHistory(ctx context.Context, playerID string, req *HistoryRequest) (*model.ContentPage, error) {
	return h.contentSvc.History(ctx, playerID, req.Page, req.PageSize)
}
