package handler

import (
	"context"

	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	gamerouter "github.com/lk2023060901/creatorsim/app/game/internal/router"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

type RankingHandler struct {
	logger     logger.Logger
	rankingSvc *service.RankingService
}

func NewRankingHandler(l logger.Logger, rankingSvc *service.RankingService) *RankingHandler {
	return &RankingHandler{
		logger:     l.Named("handler.ranking"),
		rankingSvc: rankingSvc,
	}
}

func (h *RankingHandler) RegisterHandlers(pr *gamerouter.PlayerRouter) {
	gamerouter.GET(pr, "/rankings/:metric", h.HandleGet)
}

// RankingRequest 指标名与条数，topN 为 0 时取默认值
type RankingRequest struct {
	Metric string `uri:"metric" binding:"required"`
	TopN   int    `form:"topN"`
}

func (h *RankingHandler) HandleGet(ctx context.Context, playerID string, req *RankingRequest) (*model.RankingResult, error) {
	return h.rankingSvc.Get(ctx, req.Metric, playerID, req.TopN)
}
