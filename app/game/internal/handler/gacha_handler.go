package handler

import (
	"context"

	gamerouter "github.com/lk2023060901/creatorsim/app/game/internal/router"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

type GachaHandler struct {
	logger   logger.Logger
	gachaSvc *service.GachaService
}

func NewGachaHandler(l logger.Logger, gachaSvc *service.GachaService) *GachaHandler {
	return &GachaHandler{
		logger:   l.Named("handler.gacha"),
		gachaSvc: gachaSvc,
	}
}

func (h *GachaHandler) RegisterHandlers(pr *gamerouter.PlayerRouter) {
	gamerouter.POST(pr, "/gacha/draw", h.HandleDraw)
}

// DrawRequest 抽卡请求，次数范围由抽卡配置校验
type DrawRequest struct {
	Count     int  `json:"count"`
	UseTicket bool `json:"useTicket"`
}

func (h *GachaHandler) HandleDraw(ctx context.Context, playerID string, req *DrawRequest) (*service.DrawResponse, error) {
	resp, err := h.gachaSvc.Draw(ctx, playerID, req.Count, req.UseTicket)
	if err != nil {
		h.logger.Debug("draw rejected", "player_id", playerID, "count", req.Count, "use_ticket", req.UseTicket, "error", err)
		return nil, err
	}
	return resp, nil
}
