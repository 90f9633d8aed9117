package handler

import (
	"context"

	"github.com/lk2023060901/creatorsim/app/game/internal/dao"
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	gamerouter "github.com/lk2023060901/creatorsim/app/game/internal/router"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// AdminHandler 运营接口，挂载在 admin 角色校验之后
type AdminHandler struct {
	logger        logger.Logger
	adminSvc      *service.AdminService
	masterDataSvc *service.MasterDataService
}

func NewAdminHandler(l logger.Logger, adminSvc *service.AdminService, masterDataSvc *service.MasterDataService) *AdminHandler {
	return &AdminHandler{
		logger:        l.Named("handler.admin"),
		adminSvc:      adminSvc,
		masterDataSvc: masterDataSvc,
	}
}

func (h *AdminHandler) RegisterHandlers(pr *gamerouter.PlayerRouter) {
	gamerouter.GET(pr, "/dashboard", h.HandleDashboard)
	gamerouter.GET(pr, "/statistics/gacha", h.HandleGachaStats)
	gamerouter.GET(pr, "/players/:playerId", h.HandlePlayer)
	gamerouter.POST(pr, "/players/:playerId/grant", h.HandleGrant)
	gamerouter.POST(pr, "/master-data/reload", h.HandleReload)
}

// PlayerIDRequest 路径中的目标玩家
type PlayerIDRequest struct {
	PlayerID string `uri:"playerId" binding:"required"`
}

// GrantPlayerRequest 向目标玩家发放货币
type GrantPlayerRequest struct {
	PlayerID string `uri:"playerId" json:"-" binding:"required"`
	service.GrantRequest
}

// ReloadResponse 重载后的主数据版本
type ReloadResponse struct {
	Version int `json:"version"`
}

func (h *AdminHandler) HandleDashboard(ctx context.Context, _ string, _ *gamerouter.Empty) (*service.Dashboard, error) {
	return h.adminSvc.Dashboard(ctx)
}

func (h *AdminHandler) HandleGachaStats(ctx context.Context, _ string, _ *gamerouter.Empty) ([]*dao.RarityCount, error) {
	return h.adminSvc.GachaStats(ctx)
}

func (h *AdminHandler) HandlePlayer(ctx context.Context, _ string, req *PlayerIDRequest) (*model.Player, error) {
	return h.adminSvc.Player(ctx, req.PlayerID)
}

func (h *AdminHandler) HandleGrant(ctx context.Context, operatorID string, req *GrantPlayerRequest) (*model.Balances, error) {
	balances, err := h.adminSvc.Grant(ctx, req.PlayerID, req.GrantRequest)
	if err != nil {
		return nil, err
	}
	h.logger.InfoContext(ctx, "resources granted",
		"operator_id", operatorID,
		"target_player_id", req.PlayerID,
		"gold", req.Gold,
		"gems", req.Gems,
		"tickets", req.Tickets,
		"exp_chips", req.ExpChips,
		"reason", req.Reason,
	)
	return balances, nil
}

func (h *AdminHandler) HandleReload(ctx context.Context, operatorID string, _ *gamerouter.Empty) (*ReloadResponse, error) {
	version, err := h.masterDataSvc.Reload()
	if err != nil {
		h.logger.WarnContext(ctx, "master data reload rejected", "operator_id", operatorID, "version", version, "error", err)
		return nil, gameerr.Validation("master data reload rejected: %v", err)
	}
	h.logger.InfoContext(ctx, "master data reloaded", "operator_id", operatorID, "version", version)
	return &ReloadResponse{Version: version}, nil
}
