package handler

import (
	"context"

	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	gamerouter "github.com/lk2023060901/creatorsim/app/game/internal/router"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

type EquipmentHandler struct {
	logger       logger.Logger
	equipmentSvc *service.EquipmentService
}

func NewEquipmentHandler(l logger.Logger, equipmentSvc *service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{
		logger:       l.Named("handler.equipment"),
		equipmentSvc: equipmentSvc,
	}
}

func (h *EquipmentHandler) RegisterHandlers(pr *gamerouter.PlayerRouter) {
	gamerouter.GET(pr, "/player/equipment", h.HandleList)
	gamerouter.POST(pr, "/player/equipment/:type/upgrade", h.HandleUpgrade)
}

type UpgradeRequest struct {
	Type string `uri:"type" binding:"required"`
}

func (h *EquipmentHandler) HandleList(ctx context.Context, playerID string, _ *gamerouter.Empty) ([]engine.SlotView, error) {
	return h.equipmentSvc.List(ctx, playerID)
}

func (h *EquipmentHandler) HandleUpgrade(ctx context.Context, playerID string, req *UpgradeRequest) (*engine.UpgradeResult, error) {
	return h.equipmentSvc.Upgrade(ctx, playerID, req.Type)
}
