package handler

import (
	"context"

	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	gamerouter "github.com/lk2023060901/creatorsim/app/game/internal/router"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// CharacterHandler 角色养成
type CharacterHandler struct {
	logger       logger.Logger
	characterSvc *service.CharacterService
}

func NewCharacterHandler(l logger.Logger, characterSvc *service.CharacterService) *CharacterHandler {
	return &CharacterHandler{
		logger:       l.Named("handler.character"),
		characterSvc: characterSvc,
	}
}

func (h *CharacterHandler) RegisterHandlers(pr *gamerouter.PlayerRouter) {
	g := pr.Group("/player/characters/:instanceId")
	gamerouter.POST(g, "/levelup", h.HandleLevelUp)
	gamerouter.POST(g, "/breakthrough", h.HandleBreakthrough)
}

type LevelUpRequest struct {
	InstanceID    string `uri:"instanceId" json:"-" binding:"required"`
	ExpChipsToUse int64  `json:"expChipsToUse"`
}

type BreakthroughRequest struct {
	InstanceID          string `uri:"instanceId" json:"-" binding:"required"`
	SacrificeInstanceID string `json:"sacrificeInstanceId" binding:"required"`
}

func (h *CharacterHandler) HandleLevelUp(ctx context.Context, playerID string, req *LevelUpRequest) (*engine.LevelUpResult, error) {
	return h.characterSvc.LevelUp(ctx, playerID, req.InstanceID, req.ExpChipsToUse)
}

func (h *CharacterHandler) HandleBreakthrough(ctx context.Context, playerID string, req *BreakthroughRequest) (*engine.BreakthroughResult, error) {
	return h.characterSvc.Breakthrough(ctx, playerID, req.InstanceID, req.SacrificeInstanceID)
}
