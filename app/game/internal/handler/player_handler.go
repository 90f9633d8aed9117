package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	gamerouter "github.com/lk2023060901/creatorsim/app/game/internal/router"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/web"
)

// PlayerHandler 玩家档案
type PlayerHandler struct {
	logger    logger.Logger
	playerSvc *service.PlayerService
}

// NewPlayerHandler 创建玩家处理器
func NewPlayerHandler(l logger.Logger, playerSvc *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{
		logger:    l.Named("handler.player"),
		playerSvc: playerSvc,
	}
}

// RegisterHandlers 注册需要认证的玩家接口
func (h *PlayerHandler) RegisterHandlers(pr *gamerouter.PlayerRouter) {
	gamerouter.GET(pr, "/player/me", h.HandleProfile)
	gamerouter.PUT(pr, "/player/me", h.HandleUpdateProfile)
	gamerouter.GET(pr, "/player/characters", h.HandleCharacters)
}

// RegisterPublic 注册公开接口
func (h *PlayerHandler) RegisterPublic(r gin.IRouter) {
	r.GET("/characters", h.HandleCatalog)
}

func (h *PlayerHandler) HandleProfile(ctx context.Context, playerID string, _ *gamerouter.Empty) (*model.Player, error) {
	return h.playerSvc.Profile(ctx, playerID)
}

func (h *PlayerHandler) HandleUpdateProfile(ctx context.Context, playerID string, req *service.UpdateProfileRequest) (*model.Player, error) {
	return h.playerSvc.UpdateProfile(ctx, playerID, *req)
}

func (h *PlayerHandler) HandleCharacters(ctx context.Context, playerID string, _ *gamerouter.Empty) ([]engine.CharacterView, error) {
	return h.playerSvc.Characters(ctx, playerID)
}

func (h *PlayerHandler) HandleCatalog(c *gin.Context) {
	web.Success(c, h.playerSvc.Catalog())
}
