package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	gamerouter "github.com/lk2023060901/creatorsim/app/game/internal/router"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/app"
	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/security"
	"github.com/lk2023060901/creatorsim/pkg/sentry"
	"github.com/lk2023060901/creatorsim/pkg/web"
	webmetrics "github.com/lk2023060901/creatorsim/pkg/web/metrics"
	"github.com/lk2023060901/creatorsim/pkg/web/middleware"
)

// AdminRole 运营接口所需角色
const AdminRole = "admin"

// Options 路由挂载依赖，除 JWT 外均可为空
type Options struct {
	JWT            *security.JWTManager
	RateLimiter    *middleware.RateLimiter
	HTTPMetrics    *webmetrics.HTTPMetrics
	MetricsHandler http.Handler
	Tracer         trace.Tracer
	Sentry         *sentry.Client
}

// Handlers 全部 HTTP 处理器
type Handlers struct {
	logger     logger.Logger
	masterData *service.MasterDataService

	Player     *PlayerHandler
	Gacha      *GachaHandler
	Character  *CharacterHandler
	Equipment  *EquipmentHandler
	Content    *ContentHandler
	Ranking    *RankingHandler
	MasterData *MasterDataHandler
	Admin      *AdminHandler
}

// NewHandlers 创建全部处理器
func NewHandlers(
	l logger.Logger,
	playerSvc *service.PlayerService,
	gachaSvc *service.GachaService,
	characterSvc *service.CharacterService,
	equipmentSvc *service.EquipmentService,
	contentSvc *service.ContentService,
	rankingSvc *service.RankingService,
	masterDataSvc *service.MasterDataService,
	adminSvc *service.AdminService,
) *Handlers {
	return &Handlers{
		logger:     l,
		masterData: masterDataSvc,
		Player:     NewPlayerHandler(l, playerSvc),
		Gacha:      NewGachaHandler(l, gachaSvc),
		Character:  NewCharacterHandler(l, characterSvc),
		Equipment:  NewEquipmentHandler(l, equipmentSvc),
		Content:    NewContentHandler(l, contentSvc),
		Ranking:    NewRankingHandler(l, rankingSvc),
		MasterData: NewMasterDataHandler(l, masterDataSvc),
		Admin:      NewAdminHandler(l, adminSvc, masterDataSvc),
	}
}

// Register 挂载全部路由
func (h *Handlers) Register(engine *gin.Engine, opts Options) {
	// 1. 全局中间件与探活
	if opts.HTTPMetrics != nil {
		engine.Use(middleware.Metrics(opts.HTTPMetrics))
	}
	if opts.Tracer != nil {
		engine.Use(middleware.Tracing(opts.Tracer))
	}
	if opts.Sentry != nil {
		engine.Use(sentry.Middleware(opts.Sentry))
	}
	engine.GET("/health", h.HandleHealth)
	if opts.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	// 2. 公开接口
	api := engine.Group("/api")
	h.MasterData.RegisterPublic(api)
	h.Player.RegisterPublic(api)

	// 3. 玩家接口：认证后按玩家限流
	authed := []gin.HandlerFunc{middleware.Auth(opts.JWT)}
	if opts.RateLimiter != nil {
		authed = append(authed, middleware.RateLimit(opts.RateLimiter))
	}
	pr := gamerouter.NewPlayerRouter(api.Group("", authed...), h.logger)
	h.Player.RegisterHandlers(pr)
	h.Gacha.RegisterHandlers(pr)
	h.Character.RegisterHandlers(pr)
	h.Equipment.RegisterHandlers(pr)
	h.Content.RegisterHandlers(pr)
	h.Ranking.RegisterHandlers(pr)

	// 4. 运营接口
	h.Admin.RegisterHandlers(pr.Group("/admin", middleware.RequireRole(AdminRole)))
}

func (h *Handlers) HandleHealth(c *gin.Context) {
	web.Success(c, gin.H{
		"status":            "ok",
		"masterDataVersion": h.masterData.Version(),
		"build":             app.GetInfo(),
	})
}
