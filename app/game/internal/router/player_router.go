package gamerouter

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/manager"
	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/sentry"
	"github.com/lk2023060901/creatorsim/pkg/web"
	"github.com/lk2023060901/creatorsim/pkg/web/errors"
	"github.com/lk2023060901/creatorsim/pkg/web/middleware"
)

// Empty 无参数请求
type Empty struct{}

// HandlerFunc 带 playerID 参数的处理器
// 请求由路径参数、查询参数与 JSON 请求体依次填充后统一校验
type HandlerFunc[TReq any, TResp any] func(ctx context.Context, playerID string, req *TReq) (TResp, error)

// PlayerRouter 玩家路由组
// 在 gin 路由组之上，自动从认证信息提取 playerID 并传递给 handler
type PlayerRouter struct {
	group  *gin.RouterGroup
	logger logger.Logger
}

// NewPlayerRouter 创建 PlayerRouter
func NewPlayerRouter(group *gin.RouterGroup, l logger.Logger) *PlayerRouter {
	return &PlayerRouter{
		group:  group,
		logger: l.Named("router.player"),
	}
}

// Group 创建子路由组
func (pr *PlayerRouter) Group(path string, handlers ...gin.HandlerFunc) *PlayerRouter {
	return &PlayerRouter{
		group:  pr.group.Group(path, handlers...),
		logger: pr.logger,
	}
}

// GET 注册 GET 处理器
func GET[TReq any, TResp any](pr *PlayerRouter, path string, handler HandlerFunc[TReq, TResp]) {
	RegisterHandler(pr, http.MethodGet, path, handler)
}

// POST 注册 POST 处理器
func POST[TReq any, TResp any](pr *PlayerRouter, path string, handler HandlerFunc[TReq, TResp]) {
	RegisterHandler(pr, http.MethodPost, path, handler)
}

// PUT 注册 PUT 处理器
func PUT[TReq any, TResp any](pr *PlayerRouter, path string, handler HandlerFunc[TReq, TResp]) {
	RegisterHandler(pr, http.MethodPut, path, handler)
}

// RegisterHandler 注册带 playerID 参数的处理器
func RegisterHandler[TReq any, TResp any](pr *PlayerRouter, method, path string, handler HandlerFunc[TReq, TResp]) {
	pr.group.Handle(method, path, func(c *gin.Context) {
		// 1. 从认证信息提取 playerID
		playerID := middleware.GetPlayerID(c)
		if playerID == "" {
			web.Error(c, errors.CodeUnAuthorized, "missing player identity")
			return
		}
		sentry.SetPlayer(c.Request.Context(), playerID)

		// 2. 绑定并校验请求
		req := new(TReq)
		if err := bind(c, req); err != nil {
			web.Error(c, errors.CodeInvalidParams, err.Error())
			return
		}

		// 3. 调用业务 handler
		resp, err := handler(c.Request.Context(), playerID, req)
		if err != nil {
			WriteError(c, pr.logger, err)
			return
		}
		web.Success(c, resp)
	})
}

func bind(c *gin.Context, req any) error {
	if len(c.Params) > 0 {
		params := make(map[string][]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = []string{p.Value}
		}
		if err := binding.MapFormWithTag(req, params, "uri"); err != nil {
			return err
		}
	}
	if len(c.Request.URL.RawQuery) > 0 {
		if err := binding.MapFormWithTag(req, c.Request.URL.Query(), "form"); err != nil {
			return err
		}
	}
	if c.Request.Body != nil && c.Request.Method != http.MethodGet {
		if err := json.NewDecoder(c.Request.Body).Decode(req); err != nil && !stderrors.Is(err, io.EOF) {
			return err
		}
	}
	return binding.Validator.ValidateStruct(req)
}

// WriteError 玩法错误映射为业务码，基础设施错误统一隐藏为 50000
func WriteError(c *gin.Context, l logger.Logger, err error) {
	ge, ok := gameerr.As(err)
	if !ok {
		if stderrors.Is(err, manager.ErrLockTimeout) {
			web.Error(c, errors.CodeUnavailable, "player is busy, retry later")
			return
		}
		l.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		sentry.CaptureError(c.Request.Context(), err)
		web.Error(c, errors.CodeInternalError, "internal server error")
		return
	}

	switch ge.Kind {
	case gameerr.KindValidation:
		web.Error(c, errors.CodeInvalidParams, ge.Error())
	case gameerr.KindNotFound:
		web.Error(c, errors.CodeNotFound, ge.Error())
	case gameerr.KindInsufficientResource:
		web.ErrorWithData(c, errors.CodeInsufficientResource, ge.Error(), gin.H{
			"resource":  ge.Resource,
			"required":  ge.Required,
			"available": ge.Available,
		})
	case gameerr.KindStateConflict:
		web.Error(c, errors.CodeStateConflict, ge.Error())
	case gameerr.KindStillInProgress:
		web.ErrorWithData(c, errors.CodeStillInProgress, ge.Message, gin.H{
			"remainingSeconds": ge.RemainingSeconds,
		})
	default:
		web.Error(c, errors.CodeInternalError, "internal server error")
	}
}
