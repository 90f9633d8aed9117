package sentry

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/creatorsim/pkg/web/middleware"
)

// Middleware 每个请求克隆独立 Hub 并挂到 request context 上
// panic 上报后重新抛出，由外层 Recovery 写响应
func Middleware(c *Client) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil || c.closed.Load() {
			ctx.Next()
			return
		}

		hub := c.hub.Clone()
		hub.Scope().SetRequest(ctx.Request)
		if rid := middleware.GetRequestID(ctx); rid != "" {
			hub.Scope().SetTag("request_id", rid)
		}
		reqCtx := sentry.SetHubOnContext(ctx.Request.Context(), hub)
		ctx.Request = ctx.Request.WithContext(reqCtx)

		defer func() {
			if r := recover(); r != nil {
				c.RecoverPanic(reqCtx, r)
				panic(r)
			}
		}()
		ctx.Next()
	}
}

// SetPlayer 在当前请求的 Hub 上记录玩家
func SetPlayer(ctx context.Context, playerID string) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.Scope().SetUser(sentry.User{ID: playerID})
	}
}

// CaptureError 使用请求上下文中的 Hub 上报，未挂载 Hub 时忽略
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
	}
}
