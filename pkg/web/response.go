package web

import (
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/creatorsim/pkg/web/errors"
	"github.com/lk2023060901/creatorsim/pkg/web/middleware"
)

// Response 统一响应结构
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	RequestID string `json:"requestId,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(errors.CodeToStatus(errors.CodeOK), Response{
		Code:      errors.CodeOK,
		Message:   "ok",
		Data:      data,
		RequestID: middleware.GetRequestID(c),
	})
}

// Error 错误响应，HTTP 状态由业务码推导
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData 携带附加数据的错误响应
func ErrorWithData(c *gin.Context, code int, message string, data any) {
	c.AbortWithStatusJSON(errors.CodeToStatus(code), Response{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
	})
}
