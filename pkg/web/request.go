package web

import (
	stderrors "errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/lk2023060901/creatorsim/pkg/web/errors"
)

// BindAndValidate 绑定 JSON/表单参数并校验，失败时直接写出 40001 响应
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			Error(c, errors.CodeInvalidParams, verrs.Error())
			return false
		}
		Error(c, errors.CodeInvalidParams, "invalid request parameters: "+err.Error())
		return false
	}
	return true
}

// QueryInt 读取整型查询参数，缺省或非法时返回 def 与是否合法
func QueryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, false
	}
	return v, true
}
