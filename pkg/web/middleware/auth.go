package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/security"
	weberrors "github.com/lk2023060901/creatorsim/pkg/web/errors"
)

const (
	// ClaimsKey Context 中存储 Claims 的 key
	ClaimsKey = "jwt_claims"
	// PlayerIDKey Context 中存储玩家 ID 的 key
	PlayerIDKey = "player_id"
)

// Auth JWT 认证中间件，Subject 即玩家 ID
func Auth(jm *security.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, jm.GetConfig())
		if token == "" {
			abortUnauthorized(c, security.ErrTokenMissing.Error())
			return
		}

		claims, err := jm.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(PlayerIDKey, claims.Subject)
		c.Request = c.Request.WithContext(logger.WithPlayerID(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

func extractToken(c *gin.Context, cfg *security.JWTConfig) string {
	header := strings.TrimSpace(c.GetHeader(cfg.HeaderName))
	if cfg.TokenPrefix != "" && !strings.HasPrefix(header, cfg.TokenPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, cfg.TokenPrefix)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":      weberrors.CodeUnAuthorized,
		"message":   msg,
		"data":      nil,
		"requestId": GetRequestID(c),
	})
}

// RequireRole 要求已认证且持有角色 role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abortUnauthorized(c, "unauthorized")
			return
		}
		if !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":      weberrors.CodeForbidden,
				"message":   "forbidden: role " + role + " required",
				"data":      nil,
				"requestId": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

// GetClaims 从 Context 获取 Claims
func GetClaims(c *gin.Context) (*security.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.Claims)
	return claims, ok
}

// GetPlayerID 当前认证玩家 ID，未认证时为空
func GetPlayerID(c *gin.Context) string {
	return c.GetString(PlayerIDKey)
}
