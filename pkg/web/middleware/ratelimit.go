package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/lk2023060901/creatorsim/pkg/cache/lru"
	"github.com/lk2023060901/creatorsim/pkg/logger"
	weberrors "github.com/lk2023060901/creatorsim/pkg/web/errors"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// Enabled 是否启用
	Enabled bool `mapstructure:"enabled"`
	// RequestsPerSecond 每个键每秒请求数
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	// Burst 突发容量
	Burst int `mapstructure:"burst"`
	// MaxKeys 同时跟踪的键数量上限
	MaxKeys int `mapstructure:"max_keys"`
	// KeyTTL 空闲键过期时间
	KeyTTL time.Duration `mapstructure:"key_ttl"`
}

// DefaultRateLimitConfig 默认限流配置
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 20,
		Burst:             40,
		MaxKeys:           10000,
		KeyTTL:            10 * time.Minute,
	}
}

// RateLimiter 按键（玩家或 IP）限流
type RateLimiter struct {
	cfg      RateLimitConfig
	limiters *lru.LRU[string, *rate.Limiter]
	logger   logger.Logger
}

// NewRateLimiter 创建限流器
func NewRateLimiter(cfg *RateLimitConfig, l logger.Logger) *RateLimiter {
	if cfg == nil {
		cfg = DefaultRateLimitConfig()
	}
	return &RateLimiter{
		cfg: *cfg,
		limiters: lru.New[string, *rate.Limiter](&lru.Config{
			MaxSize:         cfg.MaxKeys,
			DefaultTTL:      cfg.KeyTTL,
			CleanupInterval: cfg.KeyTTL,
		}),
		logger: l,
	}
}

// Allow 检查 key 是否还有令牌
func (rl *RateLimiter) Allow(key string) bool {
	limiter := rl.limiters.GetOrCreate(key, func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
	})
	return limiter.Allow()
}

// Close 停止后台清理
func (rl *RateLimiter) Close() error {
	return rl.limiters.Close()
}

// RateLimit 限流中间件，已认证请求按玩家限流，其余按客户端 IP
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.cfg.Enabled {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if pid := GetPlayerID(c); pid != "" {
			key = "player:" + pid
		}

		if !rl.Allow(key) {
			rl.logger.WarnContext(c.Request.Context(), "rate limit exceeded", "key", key, "path", c.Request.URL.Path)
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":      weberrors.CodeRateLimited,
				"message":   "too many requests",
				"data":      nil,
				"requestId": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}
