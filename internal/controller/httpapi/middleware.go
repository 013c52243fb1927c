package httpapi

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/slotswap/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if v, ok := c.Get(identityKey); ok {
			fields = append(fields, zap.String("user_id", v.(Identity).UserID))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("HTTP request", fields...)
			return
		}
		logger.Info("HTTP request", fields...)
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Panic in HTTP handler",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "Internal"})
	})
}

// rateLimit ограничивает запросы по id пользователя. При недоступном лимитере запрос пропускается.
func rateLimit(limiter ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := currentUser(c).UserID

		dec, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("Rate limiter unavailable, allowing request", zap.String("user_id", key), zap.Error(err))
			c.Next()
			return
		}
		if !dec.Allowed {
			if dec.RetryAfter > 0 {
				secs := int(math.Ceil(dec.RetryAfter.Seconds()))
				c.Header("Retry-After", strconv.Itoa(secs))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded", "code": "RateLimited"})
			return
		}
		c.Next()
	}
}
