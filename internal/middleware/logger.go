package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ZapLogger logs one line per request. /api/* goes out at info, the rest
// (health probes, swagger assets) at debug. Server errors are logged at error.
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"status", status,
			"latency", time.Since(start).String(),
			"clientIP", c.ClientIP(),
		}
		if uid := c.GetString(UserIDKey); uid != "" {
			fields = append(fields, "user_id", uid)
		}

		switch {
		case status >= 500:
			log.Sugar().Errorw("HTTP", fields...)
		case strings.HasPrefix(path, "/api/"):
			log.Sugar().Infow("HTTP", fields...)
		default:
			log.Sugar().Debugw("HTTP", fields...)
		}
	}
}
