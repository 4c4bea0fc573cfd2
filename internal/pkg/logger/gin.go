package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// GinLogger 记录每个请求的方法、路径、状态码与耗时
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		kv := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		if uid, ok := c.Get("user_id"); ok {
			kv = append(kv, "user_id", uid)
		}
		if len(c.Errors) > 0 {
			Errorw("request failed", append(kv, "error", c.Errors.String())...)
			return
		}
		Infow("request", kv...)
	}
}

// GinRecovery 捕获 panic 并返回 500
func GinRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		Errorw("panic recovered", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(500, gin.H{"msg": "服务器内部错误"})
	})
}
