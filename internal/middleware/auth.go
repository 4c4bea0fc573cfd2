package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mycoseed/internal/pkg/logger"
	"mycoseed/internal/service"
)

const ContextUserIDKey = "user_id"

// Authenticator 校验 access token 并返回用户 id
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

// AuthMiddleware 必须携带有效 Bearer token，且与 redis 中保存的一致
func AuthMiddleware(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearer(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}

		userID, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": service.Message(err)})
				return
			}
			logger.Errorw("authenticate failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "服务器内部错误"})
			return
		}

		// 注入 user_id
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth 有合法 token 时注入 user_id，否则按匿名访问继续
func OptionalAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, err := bearer(header)
		if err == nil {
			if userID, err := a.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(ContextUserIDKey, userID)
			}
		}
		c.Next()
	}
}

// UserID 未登录时返回空串
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

func bearer(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization format")
	}
	return strings.TrimSpace(token), nil
}
