package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mycoseed/internal/middleware"
	"mycoseed/internal/pkg/logger"
	"mycoseed/internal/service"
)

// writeError 按错误类别映射状态码，未归类的错误记日志并返回 500
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidArgument):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Errorw("unexpected error", "path", c.FullPath(), "user_id", middleware.UserID(c), "err", err)
		c.JSON(status, gin.H{"msg": "服务器内部错误"})
		return
	}
	c.JSON(status, gin.H{"msg": service.Message(err)})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}
