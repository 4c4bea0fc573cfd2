package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mycoseed/internal/middleware"
	"mycoseed/internal/service"
)

type PostLikeHandler struct {
	svc *service.PostService
}

func NewPostLikeHandler(svc *service.PostService) *PostLikeHandler {
	return &PostLikeHandler{svc: svc}
}

// Toggle 点赞/取消点赞
func (h *PostLikeHandler) Toggle(c *gin.Context) {
	liked, count, err := h.svc.ToggleLike(c.Request.Context(), c.Param("postId"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "likesCount": count})
}

func (h *PostLikeHandler) List(c *gin.Context) {
	list, err := h.svc.ListLikes(c.Request.Context(), c.Param("postId"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
