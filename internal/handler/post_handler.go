package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mycoseed/internal/middleware"
	"mycoseed/internal/model"
	"mycoseed/internal/service"
)

type PostHandler struct {
	svc *service.PostService
}

type CreatePostReq struct {
	PostID  string   `json:"postId"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

type CreateCommentReq struct {
	Content       string `json:"content"`
	ReplyToUserID string `json:"replyToUserId"`
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// CreatePost 创建动态接口
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), c.Param("id"), middleware.UserID(c), service.CreatePostInput{
		ID:      req.PostID,
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// ListByCommunity 页码分页，置顶优先
func (h *PostHandler) ListByCommunity(c *gin.Context) {
	page, err := h.svc.ListPosts(c.Request.Context(), c.Param("id"), middleware.UserID(c),
		queryInt(c, "page", 1), queryInt(c, "limit", model.DefaultPostLimit))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.svc.GetPost(c.Request.Context(), c.Param("postId"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost 删除动态接口
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.svc.DeletePost(c.Request.Context(), c.Param("postId"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

func (h *PostHandler) Pin(c *gin.Context) {
	if err := h.svc.PinPost(c.Request.Context(), c.Param("postId"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *PostHandler) Unpin(c *gin.Context) {
	if err := h.svc.UnpinPost(c.Request.Context(), c.Param("postId"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *PostHandler) ListComments(c *gin.Context) {
	list, err := h.svc.ListComments(c.Request.Context(), c.Param("postId"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *PostHandler) CreateComment(c *gin.Context) {
	var req CreateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	comment, err := h.svc.CreateComment(c.Request.Context(), c.Param("postId"), middleware.UserID(c), req.Content, req.ReplyToUserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	if err := h.svc.DeleteComment(c.Request.Context(), c.Param("commentId"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}
