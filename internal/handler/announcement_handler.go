package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mycoseed/internal/middleware"
	"mycoseed/internal/repository"
	"mycoseed/internal/service"
)

type AnnouncementHandler struct {
	svc *service.AnnouncementService
}

type AnnouncementCreateReq struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsPinned bool   `json:"isPinned"`
}

type AnnouncementUpdateReq struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsPinned *bool   `json:"isPinned"`
}

func NewAnnouncementHandler(svc *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{svc: svc}
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req AnnouncementCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	a, err := h.svc.Create(c.Request.Context(), c.Param("id"), middleware.UserID(c), service.AnnouncementInput{
		Title:    req.Title,
		Content:  req.Content,
		IsPinned: req.IsPinned,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req AnnouncementUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	a, err := h.svc.Update(c.Request.Context(), c.Param("id"), c.Param("aid"), middleware.UserID(c), repository.AnnouncementPatch{
		Title:    req.Title,
		Content:  req.Content,
		IsPinned: req.IsPinned,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), c.Param("aid"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}
