package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mycoseed/internal/middleware"
	"mycoseed/internal/model"
	"mycoseed/internal/repository"
	"mycoseed/internal/service"
)

type CommunityHandler struct {
	communities *service.CommunityService
	joins       *service.JoinService
	members     *service.MemberService
}

type CommunityCreateReq struct {
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	MarkdownIntro string `json:"markdownIntro"`
	IsPublic      *bool  `json:"isPublic"`
	PointName     string `json:"pointName"`
	SuperAdminID  string `json:"superAdminId"`
}

type CommunityUpdateReq struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	MarkdownIntro *string `json:"markdownIntro"`
	IsPublic      *bool   `json:"isPublic"`
	PointName     *string `json:"pointName"`
}

type JoinReq struct {
	Slug string `json:"slug"`
}

type JoinByInviteReq struct {
	Slug string `json:"slug" binding:"required"`
}

type AddMemberReq struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role"`
}

type PatchMemberReq struct {
	Action string `json:"action" binding:"required"`
	Role   string `json:"role"`
}

type TransferReq struct {
	TargetUserID string `json:"targetUserId" binding:"required"`
	DemoteTo     string `json:"demoteTo"`
}

type SystemAdminReq struct {
	UserID string `json:"userId" binding:"required"`
}

func NewCommunityHandler(communities *service.CommunityService, joins *service.JoinService, members *service.MemberService) *CommunityHandler {
	return &CommunityHandler{communities: communities, joins: joins, members: members}
}

// List ?mine=true 返回自己加入的社区，q 按名称/简介过滤
func (h *CommunityHandler) List(c *gin.Context) {
	list, err := h.communities.ListCommunities(c.Request.Context(), middleware.UserID(c), c.Query("mine") == "true", c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	view, err := h.communities.CreateCommunity(c.Request.Context(), middleware.UserID(c), service.CreateCommunityInput{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		MarkdownIntro: req.MarkdownIntro,
		IsPublic:      req.IsPublic,
		PointName:     req.PointName,
		SuperAdminID:  req.SuperAdminID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Get 私有社区可通过 ?slug= 预览
func (h *CommunityHandler) Get(c *gin.Context) {
	view, err := h.communities.GetCommunity(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Query("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CommunityHandler) Update(c *gin.Context) {
	var req CommunityUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	view, err := h.communities.UpdateCommunity(c.Request.Context(), middleware.UserID(c), c.Param("id"), repository.CommunityPatch{
		Name:          req.Name,
		Description:   req.Description,
		MarkdownIntro: req.MarkdownIntro,
		IsPublic:      req.IsPublic,
		PointName:     req.PointName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CommunityHandler) Join(c *gin.Context) {
	var req JoinReq
	// body 可为空
	_ = c.ShouldBindJSON(&req)

	outcome, err := h.joins.Join(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Slug)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": outcome})
}

func (h *CommunityHandler) JoinByInvite(c *gin.Context) {
	var req JoinByInviteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	outcome, community, err := h.joins.JoinByInviteSlug(c.Request.Context(), req.Slug, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": outcome, "communityId": community.ID, "name": community.Name})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	if err := h.joins.Leave(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) ListMembers(c *gin.Context) {
	list, err := h.communities.ListMembers(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) AddMember(c *gin.Context) {
	var req AddMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	role, err := h.members.AddMember(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.UserID, model.Role(req.Role))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"userId": req.UserID, "role": role})
}

// PatchMember action: remove | set_role
func (h *CommunityHandler) PatchMember(c *gin.Context) {
	var req PatchMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	err := h.members.PatchMember(c.Request.Context(), c.Param("id"), middleware.UserID(c), c.Param("userId"),
		service.MemberAction{Action: req.Action, Role: req.Role})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) TransferSuperAdmin(c *gin.Context) {
	var req TransferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	err := h.members.TransferSuperAdmin(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.TargetUserID, model.Role(req.DemoteTo))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) ListJoinRequests(c *gin.Context) {
	list, err := h.joins.ListJoinRequests(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) ApproveJoinRequest(c *gin.Context) {
	if err := h.joins.Approve(c.Request.Context(), c.Param("id"), c.Param("requestId"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) RejectJoinRequest(c *gin.Context) {
	if err := h.joins.Reject(c.Request.Context(), c.Param("id"), c.Param("requestId"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) AddSystemAdmin(c *gin.Context) {
	var req SystemAdminReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := h.communities.AddSystemAdmin(c.Request.Context(), middleware.UserID(c), req.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "ok"})
}
