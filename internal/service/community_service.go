package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"mycoseed/internal/model"
	"mycoseed/internal/pkg/logger"
	"mycoseed/internal/repository"
)

const maxSlugLen = 64

type CommunityService struct {
	store repository.Store
	authz *Authorizer
}

func NewCommunityService(store repository.Store) *CommunityService {
	return &CommunityService{store: store, authz: NewAuthorizer(store)}
}

type CreateCommunityInput struct {
	Name          string
	Slug          string
	Description   string
	MarkdownIntro string
	IsPublic      *bool // 缺省为公开
	PointName     string
	// SuperAdminID 为空时由创建者担任总管理员
	SuperAdminID string
}

// CreateCommunity 仅系统管理员可创建；社区与总管理员成员关系在同一事务内写入
func (s *CommunityService) CreateCommunity(ctx context.Context, callerID string, in CreateCommunityInput) (*model.CommunityView, error) {
	if err := s.authz.RequireSystemAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	slug := model.NormalizeSlug(in.Slug)
	if name == "" || slug == "" {
		return nil, invalid("name and slug required")
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return nil, invalid("slug 过长")
	}

	ownerID := strings.TrimSpace(in.SuperAdminID)
	if ownerID == "" {
		ownerID = callerID
	}
	c := &model.Community{
		Name:          name,
		Slug:          slug,
		Description:   in.Description,
		MarkdownIntro: in.MarkdownIntro,
		IsPublic:      in.IsPublic == nil || *in.IsPublic,
		SuperAdminID:  ownerID,
		PointName:     strings.TrimSpace(in.PointName),
	}
	if c.PointName == "" {
		c.PointName = model.DefaultPointName
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.GetUser(ctx, ownerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("get owner: %w", err)
		}

		_, err := tx.GetCommunityBySlug(ctx, slug)
		switch {
		case err == nil:
			return ErrSlugTaken
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("check slug: %w", err)
		}

		if err := tx.CreateCommunity(ctx, c); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrSlugTaken
			}
			return fmt.Errorf("create community: %w", err)
		}
		if err := tx.CreateMember(ctx, &model.CommunityMember{
			CommunityID: c.ID,
			UserID:      ownerID,
			Role:        model.RoleSuperAdmin,
		}); err != nil {
			return fmt.Errorf("create super admin membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("community created", "community_id", c.ID, "slug", c.Slug, "super_admin_id", ownerID, "by", callerID)

	view := &model.CommunityView{Community: *c, MemberCount: 1}
	if callerID == ownerID {
		view.MyRole = model.RoleSuperAdmin
	}
	return view, nil
}

// UpdateCommunity 总管理员或系统管理员可修改；空 patch 直接返回当前数据
func (s *CommunityService) UpdateCommunity(ctx context.Context, callerID, communityID string, patch repository.CommunityPatch) (*model.CommunityView, error) {
	if _, err := getCommunity(ctx, s.store, communityID); err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireSuperAdminOrSystemAdmin(ctx, communityID, callerID); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, invalid("社区名称不能为空")
		}
		patch.Name = &name
	}
	if patch.PointName != nil {
		pn := strings.TrimSpace(*patch.PointName)
		if pn == "" {
			return nil, invalid("积分名称不能为空")
		}
		patch.PointName = &pn
	}

	if !patch.Empty() {
		if err := s.store.UpdateCommunity(ctx, communityID, patch); err != nil {
			return nil, fmt.Errorf("update community: %w", err)
		}
		logger.Infow("community updated", "community_id", communityID, "by", callerID)
	}
	return s.view(ctx, communityID, callerID)
}

// GetCommunity 公开社区、成员、或携带正确 slug 的访问者可见
func (s *CommunityService) GetCommunity(ctx context.Context, viewerID, communityID, slug string) (*model.CommunityView, error) {
	c, err := getCommunity(ctx, s.store, communityID)
	if err != nil {
		return nil, err
	}
	role, err := s.authz.ResolveRole(ctx, communityID, viewerID)
	if err != nil {
		return nil, err
	}
	slugMatch := slug != "" && model.NormalizeSlug(slug) == c.Slug
	if !c.IsPublic && !role.IsMember() && !slugMatch {
		return nil, forbidden("无权查看")
	}
	return s.withCount(ctx, c, role)
}

func (s *CommunityService) view(ctx context.Context, communityID, viewerID string) (*model.CommunityView, error) {
	c, err := getCommunity(ctx, s.store, communityID)
	if err != nil {
		return nil, err
	}
	role, err := s.authz.ResolveRole(ctx, communityID, viewerID)
	if err != nil {
		return nil, err
	}
	return s.withCount(ctx, c, role)
}

func (s *CommunityService) withCount(ctx context.Context, c *model.Community, role model.Role) (*model.CommunityView, error) {
	counts, err := s.store.CountMembers(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	return &model.CommunityView{Community: *c, MemberCount: counts[c.ID], MyRole: role}, nil
}

// ListCommunities mine=true 时列出自己加入的社区（需登录），否则列出公开社区
func (s *CommunityService) ListCommunities(ctx context.Context, viewerID string, mine bool, q string) ([]model.CommunityView, error) {
	filter := repository.CommunityFilter{PublicOnly: true, Query: q}
	if mine {
		if viewerID == "" {
			return nil, ErrNotAuthenticated
		}
		ids, err := s.store.ListUserCommunityIDs(ctx, viewerID)
		if err != nil {
			return nil, fmt.Errorf("list user communities: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		filter = repository.CommunityFilter{IDs: ids, Query: q}
	}

	list, err := s.store.ListCommunities(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	counts, err := s.store.CountMembers(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}

	out := make([]model.CommunityView, 0, len(list))
	for _, c := range list {
		out = append(out, model.CommunityView{Community: c, MemberCount: counts[c.ID]})
	}
	return out, nil
}

// ListMembers 仅成员可见，按加入时间排序
func (s *CommunityService) ListMembers(ctx context.Context, callerID, communityID string) ([]model.MemberView, error) {
	if _, err := getCommunity(ctx, s.store, communityID); err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireMember(ctx, communityID, callerID); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	users, err := loadUsers(ctx, s.store, ids...)
	if err != nil {
		return nil, err
	}

	out := make([]model.MemberView, 0, len(members))
	for _, m := range members {
		u := users[m.UserID]
		out = append(out, model.MemberView{
			UserID:   m.UserID,
			Name:     u.Name,
			Avatar:   u.Avatar,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return out, nil
}

// AddSystemAdmin 由现有系统管理员授予
func (s *CommunityService) AddSystemAdmin(ctx context.Context, callerID, userID string) error {
	if err := s.authz.RequireSystemAdmin(ctx, callerID); err != nil {
		return err
	}
	return s.GrantSystemAdmin(ctx, userID)
}

// GrantSystemAdmin 不校验调用者，供 grant-admin 命令初始化使用
func (s *CommunityService) GrantSystemAdmin(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("userId required")
	}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("get user: %w", err)
		}
		ok, err := tx.IsSystemAdmin(ctx, userID)
		if err != nil {
			return fmt.Errorf("check system admin: %w", err)
		}
		if ok {
			return ErrAlreadySystemAdmin
		}
		n, err := tx.CountSystemAdmins(ctx)
		if err != nil {
			return fmt.Errorf("count system admins: %w", err)
		}
		if n >= model.MaxSystemAdmins {
			return ErrSystemAdminLimit
		}
		if err := tx.CreateSystemAdmin(ctx, &model.SystemAdmin{UserID: userID}); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadySystemAdmin
			}
			return fmt.Errorf("create system admin: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infow("system admin granted", "user_id", userID)
	return nil
}
