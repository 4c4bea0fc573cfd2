package service

import (
	"context"
	"errors"
	"fmt"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

// RoleReader 鉴权只读依赖，事务内传入 tx 即可读到未提交的数据
type RoleReader interface {
	GetMember(ctx context.Context, communityID, userID string) (*model.CommunityMember, error)
	IsSystemAdmin(ctx context.Context, userID string) (bool, error)
}

// Authorizer 解析调用者在社区内的角色，不做任何写操作
type Authorizer struct {
	r RoleReader
}

func NewAuthorizer(r RoleReader) *Authorizer {
	return &Authorizer{r: r}
}

// With 返回绑定到 r（通常是事务）的 Authorizer
func (a *Authorizer) With(r RoleReader) *Authorizer {
	return &Authorizer{r: r}
}

// ResolveRole 非成员返回 RoleNone；只有存储故障才返回错误
func (a *Authorizer) ResolveRole(ctx context.Context, communityID, userID string) (model.Role, error) {
	if userID == "" {
		return model.RoleNone, nil
	}
	m, err := a.r.GetMember(ctx, communityID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.RoleNone, nil
	}
	if err != nil {
		return model.RoleNone, fmt.Errorf("resolve role: %w", err)
	}
	return m.Role, nil
}

func (a *Authorizer) IsAdmin(ctx context.Context, communityID, userID string) (bool, error) {
	role, err := a.ResolveRole(ctx, communityID, userID)
	return role.IsAdmin(), err
}

func (a *Authorizer) IsSuperAdmin(ctx context.Context, communityID, userID string) (bool, error) {
	role, err := a.ResolveRole(ctx, communityID, userID)
	return role.IsSuperAdmin(), err
}

func (a *Authorizer) IsSystemAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	ok, err := a.r.IsSystemAdmin(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check system admin: %w", err)
	}
	return ok, nil
}

// require 未登录返回 ErrNotAuthenticated，角色不足返回 msg 对应的 ErrForbidden
func (a *Authorizer) require(ctx context.Context, communityID, userID string, ok func(model.Role) bool, msg string) (model.Role, error) {
	if userID == "" {
		return model.RoleNone, ErrNotAuthenticated
	}
	role, err := a.ResolveRole(ctx, communityID, userID)
	if err != nil {
		return model.RoleNone, err
	}
	if !ok(role) {
		return role, forbidden(msg)
	}
	return role, nil
}

func (a *Authorizer) RequireMember(ctx context.Context, communityID, userID string) (model.Role, error) {
	return a.require(ctx, communityID, userID, model.Role.IsMember, "仅成员可操作")
}

func (a *Authorizer) RequireAdmin(ctx context.Context, communityID, userID string) (model.Role, error) {
	return a.require(ctx, communityID, userID, model.Role.IsAdmin, "需要管理员权限")
}

func (a *Authorizer) RequireSuperAdmin(ctx context.Context, communityID, userID string) (model.Role, error) {
	return a.require(ctx, communityID, userID, model.Role.IsSuperAdmin, "需要总管理员权限")
}

func (a *Authorizer) RequireSystemAdmin(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	ok, err := a.IsSystemAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return forbidden("需要系统管理员权限")
	}
	return nil
}

// RequireSuperAdminOrSystemAdmin 社区设置类操作：总管理员，或无社区角色的系统管理员
func (a *Authorizer) RequireSuperAdminOrSystemAdmin(ctx context.Context, communityID, userID string) (model.Role, error) {
	if userID == "" {
		return model.RoleNone, ErrNotAuthenticated
	}
	role, err := a.ResolveRole(ctx, communityID, userID)
	if err != nil {
		return model.RoleNone, err
	}
	if role.IsSuperAdmin() {
		return role, nil
	}
	sys, err := a.IsSystemAdmin(ctx, userID)
	if err != nil {
		return role, err
	}
	if !sys {
		return role, forbidden("需要总管理员或系统管理员权限")
	}
	return role, nil
}

// CanView 公开社区任何人可见，私有社区仅成员可见
func (a *Authorizer) CanView(ctx context.Context, c *model.Community, userID string) (model.Role, error) {
	role, err := a.ResolveRole(ctx, c.ID, userID)
	if err != nil {
		return model.RoleNone, err
	}
	if !c.IsPublic && !role.IsMember() {
		if userID == "" {
			return role, ErrNotAuthenticated
		}
		return role, forbidden("无权查看")
	}
	return role, nil
}
