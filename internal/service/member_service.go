package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mycoseed/internal/model"
	"mycoseed/internal/pkg/logger"
	"mycoseed/internal/repository"
)

// MemberAction 管理员对单个成员的操作
type MemberAction struct {
	Action string // remove | set_role
	Role   string
}

const (
	ActionRemove  = "remove"
	ActionSetRole = "set_role"
)

type MemberService struct {
	store repository.Store
	authz *Authorizer
	now   func() time.Time
}

func NewMemberService(store repository.Store) *MemberService {
	return &MemberService{store: store, authz: NewAuthorizer(store), now: time.Now}
}

// AddMember 管理员直接添加成员；只有总管理员能直接授予 sub_admin，否则降为 member。
// 目标用户若有待审批申请，一并置为 approved。
func (s *MemberService) AddMember(ctx context.Context, communityID, callerID, targetUserID string, requested model.Role) (model.Role, error) {
	if targetUserID == "" {
		return model.RoleNone, invalid("userId required")
	}
	switch requested {
	case model.RoleNone:
		requested = model.RoleMember
	case model.RoleSuperAdmin:
		return model.RoleNone, ErrCannotGrantSuperAdmin
	case model.RoleMember, model.RoleSubAdmin:
	default:
		return model.RoleNone, ErrInvalidRole
	}

	var granted model.Role
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := lockCommunity(ctx, tx, communityID); err != nil {
			return err
		}
		authz := s.authz.With(tx)
		callerRole, err := authz.RequireAdmin(ctx, communityID, callerID)
		if err != nil {
			return err
		}
		if _, err := tx.GetUser(ctx, targetUserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("get user: %w", err)
		}
		targetRole, err := authz.ResolveRole(ctx, communityID, targetUserID)
		if err != nil {
			return err
		}
		if targetRole.IsMember() {
			return ErrAlreadyMember
		}

		granted = model.RoleMember
		if requested == model.RoleSubAdmin && callerRole.IsSuperAdmin() {
			granted = model.RoleSubAdmin
		}
		err = tx.CreateMember(ctx, &model.CommunityMember{CommunityID: communityID, UserID: targetUserID, Role: granted})
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyMember
		}
		if err != nil {
			return fmt.Errorf("create membership: %w", err)
		}

		jr, err := tx.FindJoinRequest(ctx, communityID, targetUserID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find join request: %w", err)
		}
		if jr.Status != model.JoinRequestPending {
			return nil
		}
		if err := jr.Approve(callerID, s.now()); err != nil {
			return err
		}
		if err := tx.SaveJoinRequestStatus(ctx, jr, model.JoinRequestPending); err != nil {
			return fmt.Errorf("approve pending request: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.RoleNone, err
	}
	logger.Infow("member added", "community_id", communityID, "user_id", targetUserID, "role", granted, "by", callerID)
	return granted, nil
}

// ChangeMemberRole 仅总管理员可在 member 与 sub_admin 之间调整；总管理员本身只能通过转让变更
func (s *MemberService) ChangeMemberRole(ctx context.Context, communityID, callerID, targetUserID string, newRole model.Role) error {
	switch newRole {
	case model.RoleMember, model.RoleSubAdmin:
	case model.RoleSuperAdmin:
		return ErrCannotGrantSuperAdmin
	default:
		return ErrInvalidRole
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := lockCommunity(ctx, tx, communityID); err != nil {
			return err
		}
		authz := s.authz.With(tx)
		if _, err := authz.RequireSuperAdmin(ctx, communityID, callerID); err != nil {
			return err
		}
		if targetUserID == callerID {
			return ErrCannotTargetSelf
		}
		targetRole, err := authz.ResolveRole(ctx, communityID, targetUserID)
		if err != nil {
			return err
		}
		switch {
		case !targetRole.IsMember():
			return ErrMemberNotFound
		case targetRole.IsSuperAdmin():
			return ErrCannotTargetSuperAdmin
		case targetRole == newRole:
			return nil
		}
		if err := tx.UpdateMemberRole(ctx, communityID, targetUserID, newRole); err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infow("member role changed", "community_id", communityID, "user_id", targetUserID, "role", newRole, "by", callerID)
	return nil
}

// RemoveMember 两级管理员都能移除普通成员，只有总管理员能移除分管理员
func (s *MemberService) RemoveMember(ctx context.Context, communityID, callerID, targetUserID string) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := lockCommunity(ctx, tx, communityID); err != nil {
			return err
		}
		authz := s.authz.With(tx)
		callerRole, err := authz.RequireAdmin(ctx, communityID, callerID)
		if err != nil {
			return err
		}
		if targetUserID == callerID {
			return ErrCannotTargetSelf
		}
		targetRole, err := authz.ResolveRole(ctx, communityID, targetUserID)
		if err != nil {
			return err
		}
		switch {
		case !targetRole.IsMember():
			return ErrMemberNotFound
		case targetRole.IsSuperAdmin():
			return ErrCannotTargetSuperAdmin
		case targetRole == model.RoleSubAdmin && !callerRole.IsSuperAdmin():
			return forbidden("仅总管理员可移除分管理员")
		}

		err = tx.DeleteMember(ctx, communityID, targetUserID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		if errors.Is(err, repository.ErrProtectedMember) {
			return ErrCannotTargetSuperAdmin
		}
		if err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infow("member removed", "community_id", communityID, "user_id", targetUserID, "by", callerID)
	return nil
}

// PatchMember 单一入口分发 remove / set_role
func (s *MemberService) PatchMember(ctx context.Context, communityID, callerID, targetUserID string, action MemberAction) error {
	switch action.Action {
	case ActionRemove:
		return s.RemoveMember(ctx, communityID, callerID, targetUserID)
	case ActionSetRole:
		role, err := model.ParseRole(action.Role)
		if err != nil {
			return ErrInvalidRole
		}
		return s.ChangeMemberRole(ctx, communityID, callerID, targetUserID, role)
	}
	return invalid("无效操作")
}

// TransferSuperAdmin 三步写入在同一事务内完成，任一步失败全部回滚：
// 社区 super_admin_id 指向目标、目标升为 super_admin、调用者降为 demoteTo（缺省 member）。
func (s *MemberService) TransferSuperAdmin(ctx context.Context, communityID, callerID, targetUserID string, demoteTo model.Role) error {
	if targetUserID == "" {
		return invalid("targetUserId required")
	}
	switch demoteTo {
	case model.RoleNone:
		demoteTo = model.RoleMember
	case model.RoleMember, model.RoleSubAdmin:
	default:
		return ErrInvalidRole
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := lockCommunity(ctx, tx, communityID); err != nil {
			return err
		}
		authz := s.authz.With(tx)
		if _, err := authz.RequireSuperAdmin(ctx, communityID, callerID); err != nil {
			return err
		}
		if targetUserID == callerID {
			return ErrCannotTargetSelf
		}
		targetRole, err := authz.ResolveRole(ctx, communityID, targetUserID)
		if err != nil {
			return err
		}
		if !targetRole.IsMember() {
			return ErrTargetNotMember
		}

		if err := tx.SetSuperAdmin(ctx, communityID, targetUserID); err != nil {
			return fmt.Errorf("set super admin: %w", err)
		}
		if err := tx.UpdateMemberRole(ctx, communityID, targetUserID, model.RoleSuperAdmin); err != nil {
			return fmt.Errorf("promote target: %w", err)
		}
		if err := tx.UpdateMemberRole(ctx, communityID, callerID, demoteTo); err != nil {
			return fmt.Errorf("demote caller: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infow("super admin transferred", "community_id", communityID, "from", callerID, "to", targetUserID, "demote_to", demoteTo)
	return nil
}
