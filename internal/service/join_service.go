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

// JoinOutcome 加入结果：公开社区直接成为成员，私有社区生成待审批申请
type JoinOutcome string

const (
	JoinJoined    JoinOutcome = "joined"
	JoinRequested JoinOutcome = "requested"
)

type JoinService struct {
	store repository.Store
	authz *Authorizer
	now   func() time.Time
}

func NewJoinService(store repository.Store) *JoinService {
	return &JoinService{store: store, authz: NewAuthorizer(store), now: time.Now}
}

// Join 通过社区 id 加入；私有社区需提供当前 slug 作为邀请码
func (s *JoinService) Join(ctx context.Context, communityID, userID, suppliedSlug string) (JoinOutcome, error) {
	if userID == "" {
		return "", ErrNotAuthenticated
	}
	c, err := getCommunity(ctx, s.store, communityID)
	if err != nil {
		return "", err
	}
	return s.enter(ctx, c, userID, func() error {
		if model.NormalizeSlug(suppliedSlug) != c.Slug {
			return ErrInvalidInviteCode
		}
		return nil
	})
}

// JoinByInviteSlug 邀请码入口：能按 slug 查到社区本身即视为持有邀请
func (s *JoinService) JoinByInviteSlug(ctx context.Context, slug, userID string) (JoinOutcome, *model.Community, error) {
	if userID == "" {
		return "", nil, ErrNotAuthenticated
	}
	norm := model.NormalizeSlug(slug)
	if norm == "" {
		return "", nil, invalid("slug required")
	}
	c, err := s.store.GetCommunityBySlug(ctx, norm)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInviteNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("get community by slug: %w", err)
	}
	outcome, err := s.enter(ctx, c, userID, nil)
	if err != nil {
		return "", nil, err
	}
	return outcome, c, nil
}

func (s *JoinService) enter(ctx context.Context, c *model.Community, userID string, checkInvite func() error) (JoinOutcome, error) {
	role, err := s.authz.ResolveRole(ctx, c.ID, userID)
	if err != nil {
		return "", err
	}
	if role.IsMember() {
		return "", ErrAlreadyMember
	}

	if c.IsPublic {
		err := s.store.CreateMember(ctx, &model.CommunityMember{
			CommunityID: c.ID,
			UserID:      userID,
			Role:        model.RoleMember,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrAlreadyMember
		}
		if err != nil {
			return "", fmt.Errorf("create membership: %w", err)
		}
		logger.Infow("member joined", "community_id", c.ID, "user_id", userID)
		return JoinJoined, nil
	}

	if checkInvite != nil {
		if err := checkInvite(); err != nil {
			return "", err
		}
	}
	if err := s.submitRequest(ctx, c.ID, userID); err != nil {
		return "", err
	}
	logger.Infow("join request submitted", "community_id", c.ID, "user_id", userID)
	return JoinRequested, nil
}

// submitRequest 首次申请插入；已拒绝或已通过（用户随后退出）的申请重新置为 pending
func (s *JoinService) submitRequest(ctx context.Context, communityID, userID string) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		existing, err := tx.FindJoinRequest(ctx, communityID, userID)
		if errors.Is(err, repository.ErrNotFound) {
			err = tx.CreateJoinRequest(ctx, &model.JoinRequest{
				CommunityID: communityID,
				UserID:      userID,
				Status:      model.JoinRequestPending,
			})
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrRequestPending
			}
			if err != nil {
				return fmt.Errorf("create join request: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("find join request: %w", err)
		}

		from := existing.Status
		if err := existing.Resubmit(); err != nil {
			return ErrRequestPending
		}
		err = tx.SaveJoinRequestStatus(ctx, existing, from)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestPending
		}
		if err != nil {
			return fmt.Errorf("resubmit join request: %w", err)
		}
		return nil
	})
}

// Leave 总管理员必须先转让才能退出；与转让共用社区行锁
func (s *JoinService) Leave(ctx context.Context, communityID, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		c, err := lockCommunity(ctx, tx, communityID)
		if err != nil {
			return err
		}
		role, err := s.authz.With(tx).ResolveRole(ctx, communityID, userID)
		if err != nil {
			return err
		}
		if !role.IsMember() {
			return ErrNotMember
		}
		if role.IsSuperAdmin() || c.SuperAdminID == userID {
			return ErrMustTransferFirst
		}

		err = tx.DeleteMember(ctx, communityID, userID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrNotMember
		case errors.Is(err, repository.ErrProtectedMember):
			return ErrMustTransferFirst
		case err != nil:
			return fmt.Errorf("delete membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infow("member left", "community_id", communityID, "user_id", userID)
	return nil
}

// ListJoinRequests 管理员查看待审批申请，最新的在前
func (s *JoinService) ListJoinRequests(ctx context.Context, communityID, callerID string) ([]model.JoinRequestView, error) {
	if _, err := getCommunity(ctx, s.store, communityID); err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireAdmin(ctx, communityID, callerID); err != nil {
		return nil, err
	}

	list, err := s.store.ListJoinRequests(ctx, communityID, model.JoinRequestPending)
	if err != nil {
		return nil, fmt.Errorf("list join requests: %w", err)
	}
	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.UserID
	}
	users, err := loadUsers(ctx, s.store, ids...)
	if err != nil {
		return nil, err
	}

	out := make([]model.JoinRequestView, 0, len(list))
	for _, r := range list {
		u := users[r.UserID]
		out = append(out, model.JoinRequestView{
			ID:        r.ID,
			UserID:    r.UserID,
			Name:      u.Name,
			Avatar:    u.Avatar,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// Approve 申请置为 approved 与创建成员关系在同一事务内完成
func (s *JoinService) Approve(ctx context.Context, communityID, requestID, callerID string) error {
	return s.resolve(ctx, communityID, requestID, callerID, model.JoinRequestApproved)
}

func (s *JoinService) Reject(ctx context.Context, communityID, requestID, callerID string) error {
	return s.resolve(ctx, communityID, requestID, callerID, model.JoinRequestRejected)
}

func (s *JoinService) resolve(ctx context.Context, communityID, requestID, callerID string, to model.JoinRequestStatus) error {
	var userID string
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := lockCommunity(ctx, tx, communityID); err != nil {
			return err
		}
		if _, err := s.authz.With(tx).RequireAdmin(ctx, communityID, callerID); err != nil {
			return err
		}

		jr, err := tx.GetPendingJoinRequest(ctx, communityID, requestID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("get join request: %w", err)
		}
		userID = jr.UserID

		if to == model.JoinRequestApproved {
			err = jr.Approve(callerID, s.now())
		} else {
			err = jr.Reject(callerID, s.now())
		}
		if err != nil {
			return ErrRequestNotFound
		}

		err = tx.SaveJoinRequestStatus(ctx, jr, model.JoinRequestPending)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("save join request: %w", err)
		}

		if to != model.JoinRequestApproved {
			return nil
		}
		err = tx.CreateMember(ctx, &model.CommunityMember{
			CommunityID: communityID,
			UserID:      jr.UserID,
			Role:        model.RoleMember,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyMember
		}
		if err != nil {
			return fmt.Errorf("create membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infow("join request resolved", "community_id", communityID, "request_id", requestID,
		"user_id", userID, "status", to, "reviewer_id", callerID)
	return nil
}
