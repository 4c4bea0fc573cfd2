package service

import (
	"context"
	"errors"
	"fmt"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

type communityGetter interface {
	GetCommunity(ctx context.Context, id string) (*model.Community, error)
}

func getCommunity(ctx context.Context, r communityGetter, id string) (*model.Community, error) {
	c, err := r.GetCommunity(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCommunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get community %s: %w", id, err)
	}
	return c, nil
}

type communityLocker interface {
	LockCommunity(ctx context.Context, id string) (*model.Community, error)
}

// lockCommunity 在事务内锁住社区行，与 TransferSuperAdmin 串行化所有成员角色变更
func lockCommunity(ctx context.Context, r communityLocker, id string) (*model.Community, error) {
	c, err := r.LockCommunity(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCommunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock community %s: %w", id, err)
	}
	return c, nil
}

type userLoader interface {
	GetUsers(ctx context.Context, ids []string) (map[string]model.User, error)
}

// loadUsers 批量加载用户，ids 可重复、可为空串
func loadUsers(ctx context.Context, r userLoader, ids ...string) (map[string]model.User, error) {
	seen := make(map[string]struct{}, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	users, err := r.GetUsers(ctx, uniq)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

func brief(users map[string]model.User, id string) *model.UserBrief {
	if u, ok := users[id]; ok {
		return u.Brief()
	}
	return nil
}
