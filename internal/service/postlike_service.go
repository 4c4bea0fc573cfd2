package service

import (
	"context"
	"errors"
	"fmt"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

// ToggleLike 已点赞则取消，否则点赞；返回操作后的状态与点赞总数
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (bool, int64, error) {
	if userID == "" {
		return false, 0, ErrNotAuthenticated
	}
	if _, _, err := s.visiblePost(ctx, postID, userID); err != nil {
		return false, 0, err
	}

	liked := false
	_, err := s.store.FindLike(ctx, postID, userID)
	switch {
	case err == nil:
		if err := s.store.DeleteLike(ctx, postID, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return false, 0, fmt.Errorf("unlike: %w", err)
		}
	case errors.Is(err, repository.ErrNotFound):
		liked = true
		if err := s.store.CreateLike(ctx, &model.PostLike{PostID: postID, UserID: userID}); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return false, 0, fmt.Errorf("like: %w", err)
		}
	default:
		return false, 0, fmt.Errorf("find like: %w", err)
	}

	counts, err := s.store.CountLikes(ctx, postID)
	if err != nil {
		return false, 0, fmt.Errorf("count likes: %w", err)
	}
	return liked, counts[postID], nil
}

func (s *PostService) ListLikes(ctx context.Context, postID, viewerID string) ([]model.LikeView, error) {
	if _, _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	likes, err := s.store.ListLikes(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	ids := make([]string, len(likes))
	for i, l := range likes {
		ids[i] = l.UserID
	}
	users, err := loadUsers(ctx, s.store, ids...)
	if err != nil {
		return nil, err
	}

	out := make([]model.LikeView, 0, len(likes))
	for _, l := range likes {
		out = append(out, model.LikeView{PostLike: l, User: brief(users, l.UserID)})
	}
	return out, nil
}
