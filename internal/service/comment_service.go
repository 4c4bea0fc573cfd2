package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

func (s *PostService) ListComments(ctx context.Context, postID, viewerID string) ([]model.CommentView, error) {
	if _, _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	list, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	ids := make([]string, 0, len(list)*2)
	for _, c := range list {
		ids = append(ids, c.AuthorID, c.ReplyToUserID)
	}
	users, err := loadUsers(ctx, s.store, ids...)
	if err != nil {
		return nil, err
	}

	out := make([]model.CommentView, 0, len(list))
	for _, c := range list {
		out = append(out, commentView(c, users))
	}
	return out, nil
}

// CreateComment 成员可评论，内容不超过 500 字；replyToUserID 为空表示直接评论动态
func (s *PostService) CreateComment(ctx context.Context, postID, userID, content, replyToUserID string) (*model.CommentView, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("评论内容不能为空")
	}
	if utf8.RuneCountInString(content) > model.MaxCommentRunes {
		return nil, invalid(fmt.Sprintf("评论内容不能超过%d字", model.MaxCommentRunes))
	}

	p, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireMember(ctx, p.CommunityID, userID); err != nil {
		return nil, err
	}
	if replyToUserID != "" {
		if _, err := s.store.GetUser(ctx, replyToUserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalid("被回复用户不存在")
			}
			return nil, fmt.Errorf("get reply target: %w", err)
		}
	}

	c := &model.PostComment{PostID: postID, AuthorID: userID, Content: content, ReplyToUserID: replyToUserID}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	users, err := loadUsers(ctx, s.store, userID, replyToUserID)
	if err != nil {
		return nil, err
	}
	v := commentView(*c, users)
	return &v, nil
}

// DeleteComment 评论作者或社区管理员可删除
func (s *PostService) DeleteComment(ctx context.Context, commentID, callerID string) error {
	if callerID == "" {
		return ErrNotAuthenticated
	}
	c, err := s.store.GetComment(ctx, commentID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("get comment: %w", err)
	}

	if c.AuthorID != callerID {
		p, err := s.getPost(ctx, c.PostID)
		if err != nil {
			return err
		}
		ok, err := s.authz.IsAdmin(ctx, p.CommunityID, callerID)
		if err != nil {
			return err
		}
		if !ok {
			return forbidden("无权删除此评论")
		}
	}

	err = s.store.DeleteComment(ctx, commentID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func commentView(c model.PostComment, users map[string]model.User) model.CommentView {
	v := model.CommentView{PostComment: c, Author: brief(users, c.AuthorID)}
	if c.ReplyToUserID != "" {
		v.ReplyTo = brief(users, c.ReplyToUserID)
	}
	return v
}
