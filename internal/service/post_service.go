package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mycoseed/internal/model"
	"mycoseed/internal/pkg/logger"
	"mycoseed/internal/repository"
)

type PostService struct {
	store repository.Store
	authz *Authorizer
}

func NewPostService(store repository.Store) *PostService {
	return &PostService{store: store, authz: NewAuthorizer(store)}
}

type CreatePostInput struct {
	// ID 可由客户端预先生成（上传图片时要用到），必须是 UUID
	ID      string
	Content string
	Images  []string
}

// CreatePost 仅成员可发布动态
func (s *PostService) CreatePost(ctx context.Context, communityID, userID string, in CreatePostInput) (*model.PostView, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if _, err := getCommunity(ctx, s.store, communityID); err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, invalid("动态内容不能为空")
	}
	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	if len(images) > model.MaxPostImages {
		return nil, invalid(fmt.Sprintf("最多只能上传%d张图片", model.MaxPostImages))
	}
	if in.ID != "" {
		if _, err := uuid.Parse(in.ID); err != nil {
			return nil, invalid("postId 格式错误")
		}
	}

	p := &model.Post{ID: in.ID, CommunityID: communityID, AuthorID: userID, Content: content, Images: images}
	if err := s.store.CreatePost(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPostExists
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	logger.Infow("post created", "post_id", p.ID, "community_id", communityID, "author_id", userID)

	views, err := s.decorate(ctx, userID, []model.Post{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListPosts 公开社区或成员可见；置顶优先，其次最新
func (s *PostService) ListPosts(ctx context.Context, communityID, viewerID string, page, limit int) (*model.PostPage, error) {
	c, err := getCommunity(ctx, s.store, communityID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.CanView(ctx, c, viewerID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = model.DefaultPostLimit
	case limit > model.MaxPostLimit:
		limit = model.MaxPostLimit
	}
	offset := (page - 1) * limit

	posts, total, err := s.store.ListPosts(ctx, communityID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	views, err := s.decorate(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}
	return &model.PostPage{
		Posts:   views,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: int64(offset+len(posts)) < total,
	}, nil
}

func (s *PostService) GetPost(ctx context.Context, postID, viewerID string) (*model.PostView, error) {
	p, _, err := s.visiblePost(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, viewerID, []model.Post{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeletePost 作者或社区管理员可删除，评论与点赞一并删除
func (s *PostService) DeletePost(ctx context.Context, postID, callerID string) error {
	if callerID == "" {
		return ErrNotAuthenticated
	}
	p, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if p.AuthorID != callerID {
		ok, err := s.authz.IsAdmin(ctx, p.CommunityID, callerID)
		if err != nil {
			return err
		}
		if !ok {
			return forbidden("无权删除此动态")
		}
	}

	err = s.store.DeletePost(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	logger.Infow("post deleted", "post_id", postID, "community_id", p.CommunityID, "by", callerID)
	return nil
}

func (s *PostService) PinPost(ctx context.Context, postID, callerID string) error {
	return s.setPinned(ctx, postID, callerID, true)
}

func (s *PostService) UnpinPost(ctx context.Context, postID, callerID string) error {
	return s.setPinned(ctx, postID, callerID, false)
}

func (s *PostService) setPinned(ctx context.Context, postID, callerID string, pinned bool) error {
	p, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if _, err := s.authz.RequireAdmin(ctx, p.CommunityID, callerID); err != nil {
		return err
	}
	if err := s.store.SetPostPinned(ctx, postID, pinned); err != nil {
		return fmt.Errorf("pin post: %w", err)
	}
	return nil
}

func (s *PostService) getPost(ctx context.Context, postID string) (*model.Post, error) {
	p, err := s.store.GetPost(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// visiblePost 读取动态并校验所属社区对 viewer 可见
func (s *PostService) visiblePost(ctx context.Context, postID, viewerID string) (*model.Post, model.Role, error) {
	p, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, model.RoleNone, err
	}
	c, err := getCommunity(ctx, s.store, p.CommunityID)
	if err != nil {
		return nil, model.RoleNone, err
	}
	role, err := s.authz.CanView(ctx, c, viewerID)
	if err != nil {
		return nil, model.RoleNone, err
	}
	return p, role, nil
}

// decorate 补齐作者、点赞数、评论数与当前用户是否已点赞
func (s *PostService) decorate(ctx context.Context, viewerID string, posts []model.Post) ([]model.PostView, error) {
	ids := make([]string, len(posts))
	authors := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		authors[i] = p.AuthorID
	}

	users, err := loadUsers(ctx, s.store, authors...)
	if err != nil {
		return nil, err
	}
	likes, err := s.store.CountLikes(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	comments, err := s.store.CountComments(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	liked := map[string]bool{}
	if viewerID != "" {
		if liked, err = s.store.LikedPostIDs(ctx, viewerID, ids...); err != nil {
			return nil, fmt.Errorf("load liked posts: %w", err)
		}
	}

	out := make([]model.PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, model.PostView{
			Post:          p,
			Author:        brief(users, p.AuthorID),
			LikesCount:    likes[p.ID],
			CommentsCount: comments[p.ID],
			IsLiked:       liked[p.ID],
		})
	}
	return out, nil
}
