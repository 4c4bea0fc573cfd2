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

// AnnouncementService 公告：管理员写，成员读
type AnnouncementService struct {
	store repository.Store
	authz *Authorizer
}

func NewAnnouncementService(store repository.Store) *AnnouncementService {
	return &AnnouncementService{store: store, authz: NewAuthorizer(store)}
}

type AnnouncementInput struct {
	Title    string
	Content  string
	IsPinned bool
}

func (s *AnnouncementService) List(ctx context.Context, communityID, userID string) ([]model.Announcement, error) {
	if _, err := getCommunity(ctx, s.store, communityID); err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	list, err := s.store.ListAnnouncements(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return list, nil
}

func (s *AnnouncementService) Create(ctx context.Context, communityID, userID string, in AnnouncementInput) (*model.Announcement, error) {
	if err := s.requireAdmin(ctx, communityID, userID); err != nil {
		return nil, err
	}
	title, err := checkTitle(in.Title)
	if err != nil {
		return nil, err
	}

	a := &model.Announcement{
		CommunityID: communityID,
		AuthorID:    userID,
		Title:       title,
		Content:     strings.TrimSpace(in.Content),
		IsPinned:    in.IsPinned,
	}
	if err := s.store.CreateAnnouncement(ctx, a); err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}
	logger.Infow("announcement created", "announcement_id", a.ID, "community_id", communityID, "by", userID)
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, communityID, id, userID string, patch repository.AnnouncementPatch) (*model.Announcement, error) {
	if err := s.requireAdmin(ctx, communityID, userID); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, invalid("没有需要更新的字段")
	}
	if patch.Title != nil {
		title, err := checkTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		patch.Content = &content
	}

	if _, err := s.get(ctx, communityID, id); err != nil {
		return nil, err
	}
	if err := s.store.UpdateAnnouncement(ctx, communityID, id, patch); err != nil {
		return nil, fmt.Errorf("update announcement: %w", err)
	}
	return s.get(ctx, communityID, id)
}

func (s *AnnouncementService) Delete(ctx context.Context, communityID, id, userID string) error {
	if err := s.requireAdmin(ctx, communityID, userID); err != nil {
		return err
	}
	err := s.store.DeleteAnnouncement(ctx, communityID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAnnouncementNotFound
	}
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return nil
}

func (s *AnnouncementService) requireAdmin(ctx context.Context, communityID, userID string) error {
	if _, err := getCommunity(ctx, s.store, communityID); err != nil {
		return err
	}
	_, err := s.authz.RequireAdmin(ctx, communityID, userID)
	return err
}

func (s *AnnouncementService) get(ctx context.Context, communityID, id string) (*model.Announcement, error) {
	a, err := s.store.GetAnnouncement(ctx, communityID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAnnouncementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return a, nil
}

func checkTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("公告标题不能为空")
	}
	if utf8.RuneCountInString(title) > model.MaxAnnouncementTitle {
		return "", invalid(fmt.Sprintf("公告标题不能超过%d字", model.MaxAnnouncementTitle))
	}
	return title, nil
}
