package mysql

import (
	"context"

	"gorm.io/gorm"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

type AnnouncementRepository struct {
	DB *gorm.DB
}

func (r *AnnouncementRepository) CreateAnnouncement(ctx context.Context, a *model.Announcement) error {
	return translate(r.DB.WithContext(ctx).Create(a).Error)
}

func (r *AnnouncementRepository) GetAnnouncement(ctx context.Context, communityID, id string) (*model.Announcement, error) {
	var a model.Announcement
	err := r.DB.WithContext(ctx).
		Where("id = ? AND community_id = ?", id, communityID).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AnnouncementRepository) UpdateAnnouncement(ctx context.Context, communityID, id string, patch repository.AnnouncementPatch) error {
	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.IsPinned != nil {
		updates["is_pinned"] = *patch.IsPinned
	}
	if len(updates) == 0 {
		return nil
	}
	return translate(r.DB.WithContext(ctx).Model(&model.Announcement{}).
		Where("id = ? AND community_id = ?", id, communityID).
		Updates(updates).Error)
}

func (r *AnnouncementRepository) DeleteAnnouncement(ctx context.Context, communityID, id string) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND community_id = ?", id, communityID).
		Delete(&model.Announcement{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListAnnouncements 置顶优先，其次最新
func (r *AnnouncementRepository) ListAnnouncements(ctx context.Context, communityID string) ([]model.Announcement, error) {
	list := []model.Announcement{}
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("is_pinned DESC, created_at DESC").
		Find(&list).Error
	return list, translate(err)
}
