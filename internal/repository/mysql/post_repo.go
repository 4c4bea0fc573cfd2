package mysql

import (
	"context"

	"gorm.io/gorm"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) CreatePost(ctx context.Context, p *model.Post) error {
	return translate(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *PostRepository) GetPost(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// DeletePost 硬删除帖子，连同点赞与评论
func (r *PostRepository) DeletePost(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostComment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Post{})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

// ListPosts 置顶优先，其次按创建时间倒序；(community_id, is_pinned, created_at) 有联合索引
func (r *PostRepository) ListPosts(ctx context.Context, communityID string, offset, limit int) ([]model.Post, int64, error) {
	// Session 让 q 可以在 Count 之后继续复用
	q := r.DB.WithContext(ctx).Model(&model.Post{}).Where("community_id = ?", communityID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	list := []model.Post{}
	err := q.Order("is_pinned DESC, created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, total, translate(err)
}

func (r *PostRepository) SetPostPinned(ctx context.Context, id string, pinned bool) error {
	return translate(r.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Update("is_pinned", pinned).Error)
}
