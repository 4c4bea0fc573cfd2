package mysql

import (
	"context"

	"gorm.io/gorm"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

// PostLikeRepository 点赞记录，(post_id, user_id) 唯一
type PostLikeRepository struct {
	DB *gorm.DB
}

func (r *PostLikeRepository) FindLike(ctx context.Context, postID, userID string) (*model.PostLike, error) {
	var pl model.PostLike
	err := r.DB.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&pl).Error
	if err != nil {
		return nil, translate(err)
	}
	return &pl, nil
}

func (r *PostLikeRepository) CreateLike(ctx context.Context, l *model.PostLike) error {
	return translate(r.DB.WithContext(ctx).Create(l).Error)
}

func (r *PostLikeRepository) DeleteLike(ctx context.Context, postID, userID string) error {
	res := r.DB.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.PostLike{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostLikeRepository) ListLikes(ctx context.Context, postID string) ([]model.PostLike, error) {
	list := []model.PostLike{}
	err := r.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").Order("id").
		Find(&list).Error
	return list, translate(err)
}

func (r *PostLikeRepository) CountLikes(ctx context.Context, postIDs ...string) (map[string]int64, error) {
	return countByPost(ctx, r.DB, &model.PostLike{}, postIDs)
}

func (r *PostLikeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs ...string) (map[string]bool, error) {
	out := make(map[string]bool, len(postIDs))
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
