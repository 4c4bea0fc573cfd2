package mysql

import (
	"context"

	"gorm.io/gorm"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

type CommentRepository struct {
	DB *gorm.DB
}

func (r *CommentRepository) CreateComment(ctx context.Context, c *model.PostComment) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *CommentRepository) GetComment(ctx context.Context, id string) (*model.PostComment, error) {
	var c model.PostComment
	if err := r.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CommentRepository) DeleteComment(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.PostComment{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListComments 按时间正序
func (r *CommentRepository) ListComments(ctx context.Context, postID string) ([]model.PostComment, error) {
	list := []model.PostComment{}
	err := r.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id").
		Find(&list).Error
	return list, translate(err)
}

func (r *CommentRepository) CountComments(ctx context.Context, postIDs ...string) (map[string]int64, error) {
	return countByPost(ctx, r.DB, &model.PostComment{}, postIDs)
}

func countByPost(ctx context.Context, db *gorm.DB, m any, postIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		PostID string
		N      int64
	}
	err := db.WithContext(ctx).Model(m).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, row := range rows {
		out[row.PostID] = row.N
	}
	return out, nil
}
