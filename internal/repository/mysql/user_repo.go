package mysql

import (
	"context"

	"gorm.io/gorm"

	"mycoseed/internal/model"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	return translate(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetUsers 批量查询，不存在的 id 直接忽略
func (r *UserRepository) GetUsers(ctx context.Context, ids []string) (map[string]model.User, error) {
	out := make(map[string]model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []model.User
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	for _, u := range list {
		out[u.ID] = u
	}
	return out, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.updateColumn(ctx, id, "password", hash)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id, avatar string) error {
	return r.updateColumn(ctx, id, "avatar", avatar)
}

func (r *UserRepository) updateColumn(ctx context.Context, id, column string, value any) error {
	return translate(r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update(column, value).Error)
}
