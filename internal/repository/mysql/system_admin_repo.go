package mysql

import (
	"context"

	"gorm.io/gorm"

	"mycoseed/internal/model"
)

type SystemAdminRepository struct {
	DB *gorm.DB
}

func (r *SystemAdminRepository) IsSystemAdmin(ctx context.Context, userID string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.SystemAdmin{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n > 0, translate(err)
}

func (r *SystemAdminRepository) CountSystemAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.SystemAdmin{}).Count(&n).Error
	return n, translate(err)
}

func (r *SystemAdminRepository) CreateSystemAdmin(ctx context.Context, a *model.SystemAdmin) error {
	return translate(r.DB.WithContext(ctx).Create(a).Error)
}
