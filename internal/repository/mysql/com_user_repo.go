package mysql

import (
	"context"

	"gorm.io/gorm"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

func (r *CommunityMemberRepository) GetMember(ctx context.Context, communityID, userID string) (*model.CommunityMember, error) {
	var m model.CommunityMember
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// CreateMember (community_id, user_id) 已存在时返回 repository.ErrDuplicate
func (r *CommunityMemberRepository) CreateMember(ctx context.Context, m *model.CommunityMember) error {
	return translate(r.DB.WithContext(ctx).Create(m).Error)
}

func (r *CommunityMemberRepository) UpdateMemberRole(ctx context.Context, communityID, userID string, role model.Role) error {
	return translate(r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Update("role", role).Error)
}

// DeleteMember 条件删除，super_admin 行不受影响
func (r *CommunityMemberRepository) DeleteMember(ctx context.Context, communityID, userID string) error {
	tx := r.DB.WithContext(ctx).
		Where("community_id = ? AND user_id = ? AND role <> ?", communityID, userID, model.RoleSuperAdmin).
		Delete(&model.CommunityMember{})
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected > 0 {
		return nil
	}
	if _, err := r.GetMember(ctx, communityID, userID); err != nil {
		return err
	}
	return repository.ErrProtectedMember
}

func (r *CommunityMemberRepository) ListMembers(ctx context.Context, communityID string) ([]model.CommunityMember, error) {
	var list []model.CommunityMember
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("joined_at ASC").Order("id").
		Find(&list).Error
	return list, translate(err)
}

func (r *CommunityMemberRepository) ListUserCommunityIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("user_id = ?", userID).
		Pluck("community_id", &ids).Error
	return ids, translate(err)
}
