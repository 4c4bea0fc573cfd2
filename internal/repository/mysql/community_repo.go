package mysql

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func (r *CommunityRepository) CreateCommunity(ctx context.Context, c *model.Community) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *CommunityRepository) GetCommunity(ctx context.Context, id string) (*model.Community, error) {
	var c model.Community
	if err := r.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CommunityRepository) GetCommunityBySlug(ctx context.Context, slug string) (*model.Community, error) {
	var c model.Community
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// LockCommunity SELECT ... FOR UPDATE，需在事务内调用
func (r *CommunityRepository) LockCommunity(ctx context.Context, id string) (*model.Community, error) {
	var c model.Community
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CommunityRepository) UpdateCommunity(ctx context.Context, id string, patch repository.CommunityPatch) error {
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.MarkdownIntro != nil {
		updates["markdown_intro"] = *patch.MarkdownIntro
	}
	if patch.IsPublic != nil {
		updates["is_public"] = *patch.IsPublic
	}
	if patch.PointName != nil {
		updates["point_name"] = *patch.PointName
	}
	if len(updates) == 0 {
		return nil
	}
	return translate(r.DB.WithContext(ctx).Model(&model.Community{}).Where("id = ?", id).Updates(updates).Error)
}

func (r *CommunityRepository) SetSuperAdmin(ctx context.Context, communityID, userID string) error {
	return translate(r.DB.WithContext(ctx).Model(&model.Community{}).
		Where("id = ?", communityID).
		Update("super_admin_id", userID).Error)
}

func (r *CommunityRepository) ListCommunities(ctx context.Context, f repository.CommunityFilter) ([]model.Community, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return []model.Community{}, nil
	}

	q := r.DB.WithContext(ctx).Model(&model.Community{})
	if f.PublicOnly {
		q = q.Where("is_public = ?", true)
	}
	if f.IDs != nil {
		q = q.Where("id IN ?", f.IDs)
	}
	if kw := strings.TrimSpace(f.Query); kw != "" {
		like := "%" + escapeLike(kw) + "%"
		q = q.Where("(name LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!')", like, like)
	}

	var list []model.Community
	err := q.Order("name").Order("id").Find(&list).Error
	return list, translate(err)
}

func (r *CommunityRepository) CountMembers(ctx context.Context, communityIDs ...string) (map[string]int64, error) {
	out := make(map[string]int64, len(communityIDs))
	if len(communityIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		CommunityID string
		N           int64
	}
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Select("community_id, COUNT(*) AS n").
		Where("community_id IN ?", communityIDs).
		Group("community_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CommunityID] = row.N
	}
	return out, nil
}

// likeEscaper 使用 '!' 作为 LIKE 转义符，MySQL 与 SQLite 行为一致
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
