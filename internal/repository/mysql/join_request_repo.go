package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

type JoinRequestRepository struct {
	DB *gorm.DB
}

func (r *JoinRequestRepository) FindJoinRequest(ctx context.Context, communityID, userID string) (*model.JoinRequest, error) {
	var jr model.JoinRequest
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&jr).Error
	if err != nil {
		return nil, translate(err)
	}
	return &jr, nil
}

func (r *JoinRequestRepository) GetPendingJoinRequest(ctx context.Context, communityID, requestID string) (*model.JoinRequest, error) {
	var jr model.JoinRequest
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND community_id = ? AND status = ?", requestID, communityID, model.JoinRequestPending).
		First(&jr).Error
	if err != nil {
		return nil, translate(err)
	}
	return &jr, nil
}

func (r *JoinRequestRepository) CreateJoinRequest(ctx context.Context, jr *model.JoinRequest) error {
	return translate(r.DB.WithContext(ctx).Create(jr).Error)
}

// SaveJoinRequestStatus 用 status = from 作为更新条件，并发审批时只有一方能成功
func (r *JoinRequestRepository) SaveJoinRequestStatus(ctx context.Context, jr *model.JoinRequest, from model.JoinRequestStatus) error {
	tx := r.DB.WithContext(ctx).Model(&model.JoinRequest{}).
		Where("id = ? AND status = ?", jr.ID, from).
		Updates(map[string]any{
			"status":      jr.Status,
			"reviewer_id": jr.ReviewerID,
			"reviewed_at": jr.ReviewedAt,
		})
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *JoinRequestRepository) ListJoinRequests(ctx context.Context, communityID string, status model.JoinRequestStatus) ([]model.JoinRequest, error) {
	var list []model.JoinRequest
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND status = ?", communityID, status).
		Order("created_at DESC").Order("id").
		Find(&list).Error
	return list, translate(err)
}
