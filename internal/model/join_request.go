package model

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JoinRequestStatus 入社申请状态
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

var ErrInvalidTransition = errors.New("invalid join request transition")

// approved -> pending 只在用户退出或被移除后重新申请时出现
var joinRequestTransitions = map[JoinRequestStatus][]JoinRequestStatus{
	JoinRequestPending:  {JoinRequestApproved, JoinRequestRejected},
	JoinRequestRejected: {JoinRequestPending},
	JoinRequestApproved: {JoinRequestPending},
}

func (s JoinRequestStatus) CanTransition(to JoinRequestStatus) bool {
	return slices.Contains(joinRequestTransitions[s], to)
}

// JoinRequest 私有社区的入社申请，(community_id, user_id) 唯一
type JoinRequest struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	CommunityID string            `gorm:"size:36;not null;uniqueIndex:uk_join_request_community_user;index:idx_join_request_status,priority:1" json:"communityId"`
	UserID      string            `gorm:"size:36;not null;uniqueIndex:uk_join_request_community_user" json:"userId"`
	Status      JoinRequestStatus `gorm:"size:16;not null;index:idx_join_request_status,priority:2" json:"status"`
	ReviewerID  string            `gorm:"size:36" json:"reviewerId,omitempty"`
	ReviewedAt  *time.Time        `json:"reviewedAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (r *JoinRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r *JoinRequest) Approve(reviewerID string, at time.Time) error {
	return r.resolve(JoinRequestApproved, reviewerID, at)
}

func (r *JoinRequest) Reject(reviewerID string, at time.Time) error {
	return r.resolve(JoinRequestRejected, reviewerID, at)
}

// Resubmit 把已拒绝（或已通过但用户已不在社区）的申请重新置为 pending
func (r *JoinRequest) Resubmit() error {
	if !r.Status.CanTransition(JoinRequestPending) {
		return ErrInvalidTransition
	}
	r.Status = JoinRequestPending
	r.ReviewerID = ""
	r.ReviewedAt = nil
	return nil
}

func (r *JoinRequest) resolve(to JoinRequestStatus, reviewerID string, at time.Time) error {
	if !r.Status.CanTransition(to) {
		return ErrInvalidTransition
	}
	r.Status = to
	r.ReviewerID = reviewerID
	r.ReviewedAt = &at
	return nil
}
