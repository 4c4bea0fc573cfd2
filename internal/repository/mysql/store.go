package mysql

import (
	"context"

	"gorm.io/gorm"

	"mycoseed/internal/repository"
)

// Store 基于 gorm 的 repository.Store 实现
type Store struct {
	*CommunityRepository
	*CommunityMemberRepository
	*JoinRequestRepository
	*SystemAdminRepository
	*UserRepository
	*AnnouncementRepository
	*PostRepository
	*CommentRepository
	*PostLikeRepository

	db *gorm.DB
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{
		CommunityRepository:       &CommunityRepository{DB: db},
		CommunityMemberRepository: &CommunityMemberRepository{DB: db},
		JoinRequestRepository:     &JoinRequestRepository{DB: db},
		SystemAdminRepository:     &SystemAdminRepository{DB: db},
		UserRepository:            &UserRepository{DB: db},
		AnnouncementRepository:    &AnnouncementRepository{DB: db},
		PostRepository:            &PostRepository{DB: db},
		CommentRepository:         &CommentRepository{DB: db},
		PostLikeRepository:        &PostLikeRepository{DB: db},
		db:                        db,
	}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
