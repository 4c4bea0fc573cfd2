// Package repository defines the persistence contract shared by the MySQL
// store and the in-memory store used in tests.
package repository

import (
	"context"
	"errors"

	"mycoseed/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrProtectedMember 总管理员的成员记录不能直接删除，只能先转让
	ErrProtectedMember = errors.New("super admin membership is protected")
)

// CommunityFilter 社区列表过滤条件；IDs 非 nil 时只在这些社区中查找
type CommunityFilter struct {
	PublicOnly bool
	IDs        []string
	Query      string
}

// CommunityPatch 只更新非 nil 字段
type CommunityPatch struct {
	Name          *string
	Description   *string
	MarkdownIntro *string
	IsPublic      *bool
	PointName     *string
}

func (p CommunityPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.MarkdownIntro == nil &&
		p.IsPublic == nil && p.PointName == nil
}

type AnnouncementPatch struct {
	Title    *string
	Content  *string
	IsPinned *bool
}

func (p AnnouncementPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.IsPinned == nil
}

type CommunityRepo interface {
	CreateCommunity(ctx context.Context, c *model.Community) error
	GetCommunity(ctx context.Context, id string) (*model.Community, error)
	GetCommunityBySlug(ctx context.Context, slug string) (*model.Community, error)
	// LockCommunity 读取社区并在事务内加行锁
	LockCommunity(ctx context.Context, id string) (*model.Community, error)
	UpdateCommunity(ctx context.Context, id string, patch CommunityPatch) error
	SetSuperAdmin(ctx context.Context, communityID, userID string) error
	ListCommunities(ctx context.Context, filter CommunityFilter) ([]model.Community, error)
	CountMembers(ctx context.Context, communityIDs ...string) (map[string]int64, error)
}

type MemberRepo interface {
	GetMember(ctx context.Context, communityID, userID string) (*model.CommunityMember, error)
	CreateMember(ctx context.Context, m *model.CommunityMember) error
	UpdateMemberRole(ctx context.Context, communityID, userID string, role model.Role) error
	// DeleteMember 不删除 super_admin 行：记录存在但为总管理员时返回 ErrProtectedMember
	DeleteMember(ctx context.Context, communityID, userID string) error
	ListMembers(ctx context.Context, communityID string) ([]model.CommunityMember, error)
	ListUserCommunityIDs(ctx context.Context, userID string) ([]string, error)
}

type JoinRequestRepo interface {
	FindJoinRequest(ctx context.Context, communityID, userID string) (*model.JoinRequest, error)
	// GetPendingJoinRequest 只返回仍处于 pending 的申请
	GetPendingJoinRequest(ctx context.Context, communityID, requestID string) (*model.JoinRequest, error)
	CreateJoinRequest(ctx context.Context, r *model.JoinRequest) error
	// SaveJoinRequestStatus 条件更新：仅当库中状态仍为 from 时写入 r 的状态与审批字段
	SaveJoinRequestStatus(ctx context.Context, r *model.JoinRequest, from model.JoinRequestStatus) error
	ListJoinRequests(ctx context.Context, communityID string, status model.JoinRequestStatus) ([]model.JoinRequest, error)
}

type SystemAdminRepo interface {
	IsSystemAdmin(ctx context.Context, userID string) (bool, error)
	CountSystemAdmins(ctx context.Context) (int64, error)
	CreateSystemAdmin(ctx context.Context, a *model.SystemAdmin) error
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUsers(ctx context.Context, ids []string) (map[string]model.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateAvatar(ctx context.Context, id, avatar string) error
}

type AnnouncementRepo interface {
	CreateAnnouncement(ctx context.Context, a *model.Announcement) error
	GetAnnouncement(ctx context.Context, communityID, id string) (*model.Announcement, error)
	UpdateAnnouncement(ctx context.Context, communityID, id string, patch AnnouncementPatch) error
	DeleteAnnouncement(ctx context.Context, communityID, id string) error
	ListAnnouncements(ctx context.Context, communityID string) ([]model.Announcement, error)
}

type PostRepo interface {
	CreatePost(ctx context.Context, p *model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, communityID string, offset, limit int) ([]model.Post, int64, error)
	SetPostPinned(ctx context.Context, id string, pinned bool) error

	CreateComment(ctx context.Context, c *model.PostComment) error
	GetComment(ctx context.Context, id string) (*model.PostComment, error)
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, postID string) ([]model.PostComment, error)
	CountComments(ctx context.Context, postIDs ...string) (map[string]int64, error)

	FindLike(ctx context.Context, postID, userID string) (*model.PostLike, error)
	CreateLike(ctx context.Context, l *model.PostLike) error
	DeleteLike(ctx context.Context, postID, userID string) error
	ListLikes(ctx context.Context, postID string) ([]model.PostLike, error)
	CountLikes(ctx context.Context, postIDs ...string) (map[string]int64, error)
	LikedPostIDs(ctx context.Context, userID string, postIDs ...string) (map[string]bool, error)
}

// Store 服务层依赖的完整数据访问契约
type Store interface {
	CommunityRepo
	MemberRepo
	JoinRequestRepo
	SystemAdminRepo
	UserRepo
	AnnouncementRepo
	PostRepo

	// Transaction 在单个事务中执行 fn，fn 返回错误时全部回滚
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
