package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(Config{LogLevel: "silent"}))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return NewStore(db)
}

func TestClose(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(Config{LogLevel: "silent"}))
	require.NoError(t, err)
	require.NoError(t, Close(db))
	assert.Error(t, db.Exec("SELECT 1").Error)
}

func seedCommunity(t *testing.T, s *Store, slug string, public bool) *model.Community {
	t.Helper()
	c := &model.Community{Name: slug, Slug: slug, IsPublic: public, SuperAdminID: "owner", PointName: model.DefaultPointName}
	require.NoError(t, s.CreateCommunity(context.Background(), c))
	return c
}

func TestCommunityRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	pub := seedCommunity(t, s, "garden", true)
	priv := seedCommunity(t, s, "cellar", false)

	err := s.CreateCommunity(ctx, &model.Community{Name: "dup", Slug: "garden", PointName: "x"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := s.GetCommunityBySlug(ctx, "cellar")
	require.NoError(t, err)
	assert.Equal(t, priv.ID, got.ID)
	assert.False(t, got.IsPublic)

	_, err = s.GetCommunity(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	list, err := s.ListCommunities(ctx, repository.CommunityFilter{PublicOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pub.ID, list[0].ID)

	list, err = s.ListCommunities(ctx, repository.CommunityFilter{IDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = s.ListCommunities(ctx, repository.CommunityFilter{Query: "CELL"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, priv.ID, list[0].ID)

	name, public := "Cellar Club", true
	require.NoError(t, s.UpdateCommunity(ctx, priv.ID, repository.CommunityPatch{Name: &name, IsPublic: &public}))
	got, err = s.GetCommunity(ctx, priv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cellar Club", got.Name)
	assert.True(t, got.IsPublic)

	require.NoError(t, s.SetSuperAdmin(ctx, priv.ID, "u2"))
	got, err = s.LockCommunity(ctx, priv.ID)
	require.NoError(t, err)
	assert.Equal(t, "u2", got.SuperAdminID)
}

func TestListCommunitiesEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	underscore := seedCommunity(t, s, "spore_lab", true)
	seedCommunity(t, s, "sporexlab", true)
	bang := seedCommunity(t, s, "wow!", true)

	list, err := s.ListCommunities(ctx, repository.CommunityFilter{Query: "e_l"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, underscore.ID, list[0].ID)

	list, err = s.ListCommunities(ctx, repository.CommunityFilter{Query: "%"})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = s.ListCommunities(ctx, repository.CommunityFilter{Query: "w!"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, bang.ID, list[0].ID)
}

func TestMemberRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := seedCommunity(t, s, "garden", true)

	require.NoError(t, s.CreateMember(ctx, &model.CommunityMember{CommunityID: c.ID, UserID: "u1", Role: model.RoleSuperAdmin}))
	require.NoError(t, s.CreateMember(ctx, &model.CommunityMember{CommunityID: c.ID, UserID: "u2", Role: model.RoleMember}))

	err := s.CreateMember(ctx, &model.CommunityMember{CommunityID: c.ID, UserID: "u2", Role: model.RoleMember})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, s.UpdateMemberRole(ctx, c.ID, "u2", model.RoleSubAdmin))
	m, err := s.GetMember(ctx, c.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, model.RoleSubAdmin, m.Role)

	counts, err := s.CountMembers(ctx, c.ID, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[c.ID])
	assert.Zero(t, counts["other"])

	ids, err := s.ListUserCommunityIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, ids)

	require.NoError(t, s.DeleteMember(ctx, c.ID, "u2"))
	assert.ErrorIs(t, s.DeleteMember(ctx, c.ID, "u2"), repository.ErrNotFound)
	// 总管理员行不会被删除
	assert.ErrorIs(t, s.DeleteMember(ctx, c.ID, "u1"), repository.ErrProtectedMember)

	members, err := s.ListMembers(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "u1", members[0].UserID)
}

func TestJoinRequestConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := seedCommunity(t, s, "cellar", false)

	jr := &model.JoinRequest{CommunityID: c.ID, UserID: "u1", Status: model.JoinRequestPending}
	require.NoError(t, s.CreateJoinRequest(ctx, jr))
	assert.ErrorIs(t, s.CreateJoinRequest(ctx, &model.JoinRequest{CommunityID: c.ID, UserID: "u1", Status: model.JoinRequestPending}), repository.ErrDuplicate)

	pending, err := s.GetPendingJoinRequest(ctx, c.ID, jr.ID)
	require.NoError(t, err)
	require.NoError(t, pending.Approve("admin", time.Now()))
	require.NoError(t, s.SaveJoinRequestStatus(ctx, pending, model.JoinRequestPending))

	// 第二次以 pending 为前提的写入必须失败
	stale := *jr
	require.NoError(t, stale.Reject("admin2", time.Now()))
	assert.ErrorIs(t, s.SaveJoinRequestStatus(ctx, &stale, model.JoinRequestPending), repository.ErrNotFound)

	_, err = s.GetPendingJoinRequest(ctx, c.ID, jr.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := s.FindJoinRequest(ctx, c.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.JoinRequestApproved, got.Status)
	assert.Equal(t, "admin", got.ReviewerID)
	require.NotNil(t, got.ReviewedAt)

	require.NoError(t, got.Resubmit())
	require.NoError(t, s.SaveJoinRequestStatus(ctx, got, model.JoinRequestApproved))
	list, err := s.ListJoinRequests(ctx, c.ID, model.JoinRequestPending)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].ReviewerID)
	assert.Nil(t, list[0].ReviewedAt)
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := seedCommunity(t, s, "garden", true)
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.CreateMember(ctx, &model.CommunityMember{CommunityID: c.ID, UserID: "u1", Role: model.RoleMember}); err != nil {
			return err
		}
		if err := tx.SetSuperAdmin(ctx, c.ID, "u1"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetMember(ctx, c.ID, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	got, err := s.GetCommunity(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner", got.SuperAdminID)
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := seedCommunity(t, s, "garden", true)

	var posts []*model.Post
	for i := 0; i < 3; i++ {
		p := &model.Post{CommunityID: c.ID, AuthorID: "u1", Content: "hello", Images: []string{"a.png"}}
		require.NoError(t, s.CreatePost(ctx, p))
		posts = append(posts, p)
	}
	require.NoError(t, s.SetPostPinned(ctx, posts[0].ID, true))

	list, total, err := s.ListPosts(ctx, c.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, posts[0].ID, list[0].ID)
	assert.Equal(t, []string{"a.png"}, list[0].Images)

	cm := &model.PostComment{PostID: posts[0].ID, AuthorID: "u2", Content: "nice"}
	require.NoError(t, s.CreateComment(ctx, cm))
	require.NoError(t, s.CreateLike(ctx, &model.PostLike{PostID: posts[0].ID, UserID: "u2"}))
	assert.ErrorIs(t, s.CreateLike(ctx, &model.PostLike{PostID: posts[0].ID, UserID: "u2"}), repository.ErrDuplicate)

	likes, err := s.CountLikes(ctx, posts[0].ID, posts[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), likes[posts[0].ID])
	assert.Zero(t, likes[posts[1].ID])

	liked, err := s.LikedPostIDs(ctx, "u2", posts[0].ID, posts[1].ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{posts[0].ID: true}, liked)

	require.NoError(t, s.DeletePost(ctx, posts[0].ID))
	assert.ErrorIs(t, s.DeletePost(ctx, posts[0].ID), repository.ErrNotFound)
	_, err = s.GetComment(ctx, cm.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.FindLike(ctx, posts[0].ID, "u2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAnnouncementRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := seedCommunity(t, s, "garden", true)

	a := &model.Announcement{CommunityID: c.ID, AuthorID: "u1", Title: "rules", Content: "be kind"}
	require.NoError(t, s.CreateAnnouncement(ctx, a))

	_, err := s.GetAnnouncement(ctx, "other", a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	pinned := true
	require.NoError(t, s.UpdateAnnouncement(ctx, c.ID, a.ID, repository.AnnouncementPatch{IsPinned: &pinned}))
	got, err := s.GetAnnouncement(ctx, c.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPinned)

	assert.ErrorIs(t, s.DeleteAnnouncement(ctx, "other", a.ID), repository.ErrNotFound)
	require.NoError(t, s.DeleteAnnouncement(ctx, c.ID, a.ID))
}
