package service

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycoseed/internal/model"
)

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	svc := NewPostService(f.store)
	cid := f.public.ID

	_, err := svc.CreatePost(f.ctx, cid, "", CreatePostInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = svc.CreatePost(f.ctx, cid, f.outsider, CreatePostInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.CreatePost(f.ctx, cid, f.member, CreatePostInput{Content: "   "})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.CreatePost(f.ctx, cid, f.member, CreatePostInput{Content: "hi", Images: tooManyImages()})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.CreatePost(f.ctx, cid, f.member, CreatePostInput{ID: "not-a-uuid", Content: "hi"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.CreatePost(f.ctx, "missing", f.member, CreatePostInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrCommunityNotFound)

	id := uuid.NewString()
	post, err := svc.CreatePost(f.ctx, cid, f.member, CreatePostInput{
		ID: id, Content: "  first flush of oyster mushrooms ", Images: []string{"a.png", " ", "b.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, id, post.ID)
	assert.Equal(t, "first flush of oyster mushrooms", post.Content)
	assert.Equal(t, []string{"a.png", "b.png"}, post.Images)
	require.NotNil(t, post.Author)
	assert.Equal(t, "member-name", post.Author.Name)
	assert.Zero(t, post.LikesCount)

	_, err = svc.CreatePost(f.ctx, cid, f.member, CreatePostInput{ID: id, Content: "again"})
	assert.ErrorIs(t, err, ErrPostExists)
}

func tooManyImages() []string {
	images := make([]string, model.MaxPostImages+1)
	for i := range images {
		images[i] = "img.png"
	}
	return images
}

func TestListPosts(t *testing.T) {
	f := newFixture(t)
	svc := NewPostService(f.store)
	cid := f.public.ID

	var ids []string
	for _, content := range []string{"one", "two", "three"} {
		p, err := svc.CreatePost(f.ctx, cid, f.member, CreatePostInput{Content: content})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	require.NoError(t, svc.PinPost(f.ctx, ids[0], f.sub))
	liked, _, err := svc.ToggleLike(f.ctx, ids[0], f.owner)
	require.NoError(t, err)
	require.True(t, liked)
	_, err = svc.CreateComment(f.ctx, ids[0], f.owner, "nice", "")
	require.NoError(t, err)

	page, err := svc.ListPosts(f.ctx, cid, f.owner, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.True(t, page.HasMore)
	require.Len(t, page.Posts, 2)
	pinned := page.Posts[0]
	assert.Equal(t, ids[0], pinned.ID)
	assert.True(t, pinned.IsPinned)
	assert.True(t, pinned.IsLiked)
	assert.Equal(t, int64(1), pinned.LikesCount)
	assert.Equal(t, int64(1), pinned.CommentsCount)

	page, err = svc.ListPosts(f.ctx, cid, "", 2, 2)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	require.Len(t, page.Posts, 1)
	assert.False(t, page.Posts[0].IsLiked)

	page, err = svc.ListPosts(f.ctx, cid, "", 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, model.MaxPostLimit, page.Limit)

	page, err = svc.ListPosts(f.ctx, cid, "", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPostLimit, page.Limit)
}

func TestPrivateFeedVisibility(t *testing.T) {
	f := newFixture(t)
	svc := NewPostService(f.store)

	p, err := svc.CreatePost(f.ctx, f.private.ID, f.member, CreatePostInput{Content: "members only"})
	require.NoError(t, err)

	_, err = svc.ListPosts(f.ctx, f.private.ID, f.outsider, 1, 20)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ListPosts(f.ctx, f.private.ID, "", 1, 20)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.GetPost(f.ctx, p.ID, f.outsider)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = svc.ToggleLike(f.ctx, p.ID, f.outsider)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ListComments(f.ctx, p.ID, f.outsider)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.GetPost(f.ctx, p.ID, f.sub)
	require.NoError(t, err)
	assert.Equal(t, "members only", got.Content)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	svc := NewPostService(f.store)
	other := f.addUser(t, "other")
	f.addMember(t, f.public.ID, other, model.RoleMember)

	p, err := svc.CreatePost(f.ctx, f.public.ID, f.member, CreatePostInput{Content: "bye"})
	require.NoError(t, err)
	_, err = svc.CreateComment(f.ctx, p.ID, other, "ok", "")
	require.NoError(t, err)
	_, _, err = svc.ToggleLike(f.ctx, p.ID, other)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeletePost(f.ctx, p.ID, other), ErrForbidden)
	assert.ErrorIs(t, svc.DeletePost(f.ctx, "missing", f.member), ErrPostNotFound)
	require.NoError(t, svc.DeletePost(f.ctx, p.ID, f.member))

	_, err = svc.GetPost(f.ctx, p.ID, f.member)
	assert.ErrorIs(t, err, ErrPostNotFound)
	comments, err := f.store.ListComments(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	likes, err := f.store.ListLikes(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	// 管理员可以删除他人的动态
	p, err = svc.CreatePost(f.ctx, f.public.ID, f.member, CreatePostInput{Content: "spam"})
	require.NoError(t, err)
	require.NoError(t, svc.DeletePost(f.ctx, p.ID, f.sub))
}

func TestPinPost(t *testing.T) {
	f := newFixture(t)
	svc := NewPostService(f.store)

	p, err := svc.CreatePost(f.ctx, f.public.ID, f.member, CreatePostInput{Content: "rules"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.PinPost(f.ctx, p.ID, f.member), ErrForbidden)
	assert.ErrorIs(t, svc.PinPost(f.ctx, "missing", f.owner), ErrPostNotFound)
	require.NoError(t, svc.PinPost(f.ctx, p.ID, f.owner))
	got, err := svc.GetPost(f.ctx, p.ID, "")
	require.NoError(t, err)
	assert.True(t, got.IsPinned)

	require.NoError(t, svc.UnpinPost(f.ctx, p.ID, f.sub))
	got, err = svc.GetPost(f.ctx, p.ID, "")
	require.NoError(t, err)
	assert.False(t, got.IsPinned)
}

func TestToggleLike(t *testing.T) {
	f := newFixture(t)
	svc := NewPostService(f.store)

	p, err := svc.CreatePost(f.ctx, f.public.ID, f.member, CreatePostInput{Content: "like me"})
	require.NoError(t, err)

	_, _, err = svc.ToggleLike(f.ctx, p.ID, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, _, err = svc.ToggleLike(f.ctx, "missing", f.member)
	assert.ErrorIs(t, err, ErrPostNotFound)

	liked, count, err := svc.ToggleLike(f.ctx, p.ID, f.outsider)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), count)

	liked, count, err = svc.ToggleLike(f.ctx, p.ID, f.owner)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(2), count)

	likes, err := svc.ListLikes(f.ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, likes, 2)
	for _, l := range likes {
		require.NotNil(t, l.User)
	}

	liked, count, err = svc.ToggleLike(f.ctx, p.ID, f.outsider)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(1), count)
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	svc := NewPostService(f.store)

	p, err := svc.CreatePost(f.ctx, f.public.ID, f.member, CreatePostInput{Content: "spore print"})
	require.NoError(t, err)

	_, err = svc.CreateComment(f.ctx, p.ID, f.outsider, "hello", "")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.CreateComment(f.ctx, p.ID, f.member, " ", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.CreateComment(f.ctx, p.ID, f.member, strings.Repeat("菌", model.MaxCommentRunes+1), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.CreateComment(f.ctx, p.ID, f.member, "hi", "ghost")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.CreateComment(f.ctx, "missing", f.member, "hi", "")
	assert.ErrorIs(t, err, ErrPostNotFound)

	top, err := svc.CreateComment(f.ctx, p.ID, f.sub, strings.Repeat("菌", model.MaxCommentRunes), "")
	require.NoError(t, err)
	assert.Nil(t, top.ReplyTo)
	reply, err := svc.CreateComment(f.ctx, p.ID, f.member, "thanks", f.sub)
	require.NoError(t, err)
	require.NotNil(t, reply.ReplyTo)
	assert.Equal(t, f.sub, reply.ReplyTo.ID)
	assert.Equal(t, "member-name", reply.Author.Name)

	list, err := svc.ListComments(f.ctx, p.ID, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.ErrorIs(t, svc.DeleteComment(f.ctx, top.ID, f.member), ErrForbidden)
	assert.ErrorIs(t, svc.DeleteComment(f.ctx, "missing", f.member), ErrCommentNotFound)
	require.NoError(t, svc.DeleteComment(f.ctx, reply.ID, f.member))
	require.NoError(t, svc.DeleteComment(f.ctx, top.ID, f.owner))

	list, err = svc.ListComments(f.ctx, p.ID, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}
