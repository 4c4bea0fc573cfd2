package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

func TestAnnouncements(t *testing.T) {
	f := newFixture(t)
	svc := NewAnnouncementService(f.store)
	cid := f.private.ID

	_, err := svc.Create(f.ctx, cid, f.member, AnnouncementInput{Title: "hi"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Create(f.ctx, cid, f.sub, AnnouncementInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.Create(f.ctx, cid, f.sub, AnnouncementInput{Title: strings.Repeat("告", model.MaxAnnouncementTitle+1)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.Create(f.ctx, "missing", f.sub, AnnouncementInput{Title: "hi"})
	assert.ErrorIs(t, err, ErrCommunityNotFound)

	plain, err := svc.Create(f.ctx, cid, f.sub, AnnouncementInput{Title: " Foray on Sunday ", Content: "bring baskets"})
	require.NoError(t, err)
	assert.Equal(t, "Foray on Sunday", plain.Title)
	assert.Equal(t, f.sub, plain.AuthorID)
	pinned, err := svc.Create(f.ctx, cid, f.owner, AnnouncementInput{Title: "Rules", IsPinned: true})
	require.NoError(t, err)

	_, err = svc.List(f.ctx, cid, f.outsider)
	assert.ErrorIs(t, err, ErrForbidden)
	list, err := svc.List(f.ctx, cid, f.member)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, pinned.ID, list[0].ID)

	_, err = svc.Update(f.ctx, cid, plain.ID, f.sub, repository.AnnouncementPatch{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	title := "Foray moved to Monday"
	_, err = svc.Update(f.ctx, cid, "missing", f.sub, repository.AnnouncementPatch{Title: &title})
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)
	_, err = svc.Update(f.ctx, cid, plain.ID, f.member, repository.AnnouncementPatch{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(f.ctx, cid, plain.ID, f.sub, repository.AnnouncementPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "bring baskets", updated.Content)

	// 公告属于社区，跨社区访问视为不存在
	_, err = svc.Update(f.ctx, f.public.ID, plain.ID, f.sub, repository.AnnouncementPatch{Title: &title})
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)

	assert.ErrorIs(t, svc.Delete(f.ctx, cid, plain.ID, f.member), ErrForbidden)
	require.NoError(t, svc.Delete(f.ctx, cid, plain.ID, f.owner))
	assert.ErrorIs(t, svc.Delete(f.ctx, cid, plain.ID, f.owner), ErrAnnouncementNotFound)
}
