package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

// 成员退出、移除、改角色都与 TransferSuperAdmin 在社区行锁上串行，
// 任何交错下社区都恰好有一个总管理员，且 super_admin_id 指向他
func TestMembershipChangesSerializeWithTransfer(t *testing.T) {
	cases := []struct {
		name         string
		run          func(f *fixture, s repository.Store) error
		transferErr  error
		wantSuperFor func(f *fixture) string
	}{
		{
			name: "leave",
			run: func(f *fixture, s repository.Store) error {
				return NewJoinService(s).Leave(f.ctx, f.public.ID, f.member)
			},
			transferErr:  ErrTargetNotMember,
			wantSuperFor: func(f *fixture) string { return f.owner },
		},
		{
			name: "remove",
			run: func(f *fixture, s repository.Store) error {
				return NewMemberService(s).RemoveMember(f.ctx, f.public.ID, f.sub, f.member)
			},
			transferErr:  ErrTargetNotMember,
			wantSuperFor: func(f *fixture) string { return f.owner },
		},
		{
			name: "set role",
			run: func(f *fixture, s repository.Store) error {
				return NewMemberService(s).ChangeMemberRole(f.ctx, f.public.ID, f.owner, f.member, model.RoleSubAdmin)
			},
			wantSuperFor: func(f *fixture) string { return f.member },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			transferDone := make(chan error, 1)
			var once sync.Once

			hooked := &hookStore{Store: f.store}
			hooked.afterGetMember = func(communityID, userID string) {
				if communityID != f.public.ID || userID != f.member {
					return
				}
				once.Do(func() {
					go func() {
						transferDone <- NewMemberService(f.store).TransferSuperAdmin(f.ctx, f.public.ID, f.owner, f.member, model.RoleSubAdmin)
					}()
					select {
					case err := <-transferDone:
						transferDone <- err
						t.Errorf("transfer committed while %s was between its role check and its write", tc.name)
					case <-time.After(50 * time.Millisecond):
					}
				})
			}

			require.NoError(t, tc.run(f, hooked))

			select {
			case err := <-transferDone:
				if tc.transferErr != nil {
					assert.ErrorIs(t, err, tc.transferErr)
				} else {
					assert.NoError(t, err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("transfer never ran")
			}

			c, err := f.store.GetCommunity(f.ctx, f.public.ID)
			require.NoError(t, err)
			want := tc.wantSuperFor(f)
			assert.Equal(t, []string{want}, f.superAdmins(t, f.public.ID))
			assert.Equal(t, want, c.SuperAdminID)
		})
	}
}

func TestDeleteMemberKeepsSuperAdminRow(t *testing.T) {
	f := newFixture(t)
	err := f.store.DeleteMember(f.ctx, f.public.ID, f.owner)
	assert.ErrorIs(t, err, repository.ErrProtectedMember)
	assert.Equal(t, model.RoleSuperAdmin, f.role(t, f.public.ID, f.owner))
}

func TestJoinDuplicateInsertMapsToConflict(t *testing.T) {
	f := newFixture(t)

	// 读到“不是成员”，插入时成员记录已存在
	hidden := &hookStore{Store: f.store, hideMembers: true}
	outcome, err := NewJoinService(hidden).Join(f.ctx, f.public.ID, f.member, "")
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, outcome)

	// 读到“没有申请”，插入时申请已存在
	_, err = NewJoinService(f.store).Join(f.ctx, f.private.ID, f.outsider, f.private.Slug)
	require.NoError(t, err)
	hidden = &hookStore{Store: f.store, hideRequests: true}
	outcome, err = NewJoinService(hidden).Join(f.ctx, f.private.ID, f.outsider, f.private.Slug)
	assert.ErrorIs(t, err, ErrRequestPending)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, outcome)

	requests, err := f.store.ListJoinRequests(f.ctx, f.private.ID, model.JoinRequestPending)
	require.NoError(t, err)
	assert.Len(t, requests, 1)
}
