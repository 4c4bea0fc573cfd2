package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycoseed/internal/model"
)

func TestResolveRole(t *testing.T) {
	f := newFixture(t)
	a := NewAuthorizer(f.store)

	tests := []struct {
		name   string
		userID string
		want   model.Role
	}{
		{"super admin", f.owner, model.RoleSuperAdmin},
		{"sub admin", f.sub, model.RoleSubAdmin},
		{"member", f.member, model.RoleMember},
		{"outsider", f.outsider, model.RoleNone},
		{"system admin without membership", f.sysAdmin, model.RoleNone},
		{"anonymous", "", model.RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := a.ResolveRole(f.ctx, f.public.ID, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}

	role, err := a.ResolveRole(f.ctx, "missing-community", f.owner)
	require.NoError(t, err)
	assert.Equal(t, model.RoleNone, role)
}

func TestRequireHelpers(t *testing.T) {
	f := newFixture(t)
	a := NewAuthorizer(f.store)
	cid := f.public.ID

	_, err := a.RequireMember(f.ctx, cid, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = a.RequireMember(f.ctx, cid, f.outsider)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = a.RequireMember(f.ctx, cid, f.member)
	assert.NoError(t, err)

	_, err = a.RequireAdmin(f.ctx, cid, f.member)
	assert.ErrorIs(t, err, ErrForbidden)
	role, err := a.RequireAdmin(f.ctx, cid, f.sub)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSubAdmin, role)

	_, err = a.RequireSuperAdmin(f.ctx, cid, f.sub)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = a.RequireSuperAdmin(f.ctx, cid, f.owner)
	assert.NoError(t, err)

	assert.ErrorIs(t, a.RequireSystemAdmin(f.ctx, f.owner), ErrForbidden)
	assert.NoError(t, a.RequireSystemAdmin(f.ctx, f.sysAdmin))

	_, err = a.RequireSuperAdminOrSystemAdmin(f.ctx, cid, f.sysAdmin)
	assert.NoError(t, err)
	_, err = a.RequireSuperAdminOrSystemAdmin(f.ctx, cid, f.sub)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdminPredicates(t *testing.T) {
	f := newFixture(t)
	a := NewAuthorizer(f.store)

	ok, err := a.IsAdmin(f.ctx, f.public.ID, f.sub)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = a.IsAdmin(f.ctx, f.public.ID, f.member)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.IsSuperAdmin(f.ctx, f.public.ID, f.owner)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = a.IsSuperAdmin(f.ctx, f.public.ID, f.sub)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.IsSystemAdmin(f.ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanView(t *testing.T) {
	f := newFixture(t)
	a := NewAuthorizer(f.store)

	_, err := a.CanView(f.ctx, f.public, "")
	assert.NoError(t, err)
	_, err = a.CanView(f.ctx, f.public, f.outsider)
	assert.NoError(t, err)

	_, err = a.CanView(f.ctx, f.private, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = a.CanView(f.ctx, f.private, f.outsider)
	assert.ErrorIs(t, err, ErrForbidden)
	role, err := a.CanView(f.ctx, f.private, f.member)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, role)
}
