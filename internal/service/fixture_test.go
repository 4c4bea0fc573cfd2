package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
	"mycoseed/internal/repository/memory"
)

// fixture 两个社区：公开的 mycology 与私有的 secret-spores，
// owner 为两者的总管理员，sub 为分管理员，member 为普通成员，outsider 不在任何社区
type fixture struct {
	ctx   context.Context
	store *memory.Store

	sysAdmin string
	owner    string
	sub      string
	member   string
	outsider string

	public  *model.Community
	private *model.Community
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), store: memory.NewStore()}

	f.sysAdmin = f.addUser(t, "root")
	f.owner = f.addUser(t, "owner")
	f.sub = f.addUser(t, "sub")
	f.member = f.addUser(t, "member")
	f.outsider = f.addUser(t, "outsider")
	require.NoError(t, f.store.CreateSystemAdmin(f.ctx, &model.SystemAdmin{UserID: f.sysAdmin}))

	communities := NewCommunityService(f.store)
	private := false
	pub, err := communities.CreateCommunity(f.ctx, f.sysAdmin, CreateCommunityInput{
		Name: "Mycology", Slug: "mycology", SuperAdminID: f.owner,
	})
	require.NoError(t, err)
	priv, err := communities.CreateCommunity(f.ctx, f.sysAdmin, CreateCommunityInput{
		Name: "Secret Spores", Slug: "Secret Spores", IsPublic: &private, SuperAdminID: f.owner,
	})
	require.NoError(t, err)
	f.public, f.private = &pub.Community, &priv.Community

	for _, c := range []*model.Community{f.public, f.private} {
		f.addMember(t, c.ID, f.sub, model.RoleSubAdmin)
		f.addMember(t, c.ID, f.member, model.RoleMember)
	}
	return f
}

func (f *fixture) addUser(t *testing.T, username string) string {
	t.Helper()
	u := &model.User{Username: username, Name: username + "-name", Password: "x"}
	require.NoError(t, f.store.CreateUser(f.ctx, u))
	return u.ID
}

func (f *fixture) addMember(t *testing.T, communityID, userID string, role model.Role) {
	t.Helper()
	require.NoError(t, f.store.CreateMember(f.ctx, &model.CommunityMember{
		CommunityID: communityID, UserID: userID, Role: role,
	}))
}

func (f *fixture) role(t *testing.T, communityID, userID string) model.Role {
	t.Helper()
	role, err := NewAuthorizer(f.store).ResolveRole(f.ctx, communityID, userID)
	require.NoError(t, err)
	return role
}

func (f *fixture) superAdmins(t *testing.T, communityID string) []string {
	t.Helper()
	members, err := f.store.ListMembers(f.ctx, communityID)
	require.NoError(t, err)
	var ids []string
	for _, m := range members {
		if m.Role == model.RoleSuperAdmin {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// failingStore 在指定的角色更新上注入失败，用于验证事务回滚
type failingStore struct {
	repository.Store
	failOn func(communityID, userID string, role model.Role) error
}

func (f *failingStore) UpdateMemberRole(ctx context.Context, communityID, userID string, role model.Role) error {
	if err := f.failOn(communityID, userID, role); err != nil {
		return err
	}
	return f.Store.UpdateMemberRole(ctx, communityID, userID, role)
}

func (f *failingStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return f.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(&failingStore{Store: tx, failOn: f.failOn})
	})
}

// hookStore 在成员读取之后、后续写入之前插入回调，用于构造并发交错；
// hideMembers / hideRequests 让读路径看不到已有记录，模拟插入前被并发写入抢先
type hookStore struct {
	repository.Store
	afterGetMember func(communityID, userID string)
	hideMembers    bool
	hideRequests   bool
}

func (h *hookStore) GetMember(ctx context.Context, communityID, userID string) (*model.CommunityMember, error) {
	if h.hideMembers {
		return nil, repository.ErrNotFound
	}
	m, err := h.Store.GetMember(ctx, communityID, userID)
	if h.afterGetMember != nil {
		h.afterGetMember(communityID, userID)
	}
	return m, err
}

func (h *hookStore) FindJoinRequest(ctx context.Context, communityID, userID string) (*model.JoinRequest, error) {
	if h.hideRequests {
		return nil, repository.ErrNotFound
	}
	return h.Store.FindJoinRequest(ctx, communityID, userID)
}

func (h *hookStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return h.Store.Transaction(ctx, func(tx repository.Store) error {
		inner := *h
		inner.Store = tx
		return fn(&inner)
	})
}
