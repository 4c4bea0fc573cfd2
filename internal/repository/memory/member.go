package memory

import (
	"cmp"
	"context"
	"slices"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

func (s *state) GetMember(_ context.Context, communityID, userID string) (*model.CommunityMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.t.members[pairKey(communityID, userID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (s *state) CreateMember(_ context.Context, m *model.CommunityMember) error {
	defer s.write()()

	key := pairKey(m.CommunityID, m.UserID)
	if _, ok := s.t.members[key]; ok {
		return repository.ErrDuplicate
	}
	_ = m.BeforeCreate(nil)
	m.UpdatedAt = s.now()
	s.t.members[key] = *m
	return nil
}

func (s *state) UpdateMemberRole(_ context.Context, communityID, userID string, role model.Role) error {
	defer s.write()()

	key := pairKey(communityID, userID)
	if m, ok := s.t.members[key]; ok {
		m.Role = role
		m.UpdatedAt = s.now()
		s.t.members[key] = m
	}
	return nil
}

func (s *state) DeleteMember(_ context.Context, communityID, userID string) error {
	defer s.write()()

	key := pairKey(communityID, userID)
	m, ok := s.t.members[key]
	if !ok {
		return repository.ErrNotFound
	}
	if m.Role == model.RoleSuperAdmin {
		return repository.ErrProtectedMember
	}
	delete(s.t.members, key)
	return nil
}

func (s *state) ListMembers(_ context.Context, communityID string) ([]model.CommunityMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []model.CommunityMember{}
	for _, m := range s.t.members {
		if m.CommunityID == communityID {
			list = append(list, m)
		}
	}
	slices.SortFunc(list, func(a, b model.CommunityMember) int {
		if n := a.JoinedAt.Compare(b.JoinedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

func (s *state) ListUserCommunityIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []string{}
	for _, m := range s.t.members {
		if m.UserID == userID {
			ids = append(ids, m.CommunityID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
