package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

func (s *state) CreateCommunity(_ context.Context, c *model.Community) error {
	defer s.write()()

	_ = c.BeforeCreate(nil)
	if _, ok := s.t.communities[c.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, other := range s.t.communities {
		if other.Slug == c.Slug {
			return repository.ErrDuplicate
		}
	}
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.t.communities[c.ID] = *c
	return nil
}

func (s *state) GetCommunity(_ context.Context, id string) (*model.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.t.communities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *state) GetCommunityBySlug(_ context.Context, slug string) (*model.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.t.communities {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

// LockCommunity 事务已经串行，这里等同于读取
func (s *state) LockCommunity(ctx context.Context, id string) (*model.Community, error) {
	return s.GetCommunity(ctx, id)
}

func (s *state) UpdateCommunity(_ context.Context, id string, p repository.CommunityPatch) error {
	defer s.write()()

	c, ok := s.t.communities[id]
	if !ok || p.Empty() {
		return nil
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.MarkdownIntro != nil {
		c.MarkdownIntro = *p.MarkdownIntro
	}
	if p.IsPublic != nil {
		c.IsPublic = *p.IsPublic
	}
	if p.PointName != nil {
		c.PointName = *p.PointName
	}
	c.UpdatedAt = s.now()
	s.t.communities[id] = c
	return nil
}

func (s *state) SetSuperAdmin(_ context.Context, communityID, userID string) error {
	defer s.write()()

	if c, ok := s.t.communities[communityID]; ok {
		c.SuperAdminID = userID
		c.UpdatedAt = s.now()
		s.t.communities[communityID] = c
	}
	return nil
}

func (s *state) ListCommunities(_ context.Context, f repository.CommunityFilter) ([]model.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kw := strings.ToLower(strings.TrimSpace(f.Query))
	list := []model.Community{}
	for _, c := range s.t.communities {
		if f.PublicOnly && !c.IsPublic {
			continue
		}
		if f.IDs != nil && !slices.Contains(f.IDs, c.ID) {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(c.Name), kw) &&
			!strings.Contains(strings.ToLower(c.Description), kw) {
			continue
		}
		list = append(list, c)
	}
	slices.SortFunc(list, func(a, b model.Community) int {
		if n := cmp.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

func (s *state) CountMembers(_ context.Context, communityIDs ...string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64, len(communityIDs))
	for _, m := range s.t.members {
		if slices.Contains(communityIDs, m.CommunityID) {
			out[m.CommunityID]++
		}
	}
	return out, nil
}
