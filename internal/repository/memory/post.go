package memory

import (
	"cmp"
	"context"
	"slices"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

func (s *state) CreatePost(_ context.Context, p *model.Post) error {
	defer s.write()()

	_ = p.BeforeCreate(nil)
	if _, ok := s.t.posts[p.ID]; ok {
		return repository.ErrDuplicate
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	stored := *p
	stored.Images = slices.Clone(p.Images)
	s.t.posts[p.ID] = stored
	return nil
}

func (s *state) GetPost(_ context.Context, id string) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.t.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Images = slices.Clone(p.Images)
	return &p, nil
}

func (s *state) DeletePost(_ context.Context, id string) error {
	defer s.write()()

	if _, ok := s.t.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.t.posts, id)
	for k, c := range s.t.comments {
		if c.PostID == id {
			delete(s.t.comments, k)
		}
	}
	for k, l := range s.t.likes {
		if l.PostID == id {
			delete(s.t.likes, k)
		}
	}
	return nil
}

func (s *state) ListPosts(_ context.Context, communityID string, offset, limit int) ([]model.Post, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := []model.Post{}
	for _, p := range s.t.posts {
		if p.CommunityID == communityID {
			p.Images = slices.Clone(p.Images)
			all = append(all, p)
		}
	}
	slices.SortFunc(all, func(a, b model.Post) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(b.ID, a.ID)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []model.Post{}, total, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}

func (s *state) SetPostPinned(_ context.Context, id string, pinned bool) error {
	defer s.write()()

	if p, ok := s.t.posts[id]; ok {
		p.IsPinned = pinned
		p.UpdatedAt = s.now()
		s.t.posts[id] = p
	}
	return nil
}

func (s *state) CreateComment(_ context.Context, c *model.PostComment) error {
	defer s.write()()

	_ = c.BeforeCreate(nil)
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.t.comments[c.ID] = *c
	return nil
}

func (s *state) GetComment(_ context.Context, id string) (*model.PostComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.t.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *state) DeleteComment(_ context.Context, id string) error {
	defer s.write()()

	if _, ok := s.t.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.t.comments, id)
	return nil
}

func (s *state) ListComments(_ context.Context, postID string) ([]model.PostComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []model.PostComment{}
	for _, c := range s.t.comments {
		if c.PostID == postID {
			list = append(list, c)
		}
	}
	slices.SortFunc(list, func(a, b model.PostComment) int {
		if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

func (s *state) CountComments(_ context.Context, postIDs ...string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64, len(postIDs))
	for _, c := range s.t.comments {
		if slices.Contains(postIDs, c.PostID) {
			out[c.PostID]++
		}
	}
	return out, nil
}

func (s *state) FindLike(_ context.Context, postID, userID string) (*model.PostLike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.t.likes[pairKey(postID, userID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (s *state) CreateLike(_ context.Context, l *model.PostLike) error {
	defer s.write()()

	key := pairKey(l.PostID, l.UserID)
	if _, ok := s.t.likes[key]; ok {
		return repository.ErrDuplicate
	}
	_ = l.BeforeCreate(nil)
	l.CreatedAt = s.now()
	s.t.likes[key] = *l
	return nil
}

func (s *state) DeleteLike(_ context.Context, postID, userID string) error {
	defer s.write()()

	key := pairKey(postID, userID)
	if _, ok := s.t.likes[key]; !ok {
		return repository.ErrNotFound
	}
	delete(s.t.likes, key)
	return nil
}

func (s *state) ListLikes(_ context.Context, postID string) ([]model.PostLike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []model.PostLike{}
	for _, l := range s.t.likes {
		if l.PostID == postID {
			list = append(list, l)
		}
	}
	slices.SortFunc(list, func(a, b model.PostLike) int {
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

func (s *state) CountLikes(_ context.Context, postIDs ...string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64, len(postIDs))
	for _, l := range s.t.likes {
		if slices.Contains(postIDs, l.PostID) {
			out[l.PostID]++
		}
	}
	return out, nil
}

func (s *state) LikedPostIDs(_ context.Context, userID string, postIDs ...string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		if _, ok := s.t.likes[pairKey(id, userID)]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (s *state) CreateAnnouncement(_ context.Context, a *model.Announcement) error {
	defer s.write()()

	_ = a.BeforeCreate(nil)
	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.t.announcements[a.ID] = *a
	return nil
}

func (s *state) GetAnnouncement(_ context.Context, communityID, id string) (*model.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.t.announcements[id]
	if !ok || a.CommunityID != communityID {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s *state) UpdateAnnouncement(_ context.Context, communityID, id string, p repository.AnnouncementPatch) error {
	defer s.write()()

	a, ok := s.t.announcements[id]
	if !ok || a.CommunityID != communityID || p.Empty() {
		return nil
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Content != nil {
		a.Content = *p.Content
	}
	if p.IsPinned != nil {
		a.IsPinned = *p.IsPinned
	}
	a.UpdatedAt = s.now()
	s.t.announcements[id] = a
	return nil
}

func (s *state) DeleteAnnouncement(_ context.Context, communityID, id string) error {
	defer s.write()()

	a, ok := s.t.announcements[id]
	if !ok || a.CommunityID != communityID {
		return repository.ErrNotFound
	}
	delete(s.t.announcements, id)
	return nil
}

func (s *state) ListAnnouncements(_ context.Context, communityID string) ([]model.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []model.Announcement{}
	for _, a := range s.t.announcements {
		if a.CommunityID == communityID {
			list = append(list, a)
		}
	}
	slices.SortFunc(list, func(a, b model.Announcement) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list, nil
}
