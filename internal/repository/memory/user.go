package memory

import (
	"context"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

func (s *state) CreateUser(_ context.Context, u *model.User) error {
	defer s.write()()

	for _, other := range s.t.users {
		if other.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	_ = u.BeforeCreate(nil)
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.t.users[u.ID] = *u
	return nil
}

func (s *state) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.t.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *state) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.t.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *state) GetUsers(_ context.Context, ids []string) (map[string]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.User, len(ids))
	for _, id := range ids {
		if u, ok := s.t.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *state) UpdatePassword(_ context.Context, id, hash string) error {
	return s.updateUser(id, func(u *model.User) { u.Password = hash })
}

func (s *state) UpdateAvatar(_ context.Context, id, avatar string) error {
	return s.updateUser(id, func(u *model.User) { u.Avatar = avatar })
}

func (s *state) updateUser(id string, fn func(*model.User)) error {
	defer s.write()()

	if u, ok := s.t.users[id]; ok {
		fn(&u)
		u.UpdatedAt = s.now()
		s.t.users[id] = u
	}
	return nil
}

func (s *state) IsSystemAdmin(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.t.admins[userID]
	return ok, nil
}

func (s *state) CountSystemAdmins(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.t.admins)), nil
}

func (s *state) CreateSystemAdmin(_ context.Context, a *model.SystemAdmin) error {
	defer s.write()()

	if _, ok := s.t.admins[a.UserID]; ok {
		return repository.ErrDuplicate
	}
	_ = a.BeforeCreate(nil)
	a.CreatedAt = s.now()
	s.t.admins[a.UserID] = *a
	return nil
}
