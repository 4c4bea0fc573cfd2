package memory

import (
	"cmp"
	"context"
	"slices"

	"mycoseed/internal/model"
	"mycoseed/internal/repository"
)

func (s *state) FindJoinRequest(_ context.Context, communityID, userID string) (*model.JoinRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.t.requests {
		if r.CommunityID == communityID && r.UserID == userID {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *state) GetPendingJoinRequest(_ context.Context, communityID, requestID string) (*model.JoinRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.t.requests[requestID]
	if !ok || r.CommunityID != communityID || r.Status != model.JoinRequestPending {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *state) CreateJoinRequest(_ context.Context, r *model.JoinRequest) error {
	defer s.write()()

	for _, other := range s.t.requests {
		if other.CommunityID == r.CommunityID && other.UserID == r.UserID {
			return repository.ErrDuplicate
		}
	}
	_ = r.BeforeCreate(nil)
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now
	s.t.requests[r.ID] = *r
	return nil
}

func (s *state) SaveJoinRequestStatus(_ context.Context, r *model.JoinRequest, from model.JoinRequestStatus) error {
	defer s.write()()

	cur, ok := s.t.requests[r.ID]
	if !ok || cur.Status != from {
		return repository.ErrNotFound
	}
	cur.Status = r.Status
	cur.ReviewerID = r.ReviewerID
	cur.ReviewedAt = r.ReviewedAt
	cur.UpdatedAt = s.now()
	s.t.requests[r.ID] = cur
	return nil
}

func (s *state) ListJoinRequests(_ context.Context, communityID string, status model.JoinRequestStatus) ([]model.JoinRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []model.JoinRequest{}
	for _, r := range s.t.requests {
		if r.CommunityID == communityID && r.Status == status {
			list = append(list, r)
		}
	}
	slices.SortFunc(list, func(a, b model.JoinRequest) int {
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}
